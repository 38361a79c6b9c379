package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usestring/ctxdts/internal/schema"
	"github.com/usestring/ctxdts/pkg/jsonschema"
)

func init() {
	RootCmd.AddCommand(newSchemaCmd(), newValidateCmd())
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [file]",
		Short: "Print the JSON Schema of a JSON or YAML document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSchema,
	}

	cmd.Flags().StringP("format", "f", "", "Input format: json or yaml (default: from file extension, json for stdin)")
	cmd.Flags().Bool("closed", false, "Set additionalProperties: false on every object")
	cmd.Flags().String("label", "", "Describe each property as '<label>: <key>'")

	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	closed, _ := cmd.Flags().GetBool("closed")
	label, _ := cmd.Flags().GetString("label")

	v, err := readSource(cmd, args, format)
	if err != nil {
		return err
	}

	opts := jsonschema.DefaultInferOptions()
	opts.PropertyLabel = label
	if closed {
		allow := false
		opts.AdditionalProperties = &allow
	}
	inferred := jsonschema.InferWithOptions(opts, v)

	b, err := json.MarshalIndent(inferred.Schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a JSON or YAML document against a JSON Schema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().StringP("format", "f", "", "Input format: json or yaml (default: from file extension, json for stdin)")
	cmd.Flags().String("schema", "", "JSON Schema file (required)")
	cmd.MarkFlagRequired("schema")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	schemaPath, _ := cmd.Flags().GetString("schema")

	schemaText, err := os.ReadFile(schemaPath)
	if err != nil {
		return err
	}
	validator, err := schema.NewValidator(string(schemaText))
	if err != nil {
		return err
	}

	v, err := readSource(cmd, args, format)
	if err != nil {
		return err
	}

	res := validator.Validate(v)
	if res.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(res.Errors, "\n"))
	return fmt.Errorf("%d validation error(s)", len(res.Errors))
}
