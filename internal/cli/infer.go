package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/ctxdts/internal/config"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/pkg/dts"
)

func init() {
	RootCmd.AddCommand(newInferCmd())
}

func newInferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer [file]",
		Short: "Print the TypeScript type of a JSON or YAML document",
		Long:  "Print the TypeScript type of a JSON or YAML document read from a file or stdin. Arrays are typed from their first element.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInfer,
	}

	cmd.Flags().StringP("format", "f", "", "Input format: json or yaml (default: from file extension, json for stdin)")
	cmd.Flags().Int("max-depth", dts.DefaultMaxDepth, "Nesting depth after which containers are typed as any")
	cmd.Flags().BoolP("declare", "d", false, "Wrap the type in a 'declare var' statement")
	cmd.Flags().String("var", config.DefaultVarName, "Variable name used with --declare")
	cmd.Flags().StringP("select", "s", "", "jq expression; its first result is typed instead of the whole document")
	cmd.Flags().String("label", dts.DefaultCommentLabel, "Label used in property doc comments")

	return cmd
}

func runInfer(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	declare, _ := cmd.Flags().GetBool("declare")
	varName, _ := cmd.Flags().GetString("var")
	selectExpr, _ := cmd.Flags().GetString("select")
	label, _ := cmd.Flags().GetString("label")

	v, err := readSource(cmd, args, format)
	if err != nil {
		return err
	}

	if selectExpr != "" {
		v, err = query.NewEngine().Project(v, selectExpr)
		if err != nil {
			return err
		}
	}

	in := dts.New(dts.Options{MaxDepth: maxDepth, CommentLabel: label})
	if declare {
		fmt.Fprintln(cmd.OutOrStdout(), in.Declare(varName, v))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), in.Infer(v, 0))
	}
	return nil
}
