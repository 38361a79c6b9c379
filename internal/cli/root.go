// Package cli implements the ctxdts commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/usestring/ctxdts/pkg/contenttype"
	"github.com/usestring/ctxdts/pkg/value"
)

// Version is reported by the server and --version.
var Version = "1.0.0"

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "ctxdts",
	Short:         "Type JSON and YAML contexts as TypeScript declarations",
	Long:          "Infer TypeScript declarations from JSON or YAML values, and serve them to editors over MCP.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// readSource reads the document named by args, or stdin when there is none
// or it is "-". formatFlag overrides the format guessed from the file name.
func readSource(cmd *cobra.Command, args []string, formatFlag string) (value.Value, error) {
	var (
		src    []byte
		err    error
		format = value.FormatJSON
	)
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		src, err = os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		format = value.FormatForPath(args[0])
	}

	if formatFlag != "" {
		format, err = contenttype.SourceFormat(formatFlag)
		if err != nil {
			return nil, err
		}
	}

	v, err := value.Parse(src, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return v, nil
}
