package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/usestring/ctxdts/pkg/mcpsrv"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: "Run the MCP server on stdio. Configuration is loaded from environment variables " +
			"(CTXDTS_VAR_NAME, CTXDTS_CONTEXT_FILE, LOG_LEVEL, LOG_FILE, ...); flags override them.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("var", "", "Global variable name (default: $CTXDTS_VAR_NAME or contexto)")
	cmd.Flags().String("virtual-file", "", "Virtual file the declaration is registered under")
	cmd.Flags().StringP("context", "c", "", "Initial context file, JSON or YAML (default: $CTXDTS_CONTEXT_FILE)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL or info)")
	cmd.Flags().String("log-file", "", "Log file path (default: $LOG_FILE, stderr only)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	varName, _ := cmd.Flags().GetString("var")
	virtualFile, _ := cmd.Flags().GetString("virtual-file")
	contextFile, _ := cmd.Flags().GetString("context")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := []mcpsrv.Option{
		mcpsrv.WithVersion(Version),
		mcpsrv.WithVarName(varName),
		mcpsrv.WithVirtualFile(virtualFile),
		mcpsrv.WithLogLevel(logLevel),
		mcpsrv.WithLogFile(logFile),
	}
	if contextFile != "" {
		opts = append(opts, mcpsrv.WithContextFile(contextFile))
	}

	server, err := mcpsrv.NewServer(opts...)
	if err != nil {
		return err
	}
	defer server.Close()

	slog.Info("starting ctxdts MCP server on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("server stopped")
	return nil
}
