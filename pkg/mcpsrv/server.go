package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/internal/config"
	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/logging"
	"github.com/usestring/ctxdts/internal/mcp"
	"github.com/usestring/ctxdts/internal/mcp/tools"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/dts"
)

// Server is the ctxdts MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin ctxdts tools.
//
// Configuration is read from the environment and can be overridden with
// functional options. The workspace is marked ready before NewServer
// returns, so the initial context is already registered.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{
		config:  config.Load(),
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	declCache, err := cache.NewDeclarationCache(cfg.config.DeclarationCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create declaration cache: %w", err)
	}

	svc := langsvc.New()
	svc.SetReady(true)
	queryEngine := query.NewEngine()

	ws := workspace.New(svc, workspace.Options{
		VarName:     cfg.config.VarName,
		VirtualFile: cfg.config.VirtualFile,
		Infer:       cfg.config.InferOptions(),
		Cache:       declCache,
		Query:       queryEngine,
	})

	switch {
	case cfg.context != nil:
		err = ws.SetContext(cfg.context)
	case cfg.config.InitialContextFile != "":
		err = ws.LoadFile(cfg.config.InitialContextFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load initial context: %w", err)
	}
	if err := ws.Ready(); err != nil {
		return nil, fmt.Errorf("failed to register declaration: %w", err)
	}

	deps := &Deps{
		Workspace:  ws,
		Service:    svc,
		Config:     cfg.config,
		Cache:      declCache,
		Inferencer: dts.New(cfg.config.InferOptions()),
		Query:      queryEngine,
	}
	toolDeps := &tools.Deps{
		Workspace:  deps.Workspace,
		Service:    deps.Service,
		Config:     deps.Config,
		Cache:      deps.Cache,
		Inferencer: deps.Inferencer,
		Query:      deps.Query,
	}

	internalOpts := []mcp.ServerOption{mcp.WithVersion(cfg.version)}
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("workspace ready",
		slog.String("var", cfg.config.VarName),
		slog.String("virtual_file", ws.Snapshot().VirtualFile),
	)

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close tears down the workspace registration and cleans up server
// resources.
func (s *Server) Close() error {
	s.deps.Workspace.Teardown()
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
