package mcp

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/internal/mcp/prompts"
	"github.com/usestring/ctxdts/internal/mcp/tools"
)

const (
	serverName     = "ctxdts-mcp"
	defaultVersion = "1.0.0"
)

// Server exposes one workspace over MCP.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps
	version   string

	builtinTools   bool
	builtinPrompts bool
	registrations  []func(*sdkmcp.Server)
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithBuiltinTools registers the ctxdts tools and the context/lib resources.
func WithBuiltinTools() ServerOption {
	return func(s *Server) { s.builtinTools = true }
}

// WithBuiltinPrompts registers the type_context prompt.
func WithBuiltinPrompts() ServerOption {
	return func(s *Server) { s.builtinPrompts = true }
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithCustomRegistration runs fn against the underlying MCP server after
// the builtins are registered, so fn may add tools, prompts, or resources.
func WithCustomRegistration(fn func(*sdkmcp.Server)) ServerOption {
	return func(s *Server) {
		s.registrations = append(s.registrations, fn)
	}
}

// NewServer builds the MCP server for deps.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil {
		return nil, errors.New("deps is required")
	}
	if deps.Workspace == nil || deps.Config == nil {
		return nil, errors.New("deps.Workspace and deps.Config are required")
	}

	s := &Server{deps: deps, version: defaultVersion}
	for _, opt := range opts {
		opt(s)
	}

	snap := deps.Workspace.Snapshot()
	s.mcpServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: serverName, Version: s.version},
		&sdkmcp.ServerOptions{
			Instructions: fmt.Sprintf(
				"Keeps `declare var %s` registered in %s, typed from the current context. Update the context with ctxdts_update_context.",
				snap.VarName, snap.VirtualFile,
			),
		},
	)
	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	if s.builtinTools {
		tools.Register(s.mcpServer, deps)
		s.registerResources()
	}
	if s.builtinPrompts {
		prompts.Register(s.mcpServer, &prompts.Config{
			VarName:     snap.VarName,
			VirtualFile: snap.VirtualFile,
		})
	}
	for _, fn := range s.registrations {
		fn(s.mcpServer)
	}

	return s, nil
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
