// Package mcpsrv provides an extensible MCP server for ctxdts.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin ctxdts tools, prompts, and resources. The server owns one
// workspace: a context value whose TypeScript declaration stays registered
// under a single virtual file. Users can extend the server with custom tools,
// prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with default configuration:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools that see the workspace through Deps:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type KeysOutput struct {
//	    Keys []string `json:"keys,omitzero"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(
//	        &mcp.Tool{Name: "context_keys", Description: "List top-level context keys"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, KeysOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, KeysOutput, error) {
//	                var out KeysOutput
//	                if obj, ok := d.Workspace.Context().(*value.Object); ok {
//	                    out.Keys = obj.Keys()
//	                }
//	                return nil, out, nil
//	            }
//	        },
//	    ),
//	)
//
// # Configuration
//
// Configure the context and logging:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithVarName("ctx"),
//	    mcpsrv.WithContextFile("./context.yaml"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/ctxdts-mcp.log"),
//	)
package mcpsrv
