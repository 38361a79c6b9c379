package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	// Tool 1: ctxdts_infer_declaration
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_infer_declaration",
		Description: "Infer TypeScript types for one or more JSON or YAML documents without changing the workspace. Returns {results: [{index, type, declaration, error}], summary}. Arrays are typed from their first element; null becomes any; object keys keep source order with a JSDoc line per property. Set declare=true for a 'declare var' statement.",
	}, ToolInferDeclaration(d))

	// Tool 2: ctxdts_update_context
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_update_context",
		Description: "Replace the workspace context and re-register its declaration under the fixed virtual file. The previous registration is disposed first, so exactly one declaration stays live. A source that fails to parse returns PARSE_ERROR and the previous declaration stays active. Use select (jq) to type a sub-document.",
	}, ToolUpdateContext(d))

	// Tool 3: ctxdts_add_property
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_add_property",
		Description: "Add a property to the context with a placeholder value for its kind (string, number, boolean, object, array, null) and re-register the declaration.",
	}, ToolAddProperty(d))

	// Tool 4: ctxdts_get_declaration
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_get_declaration",
		Description: "Get the registered declaration, adapter state (uninitialized, idle, active, terminated), virtual file, and language service counters. Set include_context=true for a trimmed preview of the context itself.",
	}, ToolGetDeclaration(d))

	// Tool 5: ctxdts_context_schema
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_context_schema",
		Description: "Infer a JSON Schema (Draft 2020-12) from the current context. Unlike the declaration, array items are merged across all elements.",
	}, ToolContextSchema(d))

	// Tool 6: ctxdts_validate_context
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_validate_context",
		Description: "Validate the current context against a JSON Schema. Returns {valid, errors} with one message per failing instance path.",
	}, ToolValidateContext(d))

	// Tool 7: ctxdts_query_context
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_query_context",
		Description: "Run a jq expression against the current context and return the values it produces. Read-only; use ctxdts_update_context with select to change the context.",
	}, ToolQueryContext(d))

	// Tool 8: ctxdts_teardown
	AddTool(srv, &sdkmcp.Tool{
		Name:        "ctxdts_teardown",
		Description: "Dispose the live declaration and end the workspace. Idempotent. Later context updates fail with TERMINATED.",
	}, ToolTeardown(d))
}
