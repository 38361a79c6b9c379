package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleTypeContext implements the context typing workflow.
func HandleTypeContext(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		sample := ""
		format := "json"
		if args != nil {
			if v, ok := args["sample"]; ok {
				sample = strings.TrimSpace(v)
			}
			if v, ok := args["format"]; ok && v != "" {
				format = strings.ToLower(v)
			}
		}

		var sb strings.Builder

		sb.WriteString("# Type an Editor Context\n\n")
		fmt.Fprintf(&sb, "The editor exposes the context as the global `%s`. ", cfg.VarName)
		fmt.Fprintf(&sb, "Its type lives in one virtual declaration file, `%s`, which is replaced on every change.\n", cfg.VirtualFile)

		sb.WriteString("\n## Workflow\n")
		sb.WriteString("1. **Preview**: `ctxdts_infer_declaration(sources: [...])` - types samples without touching the editor\n")
		sb.WriteString("2. **Register**: `ctxdts_update_context(source: ...)` - makes the sample the live context\n")
		sb.WriteString("   - Add `select: \".path.to.part\"` to type only part of a document (jq syntax, first result wins)\n")
		sb.WriteString("3. **Extend**: `ctxdts_add_property(name, kind)` - adds a placeholder field (string, number, boolean, object, array, null)\n")
		sb.WriteString("4. **Check**: `ctxdts_get_declaration()` - shows the registered `declare var` text and lib counters\n")
		sb.WriteString("5. **Finish**: `ctxdts_teardown()` - disposes the registration; later updates fail with TERMINATED\n")

		sb.WriteString("\n## Reading the Declaration\n")
		sb.WriteString("- Arrays are typed from their first element; an empty array is `any[]`\n")
		sb.WriteString("- `null` is typed `any`\n")
		sb.WriteString("- Keys that are not identifiers are quoted\n")
		sb.WriteString("- Every property carries a `/** Property: name */` comment\n")

		sb.WriteString("\n## Beyond TypeScript\n")
		sb.WriteString("- `ctxdts_context_schema(closed)` - JSON Schema for the live context\n")
		sb.WriteString("- `ctxdts_validate_context(schema)` - check the context against a schema (empty validates against its own)\n")
		sb.WriteString("- `ctxdts_query_context(expression)` - run jq over the context\n")

		sb.WriteString("\n## Tips\n")
		sb.WriteString("- A source that fails to parse leaves the previous declaration registered\n")
		sb.WriteString("- `libs.live` should always be 0 or 1; `libs.conflicts` counts duplicate registrations\n")
		sb.WriteString("- Read `ctxdts://context` for the current context and `ctxdts://lib/{name}` for the registered text\n")

		if sample != "" {
			sb.WriteString("\n## Your Sample\n")
			fmt.Fprintf(&sb, "Start with `ctxdts_update_context(source: <sample>, format: %q)`:\n\n", format)
			fmt.Fprintf(&sb, "```%s\n%s\n```\n", format, sample)
		}

		return &sdkmcp.GetPromptResult{
			Description: "Guide for typing an editor context",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
