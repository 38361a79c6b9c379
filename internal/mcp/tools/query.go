package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/pkg/value"
)

// QueryContextInput is the input for ctxdts_query_context.
type QueryContextInput struct {
	Expression string `json:"expression" jsonschema:"required,jq expression run against the current context"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 100)"`
}

// QueryContextOutput is the output for ctxdts_query_context.
type QueryContextOutput struct {
	Values    []any    `json:"values,omitzero"`
	Errors    []string `json:"errors,omitempty"`
	RawCount  int      `json:"raw_count"`
	Truncated bool     `json:"truncated,omitempty"`
}

const defaultQueryMaxResults = 100

// ToolQueryContext extracts values from the context with jq. The context
// is not modified.
func ToolQueryContext(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryContextInput) (*sdkmcp.CallToolResult, QueryContextOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryContextInput) (*sdkmcp.CallToolResult, QueryContextOutput, error) {
		if input.Expression == "" {
			return nil, QueryContextOutput{}, ErrInvalidInput("expression is required")
		}
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultQueryMaxResults
		}

		result, err := d.Query.Query(d.Workspace.Context(), input.Expression, maxResults)
		if err != nil {
			return nil, QueryContextOutput{}, ErrInvalidInput(err.Error())
		}

		values := make([]any, 0, len(result.Values))
		for _, v := range result.Values {
			values = append(values, value.ToAny(v))
		}

		return nil, QueryContextOutput{
			Values:    values,
			Errors:    result.Errors,
			RawCount:  result.RawCount,
			Truncated: result.RawCount > len(result.Values),
		}, nil
	}
}
