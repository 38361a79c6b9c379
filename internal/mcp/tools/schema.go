package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/internal/schema"
	"github.com/usestring/ctxdts/pkg/jsonschema"
	"github.com/usestring/ctxdts/pkg/types"
)

// ContextSchemaInput is the input for ctxdts_context_schema.
type ContextSchemaInput struct {
	Closed bool `json:"closed,omitempty" jsonschema:"Set additionalProperties to false on every object"`
}

// ContextSchemaOutput is the output for ctxdts_context_schema.
type ContextSchemaOutput struct {
	Schema any    `json:"schema"`
	Hint   string `json:"hint,omitempty"`
}

// ToolContextSchema infers a JSON Schema from the current context. Unlike
// the declaration, array items are merged across every element.
func ToolContextSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ContextSchemaInput) (*sdkmcp.CallToolResult, ContextSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ContextSchemaInput) (*sdkmcp.CallToolResult, ContextSchemaOutput, error) {
		opts := jsonschema.DefaultInferOptions()
		opts.PropertyLabel = d.Config.InferCommentLabel
		if input.Closed {
			closed := false
			opts.AdditionalProperties = &closed
		}

		inferred := jsonschema.InferWithOptions(opts, d.Workspace.Context())
		s, err := types.ToAny(inferred.Schema)
		if err != nil {
			return nil, ContextSchemaOutput{}, fmt.Errorf("encoding schema: %w", err)
		}

		return nil, ContextSchemaOutput{
			Schema: s,
			Hint:   "Pass this schema to ctxdts_validate_context to check later context updates.",
		}, nil
	}
}

// ValidateContextInput is the input for ctxdts_validate_context.
type ValidateContextInput struct {
	Schema string `json:"schema,omitempty" jsonschema:"JSON Schema document. When empty the context is checked against the schema inferred from itself."`
}

// ToolValidateContext validates the current context against a JSON Schema.
func ToolValidateContext(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateContextInput) (*sdkmcp.CallToolResult, types.ValidationResult, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateContextInput) (*sdkmcp.CallToolResult, types.ValidationResult, error) {
		current := d.Workspace.Context()

		var (
			validator *schema.Validator
			err       error
		)
		if input.Schema == "" {
			validator, err = schema.NewValidatorFromSchema(jsonschema.Infer(current).Schema)
		} else {
			validator, err = schema.NewValidator(input.Schema)
		}
		if err != nil {
			return nil, types.ValidationResult{}, ErrInvalidInput("invalid schema: " + err.Error())
		}

		return nil, *validator.Validate(current), nil
	}
}
