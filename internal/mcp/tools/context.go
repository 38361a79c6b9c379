package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/pkg/jsoncompact"
	"github.com/usestring/ctxdts/pkg/types"
	"github.com/usestring/ctxdts/pkg/value"
)

// UpdateContextInput is the input for ctxdts_update_context.
type UpdateContextInput struct {
	Source string `json:"source" jsonschema:"required,The new context document"`
	Format string `json:"format,omitempty" jsonschema:"Source format: json (default), yaml, or a media type such as application/json"`
	Select string `json:"select,omitempty" jsonschema:"Optional jq expression; its first result becomes the context"`
}

// DeclarationOutput reports the workspace registration after a change.
type DeclarationOutput struct {
	Declaration types.DeclarationInfo `json:"declaration"`
	Libs        types.LibStats        `json:"libs"`
	Resource    *types.ResourceRef    `json:"resource,omitempty"`
	Context     any                   `json:"context,omitempty"` // compacted preview, on request
	Hint        string                `json:"hint,omitempty"`
}

// ToolUpdateContext replaces the workspace context and re-registers its
// declaration. A source that fails to parse leaves the previous
// declaration in place.
func ToolUpdateContext(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UpdateContextInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UpdateContextInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
		if err := d.checkSourceSize(input.Source); err != nil {
			return nil, DeclarationOutput{}, err
		}
		format, err := parseFormat(input.Format)
		if err != nil {
			return nil, DeclarationOutput{}, err
		}
		if input.Select != "" {
			if err := d.Query.ValidateExpression(input.Select); err != nil {
				return nil, DeclarationOutput{}, ErrInvalidInput(err.Error())
			}
		}

		if err := d.Workspace.SetSource([]byte(input.Source), format, input.Select); err != nil {
			return nil, DeclarationOutput{}, WrapWorkspaceError(err)
		}

		return nil, d.declarationOutput(""), nil
	}
}

// AddPropertyInput is the input for ctxdts_add_property.
type AddPropertyInput struct {
	Name string `json:"name" jsonschema:"required,Property name to add to the context"`
	Kind string `json:"kind,omitempty" jsonschema:"Value kind: string (default), number, boolean, object, array, or null"`
}

// AddPropertyOutput is the output for ctxdts_add_property.
type AddPropertyOutput struct {
	Name        string                `json:"name"`
	Kind        string                `json:"kind"`
	Default     any                   `json:"default"`
	Declaration types.DeclarationInfo `json:"declaration"`
}

// ToolAddProperty adds a property with a kind-specific placeholder value.
func ToolAddProperty(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AddPropertyInput) (*sdkmcp.CallToolResult, AddPropertyOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AddPropertyInput) (*sdkmcp.CallToolResult, AddPropertyOutput, error) {
		kindName := input.Kind
		if kindName == "" {
			kindName = value.KindString.String()
		}
		kind, ok := value.ParseKind(kindName)
		if !ok {
			return nil, AddPropertyOutput{}, ErrInvalidInput(fmt.Sprintf("unknown kind %q", input.Kind))
		}

		def, err := d.Workspace.AddProperty(input.Name, kind)
		if err != nil {
			return nil, AddPropertyOutput{}, WrapWorkspaceError(err)
		}

		return nil, AddPropertyOutput{
			Name:        strings.TrimSpace(input.Name),
			Kind:        kind.String(),
			Default:     value.ToAny(def),
			Declaration: BuildDeclarationInfo(d.Workspace.Snapshot()),
		}, nil
	}
}

// GetDeclarationInput is the input for ctxdts_get_declaration.
type GetDeclarationInput struct {
	IncludeContext bool `json:"include_context,omitempty" jsonschema:"Include a preview of the context with long arrays and strings trimmed"`
	MaxArrayItems  int  `json:"max_array_items,omitempty" jsonschema:"Array items kept in the preview (default: 3)"`
}

// ToolGetDeclaration reports the active declaration.
func ToolGetDeclaration(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetDeclarationInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetDeclarationInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
		if input.MaxArrayItems < 0 {
			return nil, DeclarationOutput{}, ErrInvalidInput("max_array_items must be positive")
		}

		out := d.declarationOutput("")
		if !out.Declaration.Active {
			out.Hint = "Nothing is registered yet. Use ctxdts_update_context to set a context."
		}
		if input.IncludeContext {
			opts := jsoncompact.DefaultOptions()
			if input.MaxArrayItems > 0 {
				opts.MaxArrayItems = input.MaxArrayItems
			}
			out.Context = value.ToAny(jsoncompact.Compact(d.Workspace.Context(), opts))
		}
		return nil, out, nil
	}
}

// TeardownInput is the input for ctxdts_teardown.
type TeardownInput struct{}

// ToolTeardown disposes the live declaration and ends the workspace.
func ToolTeardown(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TeardownInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TeardownInput) (*sdkmcp.CallToolResult, DeclarationOutput, error) {
		d.Workspace.Teardown()
		return nil, d.declarationOutput("Workspace torn down. Context updates now fail with TERMINATED."), nil
	}
}

func (d *Deps) declarationOutput(hint string) DeclarationOutput {
	snap := d.Workspace.Snapshot()
	out := DeclarationOutput{
		Declaration: BuildDeclarationInfo(snap),
		Libs:        BuildLibStats(d.Service),
		Hint:        hint,
	}
	if snap.Active {
		out.Resource = &types.ResourceRef{
			URI:  LibResourceURI(snap.VirtualFile),
			MIME: MimeTypeScript,
			Hint: "Registered declaration text",
		}
	}
	return out
}
