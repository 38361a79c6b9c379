package tools

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/types"
	"github.com/usestring/ctxdts/pkg/value"
)

// InferDeclarationInput is the input for ctxdts_infer_declaration.
type InferDeclarationInput struct {
	Sources  []string `json:"sources" jsonschema:"required,Source documents to type. Each is inferred independently."`
	Format   string   `json:"format,omitempty" jsonschema:"Source format: json (default), yaml, or a media type such as application/json"`
	MaxDepth int      `json:"max_depth,omitempty" jsonschema:"Nesting depth after which containers are typed as any (default: INFER_MAX_DEPTH)"`
	Declare  bool     `json:"declare,omitempty" jsonschema:"Wrap each type in a 'declare var' statement"`
	VarName  string   `json:"var_name,omitempty" jsonschema:"Variable name used when declare is set (default: CTXDTS_VAR_NAME)"`
}

// InferDeclarationOutput is the output for ctxdts_infer_declaration.
type InferDeclarationOutput struct {
	Results []types.SourceDeclaration `json:"results,omitzero"`
	Summary InferSummary              `json:"summary"`
}

// InferSummary counts inference outcomes.
type InferSummary struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ToolInferDeclaration types one or more sources without touching the
// workspace registration.
func ToolInferDeclaration(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferDeclarationInput) (*sdkmcp.CallToolResult, InferDeclarationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferDeclarationInput) (*sdkmcp.CallToolResult, InferDeclarationOutput, error) {
		if len(input.Sources) == 0 {
			return nil, InferDeclarationOutput{}, ErrInvalidInput("sources is required")
		}
		if limit := d.Config.MaxBatchSources; limit > 0 && len(input.Sources) > limit {
			return nil, InferDeclarationOutput{}, ErrInvalidInput(fmt.Sprintf("at most %d sources per call", limit))
		}
		if input.MaxDepth < 0 {
			return nil, InferDeclarationOutput{}, ErrInvalidInput("max_depth must be positive")
		}

		format, err := parseFormat(input.Format)
		if err != nil {
			return nil, InferDeclarationOutput{}, err
		}

		varName := input.VarName
		if varName == "" {
			varName = d.Config.VarName
		}
		inferencer := d.inferencerFor(input.MaxDepth)

		results := make([]types.SourceDeclaration, len(input.Sources))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(d.Config.InferWorkers, 1))

		for i, src := range input.Sources {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = d.inferOne(i, src, format, inferencer, input.Declare, varName)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, InferDeclarationOutput{}, err
		}

		summary := InferSummary{Requested: len(results)}
		for _, r := range results {
			if r.Error != "" {
				summary.Failed++
			} else {
				summary.Succeeded++
			}
		}

		slog.Debug("inferred declarations",
			slog.Int("requested", summary.Requested),
			slog.Int("failed", summary.Failed),
		)

		return nil, InferDeclarationOutput{Results: results, Summary: summary}, nil
	}
}

func (d *Deps) inferOne(i int, src string, format value.Format, inferencer *dts.Inferencer, declare bool, varName string) types.SourceDeclaration {
	out := types.SourceDeclaration{Index: i}

	if err := d.checkSourceSize(src); err != nil {
		out.Error = err.Error()
		return out
	}

	v, err := value.Parse([]byte(src), format)
	if err != nil {
		out.Error = ErrParse(fmt.Sprintf("source %d is not valid %s", i, format), err).Error()
		return out
	}

	out.Type = d.render(v, inferencer, "type", func() string { return inferencer.Infer(v, 0) })
	if declare {
		out.Declaration = d.render(v, inferencer, "declare:"+varName, func() string { return inferencer.Declare(varName, v) })
	}
	return out
}

// render memoizes build through the declaration cache when one is configured.
func (d *Deps) render(v value.Value, inferencer *dts.Inferencer, wrapper string, build func() string) string {
	if d.Cache == nil {
		return build()
	}
	key, err := cache.Key(v, inferencer.Options(), wrapper)
	if err != nil {
		return build()
	}
	return d.Cache.GetOrRender(key, build)
}
