package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/internal/config"
	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/value"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	cfg := &config.Config{
		VarName:         config.DefaultVarName,
		InferMaxDepth:   dts.DefaultMaxDepth,
		InferWorkers:    4,
		MaxSourceBytes:  1024,
		MaxBatchSources: 4,
	}
	c, err := cache.NewDeclarationCache(16)
	require.NoError(t, err)

	svc := langsvc.New()
	svc.SetReady(true)
	q := query.NewEngine()
	ws := workspace.New(svc, workspace.Options{
		VarName: cfg.VarName,
		Infer:   cfg.InferOptions(),
		Cache:   c,
		Query:   q,
	})
	require.NoError(t, ws.Ready())

	return &Deps{
		Workspace:  ws,
		Service:    svc,
		Config:     cfg,
		Cache:      c,
		Inferencer: dts.New(cfg.InferOptions()),
		Query:      q,
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var coded *CodedError
	require.True(t, errors.As(err, &coded), "expected CodedError, got %v", err)
	assert.Equal(t, code, coded.Code)
}

func TestToolInferDeclaration(t *testing.T) {
	d := newTestDeps(t)
	handler := ToolInferDeclaration(d)

	_, out, err := handler(context.Background(), nil, InferDeclarationInput{
		Sources: []string{`{"a": 1, "b": [true]}`, `[]`, `{"a": `, "- x\n- y\n"},
		Declare: true,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 4)

	assert.Equal(t, "{\n  /** Property: a */\n  a: number;\n  /** Property: b */\n  b: boolean[];\n}", out.Results[0].Type)
	assert.True(t, strings.HasPrefix(out.Results[0].Declaration, "declare var contexto: {\n"))
	assert.Equal(t, "any[]", out.Results[1].Type)
	assert.Contains(t, out.Results[2].Error, ErrCodeParse)
	assert.Contains(t, out.Results[3].Error, ErrCodeParse, "yaml is not json")

	for i, r := range out.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, InferSummary{Requested: 4, Succeeded: 2, Failed: 2}, out.Summary)

	// no registration side effects
	assert.Equal(t, 1, d.Service.Stats().Added)
}

func TestToolInferDeclaration_YAMLAndDepth(t *testing.T) {
	d := newTestDeps(t)

	_, out, err := ToolInferDeclaration(d)(context.Background(), nil, InferDeclarationInput{
		Sources:  []string{"a:\n  b:\n    c: 1\n"},
		Format:   "application/x-yaml",
		MaxDepth: 2,
		Declare:  true,
		VarName:  "ctx",
	})
	require.NoError(t, err)
	require.Empty(t, out.Results[0].Error)
	assert.Contains(t, out.Results[0].Type, "b: any;")
	assert.True(t, strings.HasPrefix(out.Results[0].Declaration, "declare var ctx: "))
}

func TestToolInferDeclaration_InvalidInput(t *testing.T) {
	d := newTestDeps(t)
	handler := ToolInferDeclaration(d)

	tests := []struct {
		name  string
		input InferDeclarationInput
	}{
		{"no sources", InferDeclarationInput{}},
		{"too many sources", InferDeclarationInput{Sources: []string{"1", "2", "3", "4", "5"}}},
		{"bad format", InferDeclarationInput{Sources: []string{"1"}, Format: "toml"}},
		{"negative depth", InferDeclarationInput{Sources: []string{"1"}, MaxDepth: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handler(context.Background(), nil, tt.input)
			requireCode(t, err, ErrCodeInvalidInput)
		})
	}
}

func TestToolInferDeclaration_SourceTooLarge(t *testing.T) {
	d := newTestDeps(t)

	_, out, err := ToolInferDeclaration(d)(context.Background(), nil, InferDeclarationInput{
		Sources: []string{`"` + strings.Repeat("x", 2048) + `"`},
	})
	require.NoError(t, err)
	assert.Contains(t, out.Results[0].Error, "limit is 1024")
}

func TestToolUpdateContext(t *testing.T) {
	d := newTestDeps(t)
	handler := ToolUpdateContext(d)

	_, out, err := handler(context.Background(), nil, UpdateContextInput{
		Source: `{"usuario": {"nombre": "Juan"}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", out.Declaration.State)
	assert.True(t, out.Declaration.Active)
	assert.Contains(t, out.Declaration.Declaration, "nombre: string;")
	require.NotNil(t, out.Resource)
	assert.Equal(t, "ctxdts://lib/contexto.d.ts", out.Resource.URI)
	assert.Equal(t, 1, out.Libs.Live)
	assert.Equal(t, 0, out.Libs.Conflicts)

	_, out, err = handler(context.Background(), nil, UpdateContextInput{
		Source: `{"usuario": {"nombre": "Juan"}}`,
		Select: ".usuario.nombre",
	})
	require.NoError(t, err)
	assert.Equal(t, "declare var contexto: string;", out.Declaration.Declaration)
}

func TestToolUpdateContext_ParseErrorKeepsDeclaration(t *testing.T) {
	d := newTestDeps(t)
	handler := ToolUpdateContext(d)

	_, before, err := handler(context.Background(), nil, UpdateContextInput{Source: `{"a": 1}`})
	require.NoError(t, err)

	_, _, err = handler(context.Background(), nil, UpdateContextInput{Source: `{"a": `})
	requireCode(t, err, ErrCodeParse)

	_, _, err = handler(context.Background(), nil, UpdateContextInput{Source: `{"a": 1}`, Select: ".a |"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = handler(context.Background(), nil, UpdateContextInput{Source: `{"a": 1}`, Select: ".b[]"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, after, err := ToolGetDeclaration(d)(context.Background(), nil, GetDeclarationInput{})
	require.NoError(t, err)
	assert.Equal(t, before.Declaration.Declaration, after.Declaration.Declaration)
}

func yamlAliasBomb() string {
	var b strings.Builder
	b.WriteString("a0: &a0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 7; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*a%d, ", i-1), 10), ", ")
		fmt.Fprintf(&b, "a%d: &a%d [%s]\n", i, i, refs)
	}
	return b.String()
}

func TestToolUpdateContext_YAMLAliasExpansionRejected(t *testing.T) {
	d := newTestDeps(t)
	src := yamlAliasBomb()
	require.Less(t, len(src), d.Config.MaxSourceBytes)

	_, before, err := ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: `{"a": 1}`})
	require.NoError(t, err)

	_, _, err = ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: src, Format: "yaml"})
	requireCode(t, err, ErrCodeParse)
	assert.ErrorIs(t, err, value.ErrTooLarge)

	_, after, err := ToolGetDeclaration(d)(context.Background(), nil, GetDeclarationInput{})
	require.NoError(t, err)
	assert.Equal(t, before.Declaration.Declaration, after.Declaration.Declaration)

	_, out, err := ToolInferDeclaration(d)(context.Background(), nil, InferDeclarationInput{Sources: []string{src}, Format: "yaml"})
	require.NoError(t, err)
	assert.Contains(t, out.Results[0].Error, ErrCodeParse)
}

func TestToolUpdateContext_YAMLMergeKey(t *testing.T) {
	d := newTestDeps(t)

	_, out, err := ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{
		Source: "base: &b {host: db}\nprod:\n  <<: *b\n  port: 5432\n",
		Format: "yaml",
		Select: ".prod",
	})
	require.NoError(t, err)
	assert.NotContains(t, out.Declaration.Declaration, "<<")
	assert.Contains(t, out.Declaration.Declaration, "host: string;")
	assert.Contains(t, out.Declaration.Declaration, "port: number;")
}

func TestToolAddProperty(t *testing.T) {
	d := newTestDeps(t)
	handler := ToolAddProperty(d)

	_, out, err := handler(context.Background(), nil, AddPropertyInput{Name: " items ", Kind: "array"})
	require.NoError(t, err)
	assert.Equal(t, "items", out.Name)
	assert.Equal(t, "array", out.Kind)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, out.Default)
	assert.Contains(t, out.Declaration.Declaration, "items: number[];")

	_, out, err = handler(context.Background(), nil, AddPropertyInput{Name: "label"})
	require.NoError(t, err)
	assert.Equal(t, "string", out.Kind)
	assert.Equal(t, "sample text", out.Default)

	_, _, err = handler(context.Background(), nil, AddPropertyInput{Name: "x", Kind: "date"})
	requireCode(t, err, ErrCodeInvalidInput)

	_, _, err = handler(context.Background(), nil, AddPropertyInput{Name: "  "})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolContextSchemaAndValidate(t *testing.T) {
	d := newTestDeps(t)
	_, _, err := ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: `{"id": 1, "tags": ["a"]}`})
	require.NoError(t, err)

	_, out, err := ToolContextSchema(d)(context.Background(), nil, ContextSchemaInput{Closed: true})
	require.NoError(t, err)
	s, ok := out.Schema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])

	_, res, err := ToolValidateContext(d)(context.Background(), nil, ValidateContextInput{})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	_, res, err = ToolValidateContext(d)(context.Background(), nil, ValidateContextInput{
		Schema: `{"type": "object", "properties": {"id": {"type": "string"}}}`,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "/id: "))

	_, _, err = ToolValidateContext(d)(context.Background(), nil, ValidateContextInput{Schema: `{`})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolQueryContext(t *testing.T) {
	d := newTestDeps(t)
	_, _, err := ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: `{"items": [1, 2, 3]}`})
	require.NoError(t, err)

	_, out, err := ToolQueryContext(d)(context.Background(), nil, QueryContextInput{Expression: ".items[]", MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, out.Values)
	assert.Equal(t, 3, out.RawCount)
	assert.True(t, out.Truncated)

	_, _, err = ToolQueryContext(d)(context.Background(), nil, QueryContextInput{})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolGetDeclaration_ContextPreview(t *testing.T) {
	d := newTestDeps(t)
	_, _, err := ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: `{"ids": [1, 2, 3, 4, 5]}`})
	require.NoError(t, err)

	_, out, err := ToolGetDeclaration(d)(context.Background(), nil, GetDeclarationInput{})
	require.NoError(t, err)
	assert.Nil(t, out.Context)

	_, out, err = ToolGetDeclaration(d)(context.Background(), nil, GetDeclarationInput{IncludeContext: true, MaxArrayItems: 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ids": []any{float64(1), float64(2), "... (3 more items)"}}, out.Context)

	_, _, err = ToolGetDeclaration(d)(context.Background(), nil, GetDeclarationInput{MaxArrayItems: -1})
	requireCode(t, err, ErrCodeInvalidInput)
}

func TestToolTeardown(t *testing.T) {
	d := newTestDeps(t)

	_, out, err := ToolTeardown(d)(context.Background(), nil, TeardownInput{})
	require.NoError(t, err)
	assert.Equal(t, "terminated", out.Declaration.State)
	assert.False(t, out.Declaration.Active)
	assert.Nil(t, out.Resource)
	assert.Equal(t, 0, out.Libs.Live)

	_, _, err = ToolUpdateContext(d)(context.Background(), nil, UpdateContextInput{Source: `{}`})
	requireCode(t, err, ErrCodeTerminated)

	_, _, err = ToolAddProperty(d)(context.Background(), nil, AddPropertyInput{Name: "a"})
	requireCode(t, err, ErrCodeTerminated)
}

func TestToolOutputsPassSchemaCheck(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[InferDeclarationOutput]("ctxdts_infer_declaration")
		CheckOutputSchema[DeclarationOutput]("ctxdts_update_context")
		CheckOutputSchema[AddPropertyOutput]("ctxdts_add_property")
		CheckOutputSchema[ContextSchemaOutput]("ctxdts_context_schema")
		CheckOutputSchema[QueryContextOutput]("ctxdts_query_context")
	})
}
