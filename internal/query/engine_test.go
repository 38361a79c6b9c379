package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/ctxdts/pkg/value"
)

func mustParse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func marshal(t *testing.T, v value.Value) string {
	t.Helper()
	data, err := value.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestEngine_Query_Simple(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(mustParse(t, `{"name": "John", "age": 30}`), ".name", 0)
	require.NoError(t, err)
	require.Len(t, result.Values, 1)
	assert.Equal(t, value.String("John"), result.Values[0])
	assert.Equal(t, 1, result.RawCount)
}

func TestEngine_Query_Array(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(mustParse(t, `{"items": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`), ".items[].name", 0)
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.String("a"), value.String("b"), value.String("c")}, result.Values)
	assert.Equal(t, 3, result.RawCount)
}

func TestEngine_Query_MaxResults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(mustParse(t, `{"items": [1, 2, 3, 4, 5]}`), ".items[]", 3)
	require.NoError(t, err)
	assert.Len(t, result.Values, 3)
	assert.Equal(t, 5, result.RawCount)
	assert.Equal(t, "1", marshal(t, result.Values[0]))
}

func TestEngine_Query_RuntimeErrorHint(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(mustParse(t, `{"items": null}`), ".items[]", 0)
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "path may not exist")
}

func TestEngine_Query_InvalidExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Query(mustParse(t, `{}`), ".[", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_Project_FirstResult(t *testing.T) {
	engine := NewEngine()
	v := mustParse(t, `{"data": {"usuario": {"nombre": "Juan", "edad": 30}}, "other": true}`)

	got, err := engine.Project(v, ".data.usuario")
	require.NoError(t, err)
	assert.Equal(t, value.KindObject, got.Kind())
	// gojq hands back plain maps, so keys come out sorted.
	assert.Equal(t, `{"edad":30,"nombre":"Juan"}`, marshal(t, got))

	got, err = engine.Project(v, ".data.usuario | .nombre, .edad")
	require.NoError(t, err)
	assert.Equal(t, value.String("Juan"), got)
}

func TestEngine_Project_Construct(t *testing.T) {
	engine := NewEngine()

	got, err := engine.Project(mustParse(t, `{"a": [1, 2, 3]}`), "{count: (.a | length), first: .a[0]}")
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"first":1}`, marshal(t, got))
}

func TestEngine_Project_NoResult(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Project(mustParse(t, `{"a": []}`), ".a[]")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestEngine_Project_RuntimeError(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Project(mustParse(t, `{"a": "x"}`), ".a.b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select:")
}

func TestEngine_Project_Halt(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Project(mustParse(t, `{}`), `"stop" | halt_error`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query halted")
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateExpression(".a | keys"))
	assert.Error(t, engine.ValidateExpression(".a |"))
	assert.Error(t, engine.ValidateExpression("undefined_fn(1)"))
}
