package jsoncompact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/value"
)

func parse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func marshal(t *testing.T, v value.Value) string {
	t.Helper()
	b, err := value.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestCompact_BasicArrayTrimming(t *testing.T) {
	v := parse(t, `{"items": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10]}`)

	got := Compact(v, &Options{MaxArrayItems: 3})
	assert.Equal(t, `{"items":[1,2,3,"... (7 more items)"]}`, marshal(t, got))
}

func TestCompact_ArrayWithinLimit(t *testing.T) {
	v := parse(t, `{"items": [1, 2, 3]}`)

	got := Compact(v, &Options{MaxArrayItems: 5})
	assert.Equal(t, `{"items":[1,2,3]}`, marshal(t, got))
}

func TestCompact_NestedArrays(t *testing.T) {
	v := parse(t, `{
		"users": [
			{"name": "Alice", "tags": ["a", "b", "c", "d", "e"]},
			{"name": "Bob", "tags": ["x", "y", "z", "w"]},
			{"name": "Charlie", "tags": ["1", "2"]},
			{"name": "Dave", "tags": []}
		]
	}`)

	got := Compact(v, &Options{MaxArrayItems: 3})
	assert.Equal(t,
		`{"users":[{"name":"Alice","tags":["a","b","c","... (2 more items)"]},`+
			`{"name":"Bob","tags":["x","y","z","... (1 more items)"]},`+
			`{"name":"Charlie","tags":["1","2"]},"... (1 more items)"]}`,
		marshal(t, got))
}

func TestCompact_KeepsKeyOrder(t *testing.T) {
	v := parse(t, `{"z": 1, "a": [true], "m": null}`)

	got := Compact(v, nil)
	obj, ok := got.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestCompact_DoesNotModifyInput(t *testing.T) {
	v := parse(t, `{"items": [1, 2, 3, 4, 5]}`)
	before := marshal(t, v)

	Compact(v, &Options{MaxArrayItems: 1})
	assert.Equal(t, before, marshal(t, v))
}

func TestCompact_EmptyArray(t *testing.T) {
	got := Compact(parse(t, `{"items": []}`), &Options{MaxArrayItems: 3})
	assert.Equal(t, `{"items":[]}`, marshal(t, got))
}

func TestCompact_NilOptions(t *testing.T) {
	got := Compact(parse(t, `[1, 2, 3, 4, 5]`), nil)
	assert.Equal(t, `[1,2,3,"... (2 more items)"]`, marshal(t, got))
}

func TestCompact_MaxDepth(t *testing.T) {
	v := parse(t, `{"a": {"b": {"c": [1]}, "n": 1}}`)

	got := Compact(v, &Options{MaxDepth: 2})
	assert.Equal(t, `{"a":{"b":"[max depth]","n":1}}`, marshal(t, got))
}

func TestCompact_DisabledArrayCompaction(t *testing.T) {
	v := parse(t, `[1, 2, 3, 4, 5, 6]`)

	got := Compact(v, &Options{MaxArrayItems: 0})
	assert.Equal(t, `[1,2,3,4,5,6]`, marshal(t, got))
}

func TestCompact_PreservesScalars(t *testing.T) {
	v := parse(t, `{"s": "x", "n": 1.50, "b": false, "z": null}`)

	got := Compact(v, nil)
	assert.Equal(t, `{"s":"x","n":1.50,"b":false,"z":null}`, marshal(t, got))
}

func TestCompact_StringTruncation(t *testing.T) {
	v := value.String(strings.Repeat("a", 20))

	got := Compact(v, &Options{MaxStringLen: 5})
	assert.Equal(t, value.String("aaaaa... (15 more chars)"), got)
}

func TestCompact_StringTruncationDisabled(t *testing.T) {
	v := value.String(strings.Repeat("a", 600))

	got := Compact(v, &Options{MaxStringLen: 0})
	assert.Equal(t, v, got)
}

func TestCompact_DeclarationUnchanged(t *testing.T) {
	v := parse(t, `{"rows": [{"id": 1, "tags": ["a", "b", "c", "d"]}, {"id": 2}, {"id": 3}, {"id": 4}], "note": "`+strings.Repeat("x", 900)+`"}`)

	assert.Equal(t, dts.Infer(v, 0), dts.Infer(Compact(v, nil), 0))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultMaxArrayItems, opts.MaxArrayItems)
	assert.Equal(t, DefaultMaxStringLen, opts.MaxStringLen)
	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
}
