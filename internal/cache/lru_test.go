package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/value"
)

func TestKey_StableAndOrderSensitive(t *testing.T) {
	a, _ := value.ParseJSON([]byte(`{"a": 1, "b": 2}`))
	a2, _ := value.ParseJSON([]byte(`{"a": 1, "b": 2}`))
	b, _ := value.ParseJSON([]byte(`{"b": 2, "a": 1}`))
	opts := dts.DefaultOptions()

	ka, err := Key(a, opts, "")
	require.NoError(t, err)
	ka2, err := Key(a2, opts, "")
	require.NoError(t, err)
	kb, err := Key(b, opts, "")
	require.NoError(t, err)

	assert.Equal(t, ka, ka2)
	assert.NotEqual(t, ka, kb)

	kd, err := Key(a, dts.Options{MaxDepth: 3, CommentLabel: "Property"}, "")
	require.NoError(t, err)
	assert.NotEqual(t, ka, kd)

	kw, err := Key(a, opts, "declare:contexto")
	require.NoError(t, err)
	assert.NotEqual(t, ka, kw)
}

func TestDeclarationCache_GetPut(t *testing.T) {
	c, err := NewDeclarationCache(2)
	require.NoError(t, err)

	_, ok := c.Get("k1")
	assert.False(t, ok)

	c.Put("k1", "number")
	c.Put("k2", "string")
	c.Put("k3", "boolean")

	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("k1")
	assert.False(t, ok, "oldest entry should be evicted")

	decl, ok := c.Get("k3")
	require.True(t, ok)
	assert.Equal(t, "boolean", decl)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestDeclarationCache_InvalidSize(t *testing.T) {
	_, err := NewDeclarationCache(0)
	assert.Error(t, err)
}

func TestDeclarationCache_GetOrRenderCollapsesConcurrentMisses(t *testing.T) {
	c, err := NewDeclarationCache(8)
	require.NoError(t, err)

	var calls atomic.Int32
	render := func() string {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "any[]"
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrRender("same", render)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "any[]", r)
	}
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, "any[]", c.GetOrRender("same", func() string { return "changed" }))
}
