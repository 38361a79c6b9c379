// Package cache memoizes rendered declarations.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/value"
)

// DeclarationCache provides thread-safe LRU caching of declaration text
// keyed by value content and rendering options.
type DeclarationCache struct {
	cache  *lru.Cache[string, string]
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewDeclarationCache creates a new LRU cache with the specified maximum number of items.
func NewDeclarationCache(maxItems int) (*DeclarationCache, error) {
	c, err := lru.New[string, string](maxItems)
	if err != nil {
		return nil, err
	}
	return &DeclarationCache{cache: c}, nil
}

// Key derives the cache key for rendering v with opts. wrapper distinguishes
// bare types from `declare var` statements and their variable name.
func Key(v value.Value, opts dts.Options, wrapper string) (string, error) {
	data, err := value.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding value for cache key: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%s\x00%s\x00", opts.MaxDepth, opts.CommentLabel, wrapper)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a declaration from the cache by its key.
func (c *DeclarationCache) Get(key string) (string, bool) {
	decl, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return decl, ok
}

// Put adds or updates a declaration in the cache.
func (c *DeclarationCache) Put(key, decl string) {
	c.cache.Add(key, decl)
}

// GetOrRender returns the cached declaration for key, calling render on a
// miss. Concurrent misses for one key share a single render call.
func (c *DeclarationCache) GetOrRender(key string, render func() string) string {
	if decl, ok := c.Get(key); ok {
		return decl
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// A flight that finished after our miss may have filled the slot.
		if decl, ok := c.cache.Peek(key); ok {
			return decl, nil
		}
		decl := render()
		c.Put(key, decl)
		return decl, nil
	})
	return v.(string)
}

// Len returns the current number of items in the cache.
func (c *DeclarationCache) Len() int {
	return c.cache.Len()
}

// Stats returns hit and miss counts.
func (c *DeclarationCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
