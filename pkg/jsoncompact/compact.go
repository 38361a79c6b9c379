// Package jsoncompact shrinks values for display by trimming arrays and
// long strings. Object key order is preserved.
package jsoncompact

import (
	"fmt"

	"github.com/usestring/ctxdts/pkg/value"
)

// Options controls compaction behavior.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N bytes (0 = no limit)
	MaxDepth      int // Max recursion depth (0 = unlimited)
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 500
	DefaultMaxDepth      = 0 // unlimited
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact returns a trimmed copy of v. A trimmed array keeps its first
// items and ends with a "... (N more items)" marker, so its first element,
// and with it the inferred declaration, does not change.
// If opts is nil, DefaultOptions() is used.
func Compact(v value.Value, opts *Options) value.Value {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts, 0)
}

func compactRecursive(v value.Value, opts *Options, depth int) value.Value {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		switch v.(type) {
		case value.Array, *value.Object:
			return value.String("[max depth]")
		}
	}

	switch val := v.(type) {
	case value.Array:
		return compactArray(val, opts, depth)
	case *value.Object:
		return compactObject(val, opts, depth)
	case value.String:
		return compactString(val, opts)
	default:
		return v
	}
}

func compactString(s value.String, opts *Options) value.String {
	if opts.MaxStringLen <= 0 || len(s) <= opts.MaxStringLen {
		return s
	}
	remaining := len(s) - opts.MaxStringLen
	return s[:opts.MaxStringLen] + value.String(fmt.Sprintf("... (%d more chars)", remaining))
}

func compactArray(arr value.Array, opts *Options, depth int) value.Array {
	if len(arr) == 0 {
		return arr
	}

	if opts.MaxArrayItems <= 0 || len(arr) <= opts.MaxArrayItems {
		result := make(value.Array, len(arr))
		for i, item := range arr {
			result[i] = compactRecursive(item, opts, depth+1)
		}
		return result
	}

	result := make(value.Array, opts.MaxArrayItems+1)
	for i := 0; i < opts.MaxArrayItems; i++ {
		result[i] = compactRecursive(arr[i], opts, depth+1)
	}
	remaining := len(arr) - opts.MaxArrayItems
	result[opts.MaxArrayItems] = value.String(fmt.Sprintf("... (%d more items)", remaining))
	return result
}

func compactObject(obj *value.Object, opts *Options, depth int) *value.Object {
	result := value.NewObject()
	obj.Range(func(k string, v value.Value) bool {
		result.Set(k, compactRecursive(v, opts, depth+1))
		return true
	})
	return result
}
