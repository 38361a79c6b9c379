// Package dts infers TypeScript declarations from the shape of a value.
//
// The output is a structural type literal meant for an editor's completion
// engine, not a schema: it records field names and primitive kinds and
// nothing about concrete values.
//
// Arrays are typed from their first element only. A heterogeneous array such
// as [1, "x"] is declared number[]. This sampling is intentional and keeps
// declarations short for large lists; it is not a union analysis.
package dts

import (
	"strings"

	"github.com/usestring/ctxdts/pkg/value"
)

// Declaration tokens.
const (
	AnyType      = "any"
	AnyArrayType = "any[]"
)

// Defaults for Options.
const (
	DefaultMaxDepth     = 64
	DefaultCommentLabel = "Property"
	indentUnit          = "  "
)

// Options controls declaration rendering.
type Options struct {
	// MaxDepth is the number of nested arrays and objects rendered before
	// the inferencer gives up on a subtree and declares it any.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int
	// CommentLabel prefixes the doc comment emitted above each field.
	// Empty means DefaultCommentLabel.
	CommentLabel string
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		MaxDepth:     DefaultMaxDepth,
		CommentLabel: DefaultCommentLabel,
	}
}

// Inferencer renders declarations with fixed options. It holds no state
// between calls and is safe for concurrent use.
type Inferencer struct {
	opts Options
}

// New returns an Inferencer. Zero fields of opts take their defaults.
func New(opts Options) *Inferencer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.CommentLabel == "" {
		opts.CommentLabel = DefaultCommentLabel
	}
	return &Inferencer{opts: opts}
}

// Options returns the effective options.
func (in *Inferencer) Options() Options {
	return in.opts
}

var defaultInferencer = New(DefaultOptions())

// Infer renders the type of v with default options. depth is the
// indentation level of the enclosing block; it has no effect on which
// fields are emitted.
func Infer(v value.Value, depth int) string {
	return defaultInferencer.Infer(v, depth)
}

// Declare wraps the type of v in a global variable declaration using default
// options.
func Declare(name string, v value.Value) string {
	return defaultInferencer.Declare(name, v)
}

// Infer renders the type of v. depth is the indentation level of the
// enclosing block.
func (in *Inferencer) Infer(v value.Value, depth int) string {
	if depth < 0 {
		depth = 0
	}
	var b strings.Builder
	in.write(&b, v, depth, 0)
	return b.String()
}

// Declare renders `declare var <name>: <type>;`.
func (in *Inferencer) Declare(name string, v value.Value) string {
	var b strings.Builder
	b.WriteString("declare var ")
	b.WriteString(name)
	b.WriteString(": ")
	in.write(&b, v, 0, 0)
	b.WriteString(";")
	return b.String()
}

// write appends the type of v. depth drives indentation, level counts
// container nesting for the depth guard. Arrays keep the indentation of
// their element, so the two differ.
func (in *Inferencer) write(b *strings.Builder, v value.Value, depth, level int) {
	switch val := v.(type) {
	case nil, value.Null:
		b.WriteString(AnyType)

	case value.Bool, value.Number, value.String:
		b.WriteString(val.Kind().String())

	case value.Array:
		if level >= in.opts.MaxDepth {
			b.WriteString(AnyType)
			return
		}
		if len(val) == 0 {
			b.WriteString(AnyArrayType)
			return
		}
		in.write(b, val[0], depth, level+1)
		b.WriteString("[]")

	case *value.Object:
		if level >= in.opts.MaxDepth {
			b.WriteString(AnyType)
			return
		}
		in.writeObject(b, val, depth, level)

	default:
		b.WriteString(AnyType)
	}
}

func (in *Inferencer) writeObject(b *strings.Builder, obj *value.Object, depth, level int) {
	pad := strings.Repeat(indentUnit, depth)

	b.WriteString("{\n")
	obj.Range(func(key string, fv value.Value) bool {
		b.WriteString(pad)
		b.WriteString(indentUnit)
		b.WriteString("/** ")
		b.WriteString(in.opts.CommentLabel)
		b.WriteString(": ")
		b.WriteString(commentText(key))
		b.WriteString(" */\n")

		b.WriteString(pad)
		b.WriteString(indentUnit)
		b.WriteString(propertyName(key))
		b.WriteString(": ")
		in.write(b, fv, depth+1, level+1)
		b.WriteString(";\n")
		return true
	})
	b.WriteString(pad)
	b.WriteString("}")
}
