// Package value models JSON-compatible data as a closed set of variants.
//
// A Value is exactly one of Null, Bool, Number, String, Array or *Object.
// Objects remember the order in which their keys were first inserted, so a
// value parsed from source text reproduces the source's field order.
package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the variant of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

// String returns the JavaScript-style name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a kind name to a Kind. Unknown names report false.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindNull, false
}

// Value is a JSON-compatible datum. The interface is sealed: only the types
// in this package implement it.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the JSON null.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// String is a JSON string.
type String string

// Number is a JSON number. Literal keeps the source spelling when the
// number came from text; it is empty for numbers built in code.
type Number struct {
	Float   float64
	Literal string
}

// Array is an ordered sequence of values.
type Array []Value

// Object maps string keys to values in insertion order.
type Object struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) sealed()    {}
func (Bool) sealed()    {}
func (Number) sealed()  {}
func (String) sealed()  {}
func (Array) sealed()   {}
func (*Object) sealed() {}

// NumberOf builds a Number from a float.
func NumberOf(f float64) Number {
	return Number{Float: f}
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: orderedmap.New[string, Value]()}
}

// Field is a key/value pair used to build objects literally.
type Field struct {
	Key   string
	Value Value
}

// ObjectOf builds an object from fields, in order.
func ObjectOf(fields ...Field) *Object {
	o := NewObject()
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and has its value replaced. A nil v is stored as Null.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if o.fields == nil {
		o.fields = orderedmap.New[string, Value]()
	}
	o.fields.Set(key, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o.fields == nil {
		return nil, false
	}
	return o.fields.Get(key)
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o.fields == nil {
		return 0
	}
	return o.fields.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls fn for each field in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o.fields == nil {
		return
	}
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// With returns a shallow copy of o with key set to v. The receiver is not
// modified, which lets callers treat a context object as immutable.
func (o *Object) With(key string, v Value) *Object {
	out := NewObject()
	o.Range(func(k string, fv Value) bool {
		out.Set(k, fv)
		return true
	})
	out.Set(key, v)
	return out
}
