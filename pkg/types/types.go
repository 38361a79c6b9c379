// Package types holds the JSON shapes ctxdts tools return. They are part of
// the public surface so embedders of pkg/mcpsrv can decode tool results.
package types

import "encoding/json"

// ToAny converts v into the untyped form the MCP SDK validates output
// against (maps, slices, float64). Schema structs and other typed values go
// through here before landing in an any-typed output field.
func ToAny(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResourceRef tells a client which resource holds the full text.
type ResourceRef struct {
	URI  string `json:"uri"`
	MIME string `json:"mime"`
	Hint string `json:"hint,omitempty"`
}

// ValidationResult is the outcome of checking the context against a schema.
// Errors carry one "<instance path>: <message>" line per failure.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
