// Package jsonschema provides JSON Schema inference from context values.
// It generates schemas following JSON Schema Draft 2020-12.
//
// Unlike the TypeScript declaration, which samples the first element of an
// array, a schema describes every element: item schemas are merged.
package jsonschema

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/usestring/ctxdts/pkg/value"
)

// InferredSchema contains a JSON Schema inferred from sample values along with metadata.
type InferredSchema struct {
	Schema      *jsonschema.Schema `json:"schema"`       // JSON Schema (Draft 2020-12)
	SampleCount int                `json:"sample_count"` // Number of samples used
	AllMatch    bool               `json:"all_match"`    // True if all samples had identical schema
}

// InferOptions controls schema inference behavior.
type InferOptions struct {
	// StrictRequired marks properties as required only if present in ALL samples.
	// With a single sample every present field is required.
	// When false no fields are marked as required.
	StrictRequired bool
	// AdditionalProperties sets additionalProperties in object schemas.
	// Default: nil (not set)
	AdditionalProperties *bool
	// MarkNullableAsOptional treats fields that can be null as optional.
	MarkNullableAsOptional bool
	// PropertyLabel, when set, describes every property as "<label>: <key>",
	// the same text the declaration puts in its doc comments.
	PropertyLabel string
}

// DefaultInferOptions returns the default inference options.
func DefaultInferOptions() *InferOptions {
	return &InferOptions{
		StrictRequired:         true,
		MarkNullableAsOptional: true,
	}
}

// Infer generates a JSON Schema from one or more sample values.
// Returns a merged schema if multiple samples are provided, nil for none.
func Infer(samples ...value.Value) *InferredSchema {
	return InferWithOptions(DefaultInferOptions(), samples...)
}

// InferWithOptions generates a JSON Schema with custom options.
func InferWithOptions(opts *InferOptions, samples ...value.Value) *InferredSchema {
	if len(samples) == 0 {
		return nil
	}
	if opts == nil {
		opts = DefaultInferOptions()
	}

	schemas := make([]*jsonschema.Schema, 0, len(samples))
	for _, s := range samples {
		schemas = append(schemas, inferFromValue(s))
	}

	allMatch := true
	if len(schemas) > 1 {
		first, _ := json.Marshal(schemas[0])
		for i := 1; i < len(schemas); i++ {
			other, _ := json.Marshal(schemas[i])
			if string(first) != string(other) {
				allMatch = false
				break
			}
		}
	}

	merged := mergeSchemas(schemas)

	if opts.StrictRequired && merged.Type == "object" {
		computeRequiredFields(merged, samples, opts.MarkNullableAsOptional)
	}

	if opts.AdditionalProperties != nil {
		applyAdditionalProperties(merged, *opts.AdditionalProperties)
	}
	if opts.PropertyLabel != "" {
		describeProperties(merged, opts.PropertyLabel)
	}

	return &InferredSchema{
		Schema:      merged,
		SampleCount: len(schemas),
		AllMatch:    allMatch,
	}
}

// InferFromValue generates a JSON Schema from a single value without
// required-field or additionalProperties post-processing.
func InferFromValue(v value.Value) *jsonschema.Schema {
	return inferFromValue(v)
}

func inferFromValue(v value.Value) *jsonschema.Schema {
	switch val := v.(type) {
	case nil, value.Null:
		return &jsonschema.Schema{Type: "null"}

	case value.Bool:
		return &jsonschema.Schema{Type: "boolean"}

	case value.Number:
		f := val.Float
		if math.Trunc(f) == f && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}

	case value.String:
		return &jsonschema.Schema{Type: "string"}

	case value.Array:
		return inferArraySchema(val)

	case *value.Object:
		return inferObjectSchema(val)

	default:
		// Unknown type, return empty schema (matches anything)
		return &jsonschema.Schema{}
	}
}

func inferArraySchema(arr value.Array) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: "array"}

	if len(arr) == 0 {
		return schema
	}

	itemSchemas := make([]*jsonschema.Schema, 0, len(arr))
	for _, item := range arr {
		itemSchemas = append(itemSchemas, inferFromValue(item))
	}

	schema.Items = mergeSchemas(itemSchemas)
	return schema
}

func inferObjectSchema(obj *value.Object) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	obj.Range(func(k string, fv value.Value) bool {
		schema.Properties.Set(k, inferFromValue(fv))
		return true
	})

	return schema
}

func mergeSchemas(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 0 {
		return &jsonschema.Schema{}
	}
	if len(schemas) == 1 {
		return schemas[0]
	}

	types := make(map[string]bool)
	var objectSchemas []*jsonschema.Schema
	var arraySchemas []*jsonschema.Schema

	for _, s := range flattenAnyOf(schemas) {
		if s.Type == "" {
			continue
		}
		types[s.Type] = true

		switch s.Type {
		case "object":
			objectSchemas = append(objectSchemas, s)
		case "array":
			arraySchemas = append(arraySchemas, s)
		}
	}

	// integer widens to number when both appear
	if types["integer"] && types["number"] {
		delete(types, "integer")
	}

	if len(types) == 0 {
		return &jsonschema.Schema{}
	}

	if len(types) == 1 {
		for t := range types {
			switch t {
			case "object":
				return mergeObjectSchemas(objectSchemas)
			case "array":
				return mergeArraySchemas(arraySchemas)
			default:
				return &jsonschema.Schema{Type: t}
			}
		}
	}

	typeList := make([]string, 0, len(types))
	for t := range types {
		typeList = append(typeList, t)
	}
	sort.Strings(typeList)

	// invopop/jsonschema has no type arrays, so unions use anyOf.
	anyOf := make([]*jsonschema.Schema, 0, len(typeList))
	if len(objectSchemas) > 0 {
		anyOf = append(anyOf, mergeObjectSchemas(objectSchemas))
	}
	if len(arraySchemas) > 0 {
		anyOf = append(anyOf, mergeArraySchemas(arraySchemas))
	}
	for _, t := range typeList {
		if t != "object" && t != "array" {
			anyOf = append(anyOf, &jsonschema.Schema{Type: t})
		}
	}

	if len(anyOf) == 1 {
		return anyOf[0]
	}
	return &jsonschema.Schema{AnyOf: anyOf}
}

// flattenAnyOf replaces union schemas with their members so nested merges
// see every type.
func flattenAnyOf(schemas []*jsonschema.Schema) []*jsonschema.Schema {
	out := make([]*jsonschema.Schema, 0, len(schemas))
	for _, s := range schemas {
		if s.Type == "" && len(s.AnyOf) > 0 {
			out = append(out, flattenAnyOf(s.AnyOf)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// mergeObjectSchemas unions properties in first-seen order.
func mergeObjectSchemas(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 0 {
		return &jsonschema.Schema{Type: "object"}
	}
	if len(schemas) == 1 {
		return schemas[0]
	}

	var order []string
	allProperties := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if _, seen := allProperties[pair.Key]; !seen {
				order = append(order, pair.Key)
			}
			allProperties[pair.Key] = append(allProperties[pair.Key], pair.Value)
		}
	}

	merged := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, k := range order {
		merged.Properties.Set(k, mergeSchemas(allProperties[k]))
	}

	return merged
}

func mergeArraySchemas(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 0 {
		return &jsonschema.Schema{Type: "array"}
	}
	if len(schemas) == 1 {
		return schemas[0]
	}

	itemSchemas := make([]*jsonschema.Schema, 0, len(schemas))
	for _, s := range schemas {
		if s.Items != nil {
			itemSchemas = append(itemSchemas, s.Items)
		}
	}

	merged := &jsonschema.Schema{Type: "array"}
	if len(itemSchemas) > 0 {
		merged.Items = mergeSchemas(itemSchemas)
	}
	return merged
}

// computeRequiredFields marks the properties present in every sample as
// required, skipping fields that are ever null when markNullableAsOptional
// is set. Required lists follow property order.
func computeRequiredFields(schema *jsonschema.Schema, samples []value.Value, markNullableAsOptional bool) {
	if schema.Type != "object" || schema.Properties == nil {
		return
	}

	objects := make([]*value.Object, 0, len(samples))
	for _, s := range samples {
		if obj, ok := s.(*value.Object); ok {
			objects = append(objects, obj)
		}
	}
	if len(objects) == 0 {
		return
	}

	required := make([]string, 0)
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		count, nullable := 0, false
		for _, obj := range objects {
			fv, ok := obj.Get(pair.Key)
			if !ok {
				continue
			}
			count++
			if fv.Kind() == value.KindNull {
				nullable = true
			}
		}
		if count == len(objects) && !(markNullableAsOptional && nullable) {
			required = append(required, pair.Key)
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		propSchema := pair.Value
		nested := make([]value.Value, 0)

		switch {
		case propSchema.Type == "object":
			for _, obj := range objects {
				if fv, ok := obj.Get(pair.Key); ok && fv.Kind() == value.KindObject {
					nested = append(nested, fv)
				}
			}
			if len(nested) > 0 {
				computeRequiredFields(propSchema, nested, markNullableAsOptional)
			}

		case propSchema.Type == "array" && propSchema.Items != nil && propSchema.Items.Type == "object":
			for _, obj := range objects {
				fv, _ := obj.Get(pair.Key)
				if arr, ok := fv.(value.Array); ok {
					for _, item := range arr {
						if item.Kind() == value.KindObject {
							nested = append(nested, item)
						}
					}
				}
			}
			if len(nested) > 0 {
				computeRequiredFields(propSchema.Items, nested, markNullableAsOptional)
			}
		}
	}
}

// applyAdditionalProperties recursively sets additionalProperties on all object schemas.
func applyAdditionalProperties(schema *jsonschema.Schema, allowed bool) {
	if schema == nil {
		return
	}

	if schema.Type == "object" {
		if allowed {
			schema.AdditionalProperties = jsonschema.TrueSchema
		} else {
			schema.AdditionalProperties = jsonschema.FalseSchema
		}

		if schema.Properties != nil {
			for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				applyAdditionalProperties(pair.Value, allowed)
			}
		}
	}

	if schema.Type == "array" && schema.Items != nil {
		applyAdditionalProperties(schema.Items, allowed)
	}

	for _, s := range schema.AnyOf {
		applyAdditionalProperties(s, allowed)
	}
}

func describeProperties(schema *jsonschema.Schema, label string) {
	if schema == nil {
		return
	}
	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			pair.Value.Description = label + ": " + pair.Key
			describeProperties(pair.Value, label)
		}
	}
	describeProperties(schema.Items, label)
	for _, s := range schema.AnyOf {
		describeProperties(s, label)
	}
}
