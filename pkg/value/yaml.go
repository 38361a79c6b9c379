package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrTooLarge is returned when aliases expand a YAML document past its
// node budget.
var ErrTooLarge = errors.New("input expands to too many values")

// YAML node budget: yamlNodesPerByte nodes per source byte, at least
// minYAMLNodes and never more than maxYAMLNodes.
const (
	yamlNodesPerByte = 16
	minYAMLNodes     = 10_000
	maxYAMLNodes     = 4_000_000
)

// ParseYAML decodes a single YAML document, keeping mapping key order.
// Aliases are expanded in place and merge keys (<<) pull in the fields the
// mapping does not set itself. Scalar mapping keys keep their YAML
// spelling; other keys are rejected. An empty document is Null.
func ParseYAML(src []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	d := &yamlDecoder{budget: yamlBudget(len(src))}
	return d.decode(&doc, 0)
}

func yamlBudget(size int) int {
	return min(max(size*yamlNodesPerByte, minYAMLNodes), maxYAMLNodes)
}

type yamlDecoder struct {
	budget int // values still allowed
}

func (d *yamlDecoder) decode(n *yaml.Node, level int) (Value, error) {
	if level > MaxParseDepth {
		return nil, ErrTooDeep
	}
	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		if d.budget <= 0 {
			return nil, ErrTooLarge
		}
		d.budget--
	}

	switch n.Kind {
	case 0:
		return Null{}, nil

	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return d.decode(n.Content[0], level)

	case yaml.AliasNode:
		if n.Alias == nil {
			return Null{}, nil
		}
		return d.decode(n.Alias, level+1)

	case yaml.SequenceNode:
		arr := make(Array, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := d.decode(item, level+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.MappingNode:
		return d.decodeMapping(n, level)

	case yaml.ScalarNode:
		return decodeScalar(n)

	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

// decodeMapping builds an object in key order. Fields set explicitly win
// over merged ones wherever they appear; among merged mappings the first
// one listed wins.
func (d *yamlDecoder) decodeMapping(n *yaml.Node, level int) (Value, error) {
	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if isMergeKey(n.Content[i]) {
			continue
		}
		key, err := mappingKey(n.Content[i])
		if err != nil {
			return nil, err
		}
		explicit[key] = true
	}

	obj := NewObject()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if isMergeKey(keyNode) {
			sources, err := d.mergeSources(valNode, level+1)
			if err != nil {
				return nil, err
			}
			for _, src := range sources {
				src.Range(func(k string, v Value) bool {
					if _, seen := obj.Get(k); !seen && !explicit[k] {
						obj.Set(k, v)
					}
					return true
				})
			}
			continue
		}

		key, _ := mappingKey(keyNode)
		v, err := d.decode(valNode, level+1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	return obj, nil
}

// mergeSources decodes the value of a merge key: one mapping or a sequence
// of mappings, usually aliases.
func (d *yamlDecoder) mergeSources(n *yaml.Node, level int) ([]*Object, error) {
	target := n
	if target.Kind == yaml.AliasNode && target.Alias != nil {
		target = target.Alias
	}

	items := []*yaml.Node{n}
	if target.Kind == yaml.SequenceNode {
		items = target.Content
	}

	out := make([]*Object, 0, len(items))
	for _, item := range items {
		v, err := d.decode(item, level)
		if err != nil {
			return nil, err
		}
		obj, ok := v.(*Object)
		if !ok {
			return nil, fmt.Errorf("merge key at line %d: expected a mapping, got %s", item.Line, v.Kind())
		}
		out = append(out, obj)
	}
	return out, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}

// mappingKey returns the spelling of a scalar key, following an alias.
func mappingKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("mapping key at line %d is not a scalar", n.Line)
	}
	return n.Value, nil
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil

	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Wider than int64: keep the literal, approximate the float.
			f, ferr := strconv.ParseFloat(n.Value, 64)
			if ferr != nil {
				return nil, err
			}
			return Number{Float: f, Literal: n.Value}, nil
		}
		return Number{Float: float64(i), Literal: strconv.FormatInt(i, 10)}, nil

	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Number{Float: f}, nil
		}
		return Number{Float: f, Literal: strconv.FormatFloat(f, 'g', -1, 64)}, nil

	default:
		return String(n.Value), nil
	}
}
