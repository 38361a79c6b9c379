package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Format names a textual encoding of a Value.
type Format string

// Supported source formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MaxParseDepth bounds container nesting accepted by the parsers.
const MaxParseDepth = 1000

// ErrTooDeep is returned when source text nests deeper than MaxParseDepth.
var ErrTooDeep = errors.New("input too deeply nested")

// ParseFormat normalizes a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}

// FormatForPath picks a format from a file extension. Anything that is
// not .yaml or .yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes src according to format.
func Parse(src []byte, format Format) (Value, error) {
	switch format {
	case FormatJSON, "":
		return ParseJSON(src)
	case FormatYAML:
		return ParseYAML(src)
	default:
		return nil, fmt.Errorf("unknown format: %q", format)
	}
}

// ParseJSON decodes a single JSON document, keeping object key order.
// A key repeated inside one object keeps its first position and its last
// value.
func ParseJSON(src []byte) (Value, error) {
	if !json.Valid(src) {
		return nil, fmt.Errorf("invalid JSON: %w", syntaxError(src))
	}

	raw, dataType, _, err := jsonparser.Get(src)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return decodeJSON(raw, dataType, 0)
}

// syntaxError recovers the encoding/json diagnostic for invalid input.
func syntaxError(src []byte) error {
	var discard any
	if err := json.Unmarshal(src, &discard); err != nil {
		return err
	}
	return errors.New("malformed document")
}

func decodeJSON(raw []byte, dataType jsonparser.ValueType, level int) (Value, error) {
	if level > MaxParseDepth {
		return nil, ErrTooDeep
	}

	switch dataType {
	case jsonparser.Null:
		return Null{}, nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, err
		}
		return Bool(b), nil

	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			// Out-of-range literals still describe a number.
			var numErr *strconv.NumError
			if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
				return nil, err
			}
		}
		return Number{Float: f, Literal: string(raw)}, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		return String(s), nil

	case jsonparser.Array:
		arr := Array{}
		var firstErr error
		_, err := jsonparser.ArrayEach(raw, func(item []byte, itemType jsonparser.ValueType, _ int, itemErr error) {
			if firstErr != nil {
				return
			}
			if itemErr != nil {
				firstErr = itemErr
				return
			}
			v, err := decodeJSON(item, itemType, level+1)
			if err != nil {
				firstErr = err
				return
			}
			arr = append(arr, v)
		})
		if firstErr != nil {
			return nil, firstErr
		}
		if err != nil {
			return nil, err
		}
		return arr, nil

	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(raw, func(key []byte, item []byte, itemType jsonparser.ValueType, _ int) error {
			v, err := decodeJSON(item, itemType, level+1)
			if err != nil {
				return err
			}
			// ObjectEach hands over keys already unescaped.
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("unexpected JSON token: %s", dataType)
	}
}
