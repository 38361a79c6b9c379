// Package query provides JQ-based projection of context values.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/ctxdts/pkg/value"
)

// ErrNoResult is returned by Project when the expression yields nothing.
var ErrNoResult = errors.New("jq expression produced no result")

// Engine executes JQ queries against context values.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// QueryResult contains the results of a JQ query.
type QueryResult struct {
	Values   []value.Value `json:"values"`           // Extracted values
	Errors   []string      `json:"errors,omitempty"` // Runtime errors (e.g., type mismatch)
	RawCount int           `json:"raw_count"`        // Count before the maxResults cut
}

// Query executes a JQ expression against v.
// Object keys in the results come back sorted; gojq does not keep
// insertion order.
func (e *Engine) Query(v value.Value, expression string, maxResults int) (*QueryResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Values: make([]value.Value, 0),
		Errors: make([]string, 0),
	}

	seenErrors := make(map[string]bool)
	iter := code.Run(value.ToAny(v))

	for {
		out, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := out.(error); isErr {
			msg := formatJQError("context", err)
			if !seenErrors[msg] {
				result.Errors = append(result.Errors, msg)
				seenErrors[msg] = true
			}
			continue
		}

		result.RawCount++
		if maxResults > 0 && len(result.Values) >= maxResults {
			continue
		}

		converted, err := value.FromAny(out)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("context: %v", err))
			continue
		}
		result.Values = append(result.Values, converted)
	}

	return result, nil
}

// Project runs expression against v and returns its first output.
// A runtime error before any output fails the projection.
func (e *Engine) Project(v value.Value, expression string) (value.Value, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	iter := code.Run(value.ToAny(v))
	out, ok := iter.Next()
	if !ok {
		return nil, ErrNoResult
	}
	if err, isErr := out.(error); isErr {
		return nil, errors.New(formatJQError("select", err))
	}

	return value.FromAny(out)
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// formatJQError creates a helpful error message for JQ execution errors.
//
// Runtime errors such as "cannot iterate over: null" have no typed wrapper
// in gojq, so hints are chosen by string matching on the message.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in the context)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}
