package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/registry"
)

// Error codes for MCP tool responses.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeParse        = "PARSE_ERROR"
	ErrCodeTerminated   = "TERMINATED"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapWorkspaceError converts a workspace error to a coded error.
func WrapWorkspaceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	var srcErr *workspace.SourceError

	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, workspace.ErrTornDown), errors.Is(err, registry.ErrTerminated):
		coded = &CodedError{
			Code:    ErrCodeTerminated,
			Message: "workspace has been torn down",
			Cause:   err,
		}
	case errors.Is(err, workspace.ErrEmptyName):
		coded = &CodedError{
			Code:    ErrCodeInvalidInput,
			Message: "name is required",
			Cause:   err,
		}
	case errors.As(err, &srcErr) && srcErr.Stage == workspace.StageParse:
		coded = &CodedError{
			Code:    ErrCodeParse,
			Message: fmt.Sprintf("source is not valid %s", srcErr.Format),
			Cause:   srcErr.Err,
		}
	case errors.As(err, &srcErr):
		coded = &CodedError{
			Code:    ErrCodeInvalidInput,
			Message: "select expression failed",
			Cause:   srcErr.Err,
		}
	default:
		return err
	}

	slog.Warn("workspace error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// ErrParse creates a parse error for source text.
func ErrParse(message string, cause error) error {
	return &CodedError{
		Code:    ErrCodeParse,
		Message: message,
		Cause:   cause,
	}
}
