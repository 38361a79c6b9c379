// Package registry keeps at most one declaration registered with a
// code-intelligence backend under a fixed virtual file name.
//
// Registering the same virtual file twice without disposing the first
// registration leaves the backend with two declarations of the same global,
// which surfaces as duplicate-identifier diagnostics. Adapter always
// disposes the previous registration before installing the next one.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultFilePath is the virtual file declarations are registered under.
const DefaultFilePath = "ts:filename/contexto.d.ts"

// ErrTerminated is returned by Activate after Teardown.
var ErrTerminated = errors.New("registry adapter terminated")

// Handle is a live registration. Dispose must be safe to call more than once.
type Handle interface {
	Dispose()
}

// Backend is the type-checking service declarations are registered with.
type Backend interface {
	// Ready reports whether the service accepts registrations yet.
	Ready() bool
	// AddExtraLib registers content under filePath and returns its handle.
	AddExtraLib(content, filePath string) (Handle, error)
}

// State is the adapter lifecycle state.
type State int

// Adapter states.
const (
	StateUninitialized State = iota // backend not seen ready yet
	StateIdle                       // ready, nothing registered
	StateActive                     // one registration held
	StateTerminated                 // torn down; no further calls
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Adapter owns the single registration slot for one virtual file.
//
// An Adapter is not safe for concurrent use; its owner serializes calls.
type Adapter struct {
	backend  Backend
	filePath string

	state   State
	handle  Handle
	content string
}

// NewAdapter returns an adapter registering under filePath. An empty
// filePath means DefaultFilePath.
func NewAdapter(backend Backend, filePath string) *Adapter {
	if filePath == "" {
		filePath = DefaultFilePath
	}
	return &Adapter{
		backend:  backend,
		filePath: filePath,
	}
}

// FilePath returns the virtual file name registrations use.
func (a *Adapter) FilePath() string {
	return a.filePath
}

// State returns the lifecycle state.
func (a *Adapter) State() State {
	return a.state
}

// Content returns the text of the live registration, if any.
func (a *Adapter) Content() (string, bool) {
	if a.state != StateActive {
		return "", false
	}
	return a.content, true
}

// Activate replaces the live registration with text. The previous handle is
// disposed before the backend sees the new declaration.
//
// If the backend is not ready the call is skipped and returns a nil handle
// and nil error: completions are best effort. After Teardown, Activate
// returns ErrTerminated.
func (a *Adapter) Activate(text string) (Handle, error) {
	switch a.state {
	case StateTerminated:
		return nil, ErrTerminated
	case StateUninitialized:
		if a.backend == nil || !a.backend.Ready() {
			slog.Debug("backend not ready, skipping declaration",
				slog.String("file", a.filePath),
			)
			return nil, nil
		}
		a.state = StateIdle
	}

	a.release()

	h, err := a.backend.AddExtraLib(text, a.filePath)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", a.filePath, err)
	}

	a.handle = h
	a.content = text
	a.state = StateActive

	slog.Debug("declaration activated",
		slog.String("file", a.filePath),
		slog.Int("bytes", len(text)),
	)
	return h, nil
}

// Teardown disposes the live registration, if any, and terminates the
// adapter. Calling it again is a no-op.
func (a *Adapter) Teardown() {
	if a.state == StateTerminated {
		return
	}
	a.release()
	a.state = StateTerminated
}

// release disposes the held handle and returns to Idle.
func (a *Adapter) release() {
	if a.handle != nil {
		a.handle.Dispose()
		slog.Debug("declaration disposed", slog.String("file", a.filePath))
	}
	a.handle = nil
	a.content = ""
	if a.state == StateActive {
		a.state = StateIdle
	}
}
