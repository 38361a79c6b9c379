// Package workspace owns the editing context and keeps its declaration
// registered with the language service.
//
// A Workspace mirrors one editor surface: it holds the current context
// value, and once the surface is ready every context change rebuilds the
// `declare var` statement and swaps it into the registry adapter. All
// lifecycle calls are serialized so a dispose always precedes the next
// registration.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/registry"
	"github.com/usestring/ctxdts/pkg/value"
)

// DefaultVarName is the global the declaration introduces.
const DefaultVarName = "contexto"

var (
	// ErrTornDown is returned by mutating calls after Teardown.
	ErrTornDown = errors.New("workspace torn down")
	// ErrEmptyName is returned by AddProperty for a blank property name.
	ErrEmptyName = errors.New("property name is empty")
)

// Source stages reported by SourceError.
const (
	StageParse  = "parse"
	StageSelect = "select"
)

// SourceError reports a source that could not become the context.
type SourceError struct {
	Stage  string
	Format value.Format
	Err    error
}

func (e *SourceError) Error() string {
	if e.Stage == StageSelect {
		return fmt.Sprintf("selecting context: %v", e.Err)
	}
	return fmt.Sprintf("parsing %s context: %v", e.Format, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Options configures a Workspace.
type Options struct {
	VarName     string      // default "contexto"
	VirtualFile string      // default registry.DefaultFilePath
	Infer       dts.Options // zero fields take dts defaults
	Cache       *cache.DeclarationCache
	Query       *query.Engine
}

// Workspace tracks a context value and its live declaration.
type Workspace struct {
	mu sync.Mutex

	adapter    *registry.Adapter
	inferencer *dts.Inferencer
	cache      *cache.DeclarationCache
	query      *query.Engine
	varName    string

	context   value.Value
	ready     bool
	tornDown  bool
	updates   int
	updatedAt time.Time
}

// Snapshot is a consistent view of the workspace.
type Snapshot struct {
	VarName     string
	VirtualFile string
	State       registry.State
	Ready       bool
	Context     value.Value
	Declaration string // registered text, empty when nothing is live
	Active      bool
	Updates     int
	UpdatedAt   time.Time
}

// New creates a workspace with an empty object as its context.
func New(backend registry.Backend, opts Options) *Workspace {
	if opts.VarName == "" {
		opts.VarName = DefaultVarName
	}
	q := opts.Query
	if q == nil {
		q = query.NewEngine()
	}
	return &Workspace{
		adapter:    registry.NewAdapter(backend, opts.VirtualFile),
		inferencer: dts.New(opts.Infer),
		cache:      opts.Cache,
		query:      q,
		varName:    opts.VarName,
		context:    value.NewObject(),
	}
}

// Ready marks the editing surface initialized and registers the
// declaration for the current context.
func (w *Workspace) Ready() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tornDown {
		return ErrTornDown
	}
	w.ready = true
	return w.refresh()
}

// SetContext replaces the context. Once the workspace is ready the
// declaration is rebuilt and re-registered.
func (w *Workspace) SetContext(v value.Value) error {
	if v == nil {
		v = value.Null{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tornDown {
		return ErrTornDown
	}
	w.context = v
	w.updates++
	w.updatedAt = time.Now()
	return w.refresh()
}

// SetSource parses src and, when selectExpr is not empty, projects it with
// a jq expression before installing it as the context. On any parse or
// projection error the previous context and declaration stay in place.
func (w *Workspace) SetSource(src []byte, format value.Format, selectExpr string) error {
	if format == "" {
		format = value.FormatJSON
	}

	v, err := value.Parse(src, format)
	if err != nil {
		slog.Debug("context source rejected", slog.String("format", string(format)), slog.String("error", err.Error()))
		return &SourceError{Stage: StageParse, Format: format, Err: err}
	}

	if selectExpr != "" {
		v, err = w.query.Project(v, selectExpr)
		if err != nil {
			return &SourceError{Stage: StageSelect, Format: format, Err: err}
		}
	}

	return w.SetContext(v)
}

// LoadFile installs the contents of path as the context. The format
// follows the file extension.
func (w *Workspace) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading context file: %w", err)
	}
	return w.SetSource(src, value.FormatForPath(path), "")
}

// AddProperty adds name to the context with the default value for kind.
// A context that is not an object is replaced by a new object. Adding an
// existing name overwrites its value in place.
func (w *Workspace) AddProperty(name string, kind value.Kind) (value.Value, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tornDown {
		return nil, ErrTornDown
	}

	obj, ok := w.context.(*value.Object)
	if !ok {
		obj = value.NewObject()
	}
	def := value.DefaultForKind(kind)
	w.context = obj.With(name, def)
	w.updates++
	w.updatedAt = time.Now()

	return def, w.refresh()
}

// Declaration returns the registered declaration text. The second result
// is false when nothing is registered.
func (w *Workspace) Declaration() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.adapter.Content()
}

// Render builds the declaration for the current context without
// registering it.
func (w *Workspace) Render() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.render(w.context)
}

// Context returns the current context value.
func (w *Workspace) Context() value.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.context
}

// Teardown disposes the live declaration. Later mutations fail with
// ErrTornDown; calling Teardown again is a no-op.
func (w *Workspace) Teardown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tornDown {
		return
	}
	w.adapter.Teardown()
	w.tornDown = true
	slog.Info("workspace torn down", slog.Int("updates", w.updates))
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	decl, active := w.adapter.Content()
	return Snapshot{
		VarName:     w.varName,
		VirtualFile: w.adapter.FilePath(),
		State:       w.adapter.State(),
		Ready:       w.ready,
		Context:     w.context,
		Declaration: decl,
		Active:      active,
		Updates:     w.updates,
		UpdatedAt:   w.updatedAt,
	}
}

// refresh re-registers the declaration for the current context. Callers
// hold w.mu.
func (w *Workspace) refresh() error {
	if !w.ready {
		return nil
	}

	if _, err := w.adapter.Activate(w.render(w.context)); err != nil {
		if errors.Is(err, registry.ErrTerminated) {
			return ErrTornDown
		}
		return err
	}
	return nil
}

func (w *Workspace) render(v value.Value) string {
	build := func() string { return w.inferencer.Declare(w.varName, v) }
	if w.cache == nil {
		return build()
	}

	key, err := cache.Key(v, w.inferencer.Options(), "declare:"+w.varName)
	if err != nil {
		slog.Debug("declaration not cacheable", slog.String("error", err.Error()))
		return build()
	}
	return w.cache.GetOrRender(key, build)
}
