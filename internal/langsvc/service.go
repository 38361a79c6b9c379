// Package langsvc is an in-memory code-intelligence backend: the global
// table of extra declaration files a TypeScript language service would
// consult for completions.
package langsvc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/oklog/ulid/v2"

	"github.com/usestring/ctxdts/pkg/registry"
)

// ExtraLib is one registered declaration file.
type ExtraLib struct {
	ID           uint32    `json:"id"`
	Ref          string    `json:"ref"` // ULID, sortable by registration time
	FilePath     string    `json:"file_path"`
	Content      string    `json:"content"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Service holds the extra-lib table. It is safe for concurrent use.
type Service struct {
	mu        sync.RWMutex
	ready     bool
	nextID    uint32
	libs      map[uint32]*ExtraLib
	live      *roaring.Bitmap            // ids of undisposed libs
	byPath    map[string]*roaring.Bitmap // file path -> live ids
	conflicts int
	added     int
	disposed  int
}

// New returns a service. Registrations are refused until SetReady(true).
func New() *Service {
	return &Service{
		libs:   make(map[uint32]*ExtraLib),
		live:   roaring.New(),
		byPath: make(map[string]*roaring.Bitmap),
	}
}

// SetReady marks the service as accepting registrations.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Ready implements registry.Backend.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// AddExtraLib implements registry.Backend. Registering a path that already
// has a live lib is accepted, like the editor does, but counted as a
// conflict because both declarations now claim the same globals.
func (s *Service) AddExtraLib(content, filePath string) (registry.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.libs[id] = &ExtraLib{
		ID:           id,
		Ref:          ulid.Make().String(),
		FilePath:     filePath,
		Content:      content,
		RegisteredAt: time.Now(),
	}

	bm, ok := s.byPath[filePath]
	if !ok {
		bm = roaring.New()
		s.byPath[filePath] = bm
	}
	if !bm.IsEmpty() {
		s.conflicts++
		slog.Warn("duplicate declaration registered for virtual file",
			slog.String("file", filePath),
			slog.Uint64("live", bm.GetCardinality()+1),
		)
	}
	bm.Add(id)
	s.live.Add(id)
	s.added++

	return &handle{svc: s, id: id}, nil
}

func (s *Service) dispose(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live.Contains(id) {
		return
	}
	s.live.Remove(id)
	lib := s.libs[id]
	if bm, ok := s.byPath[lib.FilePath]; ok {
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(s.byPath, lib.FilePath)
		}
	}
	delete(s.libs, id)
	s.disposed++
}

// Lib returns the live lib for filePath. When several are live (a
// conflict) the most recent one is returned.
func (s *Service) Lib(filePath string) (ExtraLib, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bm, ok := s.byPath[filePath]
	if !ok || bm.IsEmpty() {
		return ExtraLib{}, false
	}
	return *s.libs[bm.Maximum()], true
}

// ExtraLibs returns every live lib ordered by registration. Ids are
// assigned in sequence and the bitmap iterates in ascending order.
func (s *Service) ExtraLibs() []ExtraLib {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ExtraLib, 0, s.live.GetCardinality())
	it := s.live.Iterator()
	for it.HasNext() {
		out = append(out, *s.libs[it.Next()])
	}
	return out
}

// LiveCount returns the number of undisposed libs.
func (s *Service) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.live.GetCardinality())
}

// Conflicts returns how many registrations landed on a path that already
// had a live lib.
func (s *Service) Conflicts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conflicts
}

// Stats summarizes table activity.
type Stats struct {
	Live      int `json:"live"`
	Added     int `json:"added"`
	Disposed  int `json:"disposed"`
	Conflicts int `json:"conflicts"`
}

// Stats returns counters since the service was created.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Live:      int(s.live.GetCardinality()),
		Added:     s.added,
		Disposed:  s.disposed,
		Conflicts: s.conflicts,
	}
}

// handle disposes one lib. Dispose is idempotent.
type handle struct {
	svc  *Service
	id   uint32
	once sync.Once
}

func (h *handle) Dispose() {
	h.once.Do(func() { h.svc.dispose(h.id) })
}
