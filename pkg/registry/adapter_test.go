package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// recordingBackend logs every backend call in order.
type recordingBackend struct {
	ready   bool
	failAdd error
	calls   []string
	live    map[int]*recordingHandle
	nextID  int
}

type recordingHandle struct {
	id       int
	content  string
	backend  *recordingBackend
	disposed int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{ready: true, live: make(map[int]*recordingHandle)}
}

func (b *recordingBackend) Ready() bool { return b.ready }

func (b *recordingBackend) AddExtraLib(content, filePath string) (Handle, error) {
	if b.failAdd != nil {
		b.calls = append(b.calls, "add-failed:"+content)
		return nil, b.failAdd
	}
	b.nextID++
	h := &recordingHandle{id: b.nextID, content: content, backend: b}
	b.live[h.id] = h
	b.calls = append(b.calls, fmt.Sprintf("add:%s@%s", content, filePath))
	return h, nil
}

func (h *recordingHandle) Dispose() {
	h.disposed++
	if h.disposed > 1 {
		return
	}
	delete(h.backend.live, h.id)
	h.backend.calls = append(h.backend.calls, "dispose:"+h.content)
}

func (b *recordingBackend) liveContents() []string {
	var out []string
	for _, h := range b.live {
		out = append(out, h.content)
	}
	return out
}

// AdapterSuite drives the adapter through its lifecycle states.
type AdapterSuite struct {
	suite.Suite
	backend *recordingBackend
	adapter *Adapter
}

func (s *AdapterSuite) SetupTest() {
	s.backend = newRecordingBackend()
	s.adapter = NewAdapter(s.backend, "")
}

func (s *AdapterSuite) TestStartsUninitialized() {
	s.Equal(StateUninitialized, s.adapter.State())
	s.Equal(DefaultFilePath, s.adapter.FilePath())
	_, ok := s.adapter.Content()
	s.False(ok)
}

func (s *AdapterSuite) TestActivateFromIdle() {
	h, err := s.adapter.Activate("A")
	s.Require().NoError(err)
	s.NotNil(h)

	s.Equal(StateActive, s.adapter.State())
	content, ok := s.adapter.Content()
	s.True(ok)
	s.Equal("A", content)
	s.Equal([]string{"add:A@" + DefaultFilePath}, s.backend.calls)
}

func (s *AdapterSuite) TestReplaceDisposesBeforeInstall() {
	_, err := s.adapter.Activate("A")
	s.Require().NoError(err)
	_, err = s.adapter.Activate("B")
	s.Require().NoError(err)

	s.Equal([]string{
		"add:A@" + DefaultFilePath,
		"dispose:A",
		"add:B@" + DefaultFilePath,
	}, s.backend.calls)
	s.Equal([]string{"B"}, s.backend.liveContents())
	s.Equal(StateActive, s.adapter.State())
}

func (s *AdapterSuite) TestManyUpdatesNeverAccumulate() {
	for i := 0; i < 50; i++ {
		_, err := s.adapter.Activate(fmt.Sprintf("v%d", i))
		s.Require().NoError(err)
		s.Len(s.backend.live, 1)
	}
	s.Equal([]string{"v49"}, s.backend.liveContents())
}

func (s *AdapterSuite) TestTeardownReleasesHandle() {
	_, err := s.adapter.Activate("A")
	s.Require().NoError(err)

	s.adapter.Teardown()
	s.Equal(StateTerminated, s.adapter.State())
	s.Empty(s.backend.live)
	_, ok := s.adapter.Content()
	s.False(ok)
}

func (s *AdapterSuite) TestDoubleTeardownIsNoop() {
	_, err := s.adapter.Activate("A")
	s.Require().NoError(err)

	s.NotPanics(func() {
		s.adapter.Teardown()
		s.adapter.Teardown()
	})
	s.Empty(s.backend.live)
	s.Equal([]string{"add:A@" + DefaultFilePath, "dispose:A"}, s.backend.calls)
}

func (s *AdapterSuite) TestTeardownFromIdle() {
	s.adapter.Teardown()
	s.Equal(StateTerminated, s.adapter.State())
	s.Empty(s.backend.calls)
}

func (s *AdapterSuite) TestActivateAfterTeardown() {
	s.adapter.Teardown()
	h, err := s.adapter.Activate("A")
	s.ErrorIs(err, ErrTerminated)
	s.Nil(h)
	s.Empty(s.backend.calls)
}

func (s *AdapterSuite) TestBackendNotReadyIsSkipped() {
	s.backend.ready = false

	h, err := s.adapter.Activate("A")
	s.NoError(err)
	s.Nil(h)
	s.Equal(StateUninitialized, s.adapter.State())
	s.Empty(s.backend.calls)

	s.backend.ready = true
	_, err = s.adapter.Activate("B")
	s.Require().NoError(err)
	s.Equal(StateActive, s.adapter.State())
	s.Equal([]string{"B"}, s.backend.liveContents())
}

func (s *AdapterSuite) TestBackendErrorLeavesIdle() {
	_, err := s.adapter.Activate("A")
	s.Require().NoError(err)

	boom := errors.New("boom")
	s.backend.failAdd = boom
	_, err = s.adapter.Activate("B")
	s.ErrorIs(err, boom)

	s.Equal(StateIdle, s.adapter.State())
	s.Empty(s.backend.live)
	s.Equal([]string{"add:A@" + DefaultFilePath, "dispose:A", "add-failed:B"}, s.backend.calls)

	s.backend.failAdd = nil
	_, err = s.adapter.Activate("C")
	s.Require().NoError(err)
	s.Equal([]string{"C"}, s.backend.liveContents())
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterSuite))
}

func TestNewAdapter_CustomFilePath(t *testing.T) {
	b := newRecordingBackend()
	a := NewAdapter(b, "ts:filename/ctx.d.ts")

	_, err := a.Activate("X")
	require.NoError(t, err)
	assert.Equal(t, []string{"add:X@ts:filename/ctx.d.ts"}, b.calls)
}

func TestNewAdapter_NilBackendNeverReady(t *testing.T) {
	a := NewAdapter(nil, "")
	h, err := a.Activate("X")
	assert.NoError(t, err)
	assert.Nil(t, h)
	assert.Equal(t, StateUninitialized, a.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "State(9)", State(9).String())
}
