// Package handle manages temporary, revocable references to binary asset
// payloads. When the durable store yields raw bytes, the resolver wraps
// them in a Handle that a media consumer reads through; the handle's
// payload is freed exactly once, and never while a consumer still holds an
// open reader. Each handle has a single logical owner (a Slot); ownership
// moves only through explicit supersession.
package handle

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrReleased is returned by Acquire after the handle has been released.
// Readers opened before the release keep working until they are closed.
var ErrReleased = errors.New("handle has been released")

// Manager allocates handles and tracks how many still hold their payload.
// The live count exists so callers (and tests) can verify every handle is
// freed exactly once.
type Manager struct {
	mu   sync.Mutex
	live int
}

// NewManager creates an empty handle manager.
func NewManager() *Manager {
	return &Manager{}
}

// Wrap allocates a new handle over data. O(1): the bytes are referenced,
// not copied.
func (m *Manager) Wrap(data []byte) *Handle {
	m.mu.Lock()
	m.live++
	m.mu.Unlock()
	return &Handle{m: m, data: data}
}

// Live returns the number of handles whose payload has not been freed yet.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

func (m *Manager) freed() {
	m.mu.Lock()
	m.live--
	m.mu.Unlock()
}

// Handle is a temporary reference to a binary payload. It stays readable
// until Release is called AND every acquired reader has been closed;
// whichever happens last frees the payload. Release is idempotent.
type Handle struct {
	m *Manager

	mu       sync.Mutex
	data     []byte
	readers  int
	released bool
	freed    bool
}

// Len returns the payload size in bytes. Returns 0 once the payload has
// been freed.
func (h *Handle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// Acquire opens a reader over the payload for a media consumer. The
// returned reader must be closed when the consumer detaches; the payload
// cannot be freed while any reader remains open. Acquire fails with
// ErrReleased once the handle has been released.
func (h *Handle) Acquire() (io.ReadCloser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, ErrReleased
	}
	h.readers++
	return &reader{h: h, r: bytes.NewReader(h.data)}, nil
}

// Release invalidates the handle. Safe to call multiple times. The payload
// is freed immediately if no reader is open, otherwise when the last open
// reader closes — so releasing a superseded handle while playback is still
// draining it cannot break the playback.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.maybeFreeLocked()
}

// maybeFreeLocked frees the payload once released with no open readers.
// Callers must hold h.mu.
func (h *Handle) maybeFreeLocked() {
	if h.freed || !h.released || h.readers > 0 {
		return
	}
	h.freed = true
	h.data = nil
	h.m.freed()
}

type reader struct {
	h    *Handle
	r    *bytes.Reader
	once sync.Once
}

func (r *reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func (r *reader) Close() error {
	r.once.Do(func() {
		r.h.mu.Lock()
		r.h.readers--
		r.h.maybeFreeLocked()
		r.h.mu.Unlock()
	})
	return nil
}

// Slot is the single-owner cell for the handle a component instance is
// currently rendering or playing. Adopting a new handle supersedes the old
// one: the old handle is released through the deferred-free path above, so
// an attached consumer finishes detaching before the payload goes away.
type Slot struct {
	mu      sync.Mutex
	current *Handle
}

// Adopt installs next as the slot's handle and releases the superseded
// occupant, if any. next may be nil when the new resolution carries no
// binary payload (bundled path or remote URL).
func (s *Slot) Adopt(next *Handle) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()

	if prev != nil && prev != next {
		prev.Release()
	}
}

// Current returns the handle the slot presently owns, or nil.
func (s *Slot) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close releases the slot's handle on component teardown. Safe to call
// multiple times.
func (s *Slot) Close() {
	s.Adopt(nil)
}
