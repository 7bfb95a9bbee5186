package artifact

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Handle is a revocable reference to a binary artifact staged on disk. It is
// the local-handle analog of a browser object URL: created for exactly one
// rendered result, usable as a display and save source, and released exactly
// once on whichever exit path comes first (explicit release, modal
// close/reset, or grace-timer expiry).
type Handle struct {
	id       string
	service  string
	path     string
	filename string
	mime     string
	size     int64
	created  time.Time

	mu        sync.Mutex
	timer     *time.Timer
	released  bool
	onRelease func(*Handle)
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string { return h.id }

// Service returns the service the artifact belongs to.
func (h *Handle) Service() string { return h.service }

// Path returns the staged file location. The path is only valid while the
// handle is unreleased.
func (h *Handle) Path() string { return h.path }

// Filename returns the suggested name for saving the artifact.
func (h *Handle) Filename() string { return h.filename }

// MIME returns the artifact content type.
func (h *Handle) MIME() string { return h.mime }

// Size returns the artifact length in bytes.
func (h *Handle) Size() int64 { return h.size }

// CreatedAt returns when the artifact was staged.
func (h *Handle) CreatedAt() time.Time { return h.created }

// Released reports whether the handle has been revoked.
func (h *Handle) Released() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release revokes the handle: the grace timer stops and the staged file is
// removed. Calling Release more than once is safe; only the first call acts.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	onRelease := h.onRelease
	h.mu.Unlock()

	_ = os.Remove(h.path)
	if onRelease != nil {
		onRelease(h)
	}
}

// ReleaseAfter reschedules the automatic release to fire after d, replacing
// any pending grace timer. A released handle ignores the call.
func (h *Handle) ReleaseAfter(d time.Duration) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(d, h.Release)
}

// Read returns the staged artifact bytes.
func (h *Handle) Read() ([]byte, error) {
	if h.Released() {
		return nil, fmt.Errorf("handle %s already released", h.id)
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}
