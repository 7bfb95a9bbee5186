package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultGrace is how long an unused handle survives before it is released
// automatically.
const DefaultGrace = 5 * time.Minute

// Registry stages binary payloads in a session-scoped directory and tracks
// the open handles for each service. All handles are released when the
// registry closes, so nothing outlives the session.
type Registry struct {
	dir    string
	grace  time.Duration
	logger zerolog.Logger

	mu   sync.Mutex
	open map[string][]*Handle // service -> live handles
}

// Options configure a Registry.
type Options struct {
	// Dir is the staging directory. Empty creates a fresh temp directory.
	Dir string
	// Grace is the automatic release window. Zero uses DefaultGrace.
	Grace  time.Duration
	Logger *zerolog.Logger
}

// NewRegistry prepares a staging area for artifact handles.
func NewRegistry(opts Options) (*Registry, error) {
	dir := opts.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "kitbag-artifacts-")
		if err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	grace := opts.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Registry{
		dir:    dir,
		grace:  grace,
		logger: logger,
		open:   make(map[string][]*Handle),
	}, nil
}

// Stage writes data to the staging area and returns a live handle with the
// grace timer running.
func (r *Registry) Stage(service, filename, mimeType string, data []byte) (*Handle, error) {
	id := uuid.NewString()
	path := filepath.Join(r.dir, id+filepath.Ext(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("stage artifact: %w", err)
	}

	h := &Handle{
		id:       id,
		service:  service,
		path:     path,
		filename: filename,
		mime:     mimeType,
		size:     int64(len(data)),
		created:  time.Now(),
	}
	h.onRelease = r.forget

	r.mu.Lock()
	r.open[service] = append(r.open[service], h)
	r.mu.Unlock()

	h.ReleaseAfter(r.grace)
	r.logger.Debug().Str("service", service).Str("file", filename).Int("bytes", len(data)).Msg("artifact staged")
	return h, nil
}

// ReleaseService releases every open handle for the named service. Unknown
// services are no-ops.
func (r *Registry) ReleaseService(service string) {
	r.mu.Lock()
	handles := append([]*Handle(nil), r.open[service]...)
	r.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

// OpenCount returns the number of unreleased handles for a service. Tests
// use it as the leak check.
func (r *Registry) OpenCount(service string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open[service])
}

// Close releases every handle and removes the staging directory.
func (r *Registry) Close() {
	r.mu.Lock()
	var all []*Handle
	for _, handles := range r.open {
		all = append(all, handles...)
	}
	r.mu.Unlock()

	for _, h := range all {
		h.Release()
	}
	_ = os.RemoveAll(r.dir)
}

// forget drops a released handle from the open set.
func (r *Registry) forget(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := r.open[h.service]
	for i, other := range handles {
		if other.id == h.id {
			r.open[h.service] = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(r.open[h.service]) == 0 {
		delete(r.open, h.service)
	}
}
