package session

import (
	"sync"
	"time"

	"kitbag/internal/artifact"
)

// Outcome classifies a stored result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeError
)

// Result is the rendered state for one service: either a staged artifact or
// an error message, never both.
type Result struct {
	Outcome  Outcome
	Message  string
	Handle   *artifact.Handle
	Original *artifact.Handle // background removal keeps the upload for comparison
	At       time.Time
}

// Health is the latest toolbox reachability snapshot maintained by the
// background poller.
type Health struct {
	Reachable           bool
	LastChecked         time.Time
	LastError           error
	ConsecutiveFailures int
}

// Offline returns true when the toolbox has been unreachable for multiple
// probes in a row.
func (h Health) Offline() bool {
	return h.ConsecutiveFailures >= 2
}

// Store owns the transient per-session UI state: which modal is open, which
// services are processing, the latest result per service, and the health
// snapshot. Exactly one modal may be active at a time. All state lives in
// memory and dies with the session.
type Store struct {
	mu          sync.Mutex
	known       map[string]bool
	activeModal string
	processing  map[string]bool
	results     map[string]*Result
	health      Health
}

// NewStore builds a store that recognizes the given service identifiers.
// Operations referencing any other identifier are no-ops.
func NewStore(services []string) *Store {
	known := make(map[string]bool, len(services))
	for _, id := range services {
		known[id] = true
	}
	return &Store{
		known:      known,
		processing: make(map[string]bool),
		results:    make(map[string]*Result),
	}
}

// OpenModal activates the modal for id. Any currently open modal is closed
// first, which resets that service's loading/result state and releases its
// handles.
func (s *Store) OpenModal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[id] {
		return
	}
	if s.activeModal != "" && s.activeModal != id {
		s.resetLocked(s.activeModal)
	}
	s.activeModal = id
}

// CloseModal deactivates the modal for id and always clears the service's
// result and loading state, releasing any outstanding handles.
func (s *Store) CloseModal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[id] {
		return
	}
	if s.activeModal == id {
		s.activeModal = ""
	}
	s.resetLocked(id)
}

// CloseActive closes whichever modal is open, if any. Wired to the escape
// key.
func (s *Store) CloseActive() {
	s.mu.Lock()
	active := s.activeModal
	s.mu.Unlock()
	if active != "" {
		s.CloseModal(active)
	}
}

// ActiveModal returns the identifier of the open modal, or "".
func (s *Store) ActiveModal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeModal
}

// StartProcessing marks a service as having a request in flight. It returns
// false when the service is unknown or already processing, which blocks
// double submission.
func (s *Store) StartProcessing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[id] || s.processing[id] {
		return false
	}
	s.processing[id] = true
	return true
}

// StopProcessing clears the in-flight mark for a service.
func (s *Store) StopProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, id)
}

// Processing reports whether a service has a request in flight.
func (s *Store) Processing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[id]
}

// SetResult stores the rendered state for a service, releasing any prior
// result's handles first. Results land keyed by id whether or not the
// service's modal is still open; a late response after a close simply
// updates stored state.
func (s *Store) SetResult(id string, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[id] {
		return
	}
	s.releaseLocked(id)
	stored := res
	if stored.At.IsZero() {
		stored.At = time.Now()
	}
	s.results[id] = &stored
}

// Result returns the stored result for a service, or nil.
func (s *Store) Result(id string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[id]
}

// ClearResult drops a service's result and releases its handles.
func (s *Store) ClearResult(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[id] {
		return
	}
	s.releaseLocked(id)
}

// SetHealth replaces the health snapshot. On failure the consecutive
// counter grows; success resets it.
func (s *Store) SetHealth(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health.LastChecked = time.Now()
	s.health.LastError = err
	if err != nil {
		s.health.Reachable = false
		s.health.ConsecutiveFailures++
		return
	}
	s.health.Reachable = true
	s.health.ConsecutiveFailures = 0
}

// Health returns a copy of the current health snapshot.
func (s *Store) Health() Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health
}

// resetLocked clears loading and result state for a service. Caller holds
// the mutex.
func (s *Store) resetLocked(id string) {
	delete(s.processing, id)
	s.releaseLocked(id)
}

// releaseLocked releases and drops the stored result for a service. Caller
// holds the mutex.
func (s *Store) releaseLocked(id string) {
	res := s.results[id]
	if res == nil {
		return
	}
	delete(s.results, id)
	res.Handle.Release()
	res.Original.Release()
}
