package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notice for display.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

// String returns the lowercase label for a kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// DefaultDuration is how long a notice stays visible unless the caller says
// otherwise.
const DefaultDuration = 4 * time.Second

// Notice is one transient message in the queue.
type Notice struct {
	ID      string
	Kind    Kind
	Message string
	Posted  time.Time
	// Duration zero means the notice is persistent until dismissed.
	Duration time.Duration
}

// Expired reports whether the notice should no longer be shown at now.
func (n Notice) Expired(now time.Time) bool {
	if n.Duration <= 0 {
		return false
	}
	return now.After(n.Posted.Add(n.Duration))
}

// Queue holds the visible notices in insertion order. Posting is purely
// additive; callers never consume a return value. Multiple notices may be
// visible at once and duplicates are not collapsed.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Post appends a notice with the default duration.
func (q *Queue) Post(message string, kind Kind) {
	q.PostWithDuration(message, kind, DefaultDuration)
}

// PostWithDuration appends a notice that self-removes after d, or persists
// until dismissed when d is zero.
func (q *Queue) PostWithDuration(message string, kind Kind, d time.Duration) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notices = append(q.notices, Notice{
		ID:       uuid.NewString(),
		Kind:     kind,
		Message:  message,
		Posted:   q.now(),
		Duration: d,
	})
}

// Success posts a success notice.
func (q *Queue) Success(message string) { q.Post(message, KindSuccess) }

// Error posts an error notice.
func (q *Queue) Error(message string) { q.Post(message, KindError) }

// Warning posts a warning notice.
func (q *Queue) Warning(message string) { q.Post(message, KindWarning) }

// Info posts an info notice.
func (q *Queue) Info(message string) { q.Post(message, KindInfo) }

// Dismiss removes the notice with the given id. Unknown ids are no-ops.
func (q *Queue) Dismiss(id string) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.notices {
		if n.ID == id {
			q.notices = append(q.notices[:i], q.notices[i+1:]...)
			return
		}
	}
}

// DismissOldest removes the notice at the front of the queue.
func (q *Queue) DismissOldest() {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.notices) > 0 {
		q.notices = q.notices[1:]
	}
}

// Active prunes expired notices and returns a copy of the remainder in
// insertion order.
func (q *Queue) Active() []Notice {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.notices[:0]
	for _, n := range q.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	q.notices = kept

	if len(kept) == 0 {
		return nil
	}
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Len returns the number of notices currently held, expired or not.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}
