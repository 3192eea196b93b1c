package errtrack

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned when a tracker is used before Init.
var ErrNotInitialized = errors.New("error tracker not initialized")

// DefaultCapacity bounds the in-memory tracker.
const DefaultCapacity = 200

// Entry is one recorded failure.
type Entry struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Message    string    `json:"message"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	Status     int       `json:"status,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Query filters recorded entries. Zero values match everything.
type Query struct {
	Source string
	Since  time.Time
	Limit  int
}

// Tracker collects failures reported by the HTTP layer and background jobs.
type Tracker interface {
	Init(ctx context.Context) error
	RecordError(ctx context.Context, entry Entry)
	Query(ctx context.Context, q Query) ([]Entry, error)
}

// MemoryTracker keeps the most recent entries in a fixed-size ring.
type MemoryTracker struct {
	mu       sync.Mutex
	entries  []Entry
	next     int
	full     bool
	capacity int
	ready    bool
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoryTracker builds a tracker holding at most capacity entries.
func NewMemoryTracker(capacity int, logger *zap.Logger) *MemoryTracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryTracker{
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Init allocates the ring and discards anything recorded before.
func (t *MemoryTracker) Init(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make([]Entry, t.capacity)
	t.next = 0
	t.full = false
	t.ready = true
	return nil
}

// RecordError stores entry, overwriting the oldest one when the ring is full.
func (t *MemoryTracker) RecordError(_ context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = t.now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		t.logger.Warn("dropping error entry, tracker not initialized", zap.String("source", entry.Source))
		return
	}

	t.entries[t.next] = entry
	t.next = (t.next + 1) % t.capacity
	if t.next == 0 {
		t.full = true
	}
}

// Query returns matching entries, newest first.
func (t *MemoryTracker) Query(_ context.Context, q Query) ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		return nil, ErrNotInitialized
	}

	size := t.next
	if t.full {
		size = t.capacity
	}

	out := make([]Entry, 0, size)
	for i := 1; i <= size; i++ {
		e := t.entries[(t.next-i+t.capacity)%t.capacity]
		if q.Source != "" && e.Source != q.Source {
			continue
		}
		if !q.Since.IsZero() && e.OccurredAt.Before(q.Since) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}
