// Package notify is a declarative queue of transient user notifications.
// Business code pushes; one renderer reads Active.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
	Warning Kind = "warning"
)

// DefaultLifetime matches how long a toast stays on screen.
const DefaultLifetime = 3 * time.Second

// DefaultLimit caps how many notifications a queue retains.
const DefaultLimit = 50

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Option func(*Queue)

func WithLifetime(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.lifetime = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

func WithLimit(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

type Queue struct {
	mu       sync.Mutex
	items    []Notification
	lifetime time.Duration
	limit    int
	now      func() time.Time
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		lifetime: DefaultLifetime,
		limit:    DefaultLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Push(kind Kind, message string) Notification {
	now := q.now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(q.lifetime),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, n)
	if over := len(q.items) - q.limit; over > 0 {
		q.items = slices.Delete(q.items, 0, over)
	}
	return n
}

func (q *Queue) Success(message string) Notification { return q.Push(Success, message) }
func (q *Queue) Error(message string) Notification   { return q.Push(Error, message) }

// Dismiss reports whether a notification with that id was removed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// Active prunes expired notifications and returns the rest oldest first.
func (q *Queue) Active() []Notification {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = slices.DeleteFunc(q.items, func(n Notification) bool {
		return !now.Before(n.ExpiresAt)
	})
	return slices.Clone(q.items)
}
