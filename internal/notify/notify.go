package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity grades a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Center collects notifications and fans them out to subscribers.
//
// Notifications are deliberately unbounded and never deduplicated:
// every Post is its own entry, and repeated messages stack. Entries
// expire after the configured TTL; expiry is enforced lazily on read
// and swept periodically by the janitor.
//
// All methods are safe for concurrent use.
type Center struct {
	ttl time.Duration
	now func() time.Time

	mu          sync.RWMutex
	entries     []Notification
	subscribers map[int]chan Notification
	nextSub     int
}

// NewCenter creates a notification center whose entries live for ttl.
func NewCenter(ttl time.Duration) *Center {
	return &Center{
		ttl:         ttl,
		now:         time.Now,
		subscribers: make(map[int]chan Notification),
	}
}

// Post records a notification and delivers it to all subscribers.
// Slow subscribers are skipped rather than blocking the poster.
func (c *Center) Post(message string, severity Severity) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.entries = append(c.entries, n)
	subs := make([]chan Notification, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- n:
		default:
		}
	}
	return n
}

// Info, Success, Warning and Error are shorthands for Post.
func (c *Center) Info(message string) Notification    { return c.Post(message, SeverityInfo) }
func (c *Center) Success(message string) Notification { return c.Post(message, SeveritySuccess) }
func (c *Center) Warning(message string) Notification { return c.Post(message, SeverityWarning) }
func (c *Center) Error(message string) Notification   { return c.Post(message, SeverityError) }

// List returns the live notifications, oldest first. Expired entries
// are pruned as a side effect.
func (c *Center) List() []Notification {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(cutoff)
	out := make([]Notification, len(c.entries))
	copy(out, c.entries)
	return out
}

// Dismiss removes a notification by ID. Unknown IDs are a no-op; the
// entry may simply have expired already.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.entries {
		if n.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Clear removes all notifications.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Subscribe returns a channel receiving every future notification and
// a cancel function. The channel is buffered; a subscriber that falls
// behind misses entries instead of blocking posters.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// RunJanitor sweeps expired entries every interval until ctx is
// cancelled. The lazy pruning in List keeps reads correct without it;
// the janitor just bounds memory between reads.
func (c *Center) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := c.now().Add(-c.ttl)
			c.mu.Lock()
			c.pruneLocked(cutoff)
			c.mu.Unlock()
		}
	}
}

// pruneLocked drops entries created at or before cutoff. Entries are
// appended in creation order, so the live suffix starts at the first
// entry newer than the cutoff.
func (c *Center) pruneLocked(cutoff time.Time) {
	firstLive := len(c.entries)
	for i, n := range c.entries {
		if n.CreatedAt.After(cutoff) {
			firstLive = i
			break
		}
	}
	if firstLive > 0 {
		c.entries = append([]Notification(nil), c.entries[firstLive:]...)
	}
}
