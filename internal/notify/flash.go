package notify

import (
	"context"
	"sync"
)

// Flash is a bounded in-memory queue of pending notifications. The session
// manager pushes into it; the web layer drains it on the next rendered
// response and turns each entry into a toast. When the queue is full the
// oldest entry is dropped.
type Flash struct {
	mu      sync.Mutex
	pending []Notification
	limit   int
}

// NewFlash creates a Flash queue holding at most limit entries.
func NewFlash(limit int) *Flash {
	if limit <= 0 {
		limit = 16
	}
	return &Flash{limit: limit}
}

func (f *Flash) Notify(_ context.Context, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, n)
	if len(f.pending) > f.limit {
		f.pending = f.pending[len(f.pending)-f.limit:]
	}
}

// Drain returns all pending notifications and empties the queue.
func (f *Flash) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.pending
	f.pending = nil
	return out
}

// Len returns the number of queued notifications.
func (f *Flash) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
