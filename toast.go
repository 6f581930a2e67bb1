package sash

import (
	"sync"
	"time"
)

// ToastLevel classifies a notification.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Toast is one transient notification.
type Toast struct {
	Level   ToastLevel
	Message string
	Expires time.Time
}

// ToastQueue holds transient notifications with a bounded length and a TTL.
// Pushing past the cap drops the oldest toast. Producers may push from any
// goroutine; the onChange hook typically schedules a window pass.
type ToastQueue struct {
	mu       sync.Mutex
	toasts   []Toast
	max      int
	ttl      time.Duration
	onChange func()
}

// NewToastQueue creates a queue keeping at most max toasts alive for ttl.
func NewToastQueue(max int, ttl time.Duration) *ToastQueue {
	if max < 1 {
		max = 1
	}
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	return &ToastQueue{max: max, ttl: ttl}
}

// OnChange registers a hook invoked after every mutation, outside the lock.
func (q *ToastQueue) OnChange(fn func()) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push enqueues a toast expiring after the queue TTL.
func (q *ToastQueue) Push(level ToastLevel, message string) {
	q.PushFor(level, message, q.ttl)
}

// PushFor enqueues a toast with an explicit lifetime.
func (q *ToastQueue) PushFor(level ToastLevel, message string, ttl time.Duration) {
	q.mu.Lock()
	q.toasts = append(q.toasts, Toast{
		Level:   level,
		Message: message,
		Expires: time.Now().Add(ttl),
	})
	if len(q.toasts) > q.max {
		q.toasts = append(q.toasts[:0], q.toasts[len(q.toasts)-q.max:]...)
	}
	fn := q.onChange
	q.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Prune drops toasts expired at now, returning how many were removed.
func (q *ToastQueue) Prune(now time.Time) int {
	q.mu.Lock()
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if t.Expires.After(now) {
			kept = append(kept, t)
		}
	}
	removed := len(q.toasts) - len(kept)
	q.toasts = kept
	fn := q.onChange
	q.mu.Unlock()
	if removed > 0 && fn != nil {
		fn()
	}
	return removed
}

// Active returns the toasts alive at now, oldest first.
func (q *ToastQueue) Active(now time.Time) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, 0, len(q.toasts))
	for _, t := range q.toasts {
		if t.Expires.After(now) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the queue length including expired but unpruned toasts.
func (q *ToastQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}

func (l ToastLevel) glyph() rune {
	switch l {
	case ToastSuccess:
		return '✓'
	case ToastWarning:
		return '!'
	case ToastError:
		return '✗'
	}
	return '·'
}

func (l ToastLevel) style(theme Theme) Style {
	switch l {
	case ToastSuccess:
		return theme.Success
	case ToastWarning:
		return theme.Warning
	case ToastError:
		return theme.Error
	}
	return theme.Accent
}

// Render draws the active toasts as right-aligned rows inside the given
// region, newest at the bottom, and returns how many rows were drawn.
func (q *ToastQueue) Render(buf *Buffer, x, y, width int, theme Theme, now time.Time) int {
	active := q.Active(now)
	for row, t := range active {
		style := t.Level.style(theme)
		text := string(t.Level.glyph()) + " " + t.Message
		tx := x
		if w := len([]rune(text)); w < width {
			tx = x + width - w
		}
		buf.WriteStringFast(tx, y+row, text, style, width)
	}
	return len(active)
}
