package sash

import (
	"slices"
	"sync"
)

// ChangeType classifies a feed modification.
type ChangeType int

const (
	ChangeAdd    ChangeType = iota // appended at the tail
	ChangeInsert                   // inserted mid-feed, shifting later indices
	ChangeUpdate
	ChangeRemove
	ChangeClear
	ChangeSet // full replacement
)

// Change describes one modification to a feed.
type Change[T any] struct {
	Type    ChangeType
	Index   int
	Item    T   // for Add/Insert/Update, the new value
	Old     T   // for Update/Remove, the old value
	Dropped int // rows evicted from the head to respect the cap
}

// Feed is an observable collection that backs a Window. Producers mutate it
// from any goroutine; Len and At serve the window's count and render
// callbacks. A capped feed evicts its oldest rows on append, which suits
// log tails.
type Feed[T any] struct {
	mu        sync.RWMutex
	items     []T
	listeners []func(Change[T])
	cap       int
}

// NewFeed creates an unbounded feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{}
}

// NewCappedFeed creates a feed that keeps at most cap items, dropping from
// the head.
func NewCappedFeed[T any](cap int) *Feed[T] {
	if cap < 1 {
		cap = 1
	}
	return &Feed[T]{cap: cap}
}

// Len returns the number of items. Assignable to Config.Count.
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// At returns the item at index i, or the zero value if out of bounds.
func (f *Feed[T]) At(i int) T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i < 0 || i >= len(f.items) {
		var zero T
		return zero
	}
	return f.items[i]
}

// Snapshot returns a copy of the items.
func (f *Feed[T]) Snapshot() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}

// Set replaces all items.
func (f *Feed[T]) Set(items []T) {
	f.mu.Lock()
	f.items = items
	f.truncate()
	f.mu.Unlock()
	f.notify(Change[T]{Type: ChangeSet})
}

// Add appends an item, evicting from the head when capped.
func (f *Feed[T]) Add(item T) {
	f.mu.Lock()
	idx := len(f.items)
	f.items = append(f.items, item)
	dropped := f.truncate()
	f.mu.Unlock()
	f.notify(Change[T]{Type: ChangeAdd, Index: idx - dropped, Item: item, Dropped: dropped})
}

// Insert inserts an item at index i, clamped into range. Inserting at the
// end is an append and reports ChangeAdd; anywhere else the items after i
// shift and the change reports ChangeInsert.
func (f *Feed[T]) Insert(i int, item T) {
	f.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i > len(f.items) {
		i = len(f.items)
	}
	tail := i == len(f.items)
	f.items = append(f.items[:i], append([]T{item}, f.items[i:]...)...)
	dropped := f.truncate()
	f.mu.Unlock()
	typ := ChangeInsert
	if tail {
		typ = ChangeAdd
	}
	f.notify(Change[T]{Type: typ, Index: max(0, i-dropped), Item: item, Dropped: dropped})
}

// RemoveAt removes the item at index i.
func (f *Feed[T]) RemoveAt(i int) {
	f.mu.Lock()
	if i < 0 || i >= len(f.items) {
		f.mu.Unlock()
		return
	}
	old := f.items[i]
	f.items = append(f.items[:i], f.items[i+1:]...)
	f.mu.Unlock()
	f.notify(Change[T]{Type: ChangeRemove, Index: i, Old: old})
}

// Update modifies the item at index i in place.
func (f *Feed[T]) Update(i int, fn func(*T)) {
	f.mu.Lock()
	if i < 0 || i >= len(f.items) {
		f.mu.Unlock()
		return
	}
	old := f.items[i]
	fn(&f.items[i])
	item := f.items[i]
	f.mu.Unlock()
	f.notify(Change[T]{Type: ChangeUpdate, Index: i, Item: item, Old: old})
}

// Clear removes all items.
func (f *Feed[T]) Clear() {
	f.mu.Lock()
	f.items = f.items[:0]
	f.mu.Unlock()
	f.notify(Change[T]{Type: ChangeClear})
}

// Subscribe adds a change listener and returns an unsubscribe function.
// Listeners run on the mutating goroutine, outside the feed lock.
func (f *Feed[T]) Subscribe(fn func(Change[T])) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		// Zero out to allow GC, don't reorder.
		f.listeners[idx] = nil
		f.mu.Unlock()
	}
}

// truncate enforces the cap, reporting how many head rows were dropped.
// Caller holds the lock.
func (f *Feed[T]) truncate() int {
	if f.cap <= 0 || len(f.items) <= f.cap {
		return 0
	}
	n := len(f.items) - f.cap
	f.items = append(f.items[:0], f.items[n:]...)
	return n
}

func (f *Feed[T]) notify(c Change[T]) {
	// Copy under the lock: unsubscribe nils entries in the live array.
	f.mu.RLock()
	listeners := slices.Clone(f.listeners)
	f.mu.RUnlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(c)
		}
	}
}

// Drive subscribes a window to the feed: tail appends schedule a plain pass,
// single-item updates re-measure just that item, and structural changes
// (inserts, removals, evictions, replacement) re-render every bound row.
// Returns the unsubscribe function.
func (f *Feed[T]) Drive(w *Window) func() {
	return f.Subscribe(func(c Change[T]) {
		switch c.Type {
		case ChangeUpdate:
			w.RefreshItem(c.Index)
		case ChangeAdd:
			if c.Dropped > 0 {
				// Head eviction shifted every index.
				w.Refresh()
			} else {
				w.Invalidate()
			}
		default:
			// Everything at and after the change point may hold a
			// different item now.
			w.Refresh()
		}
	})
}

// DriveTail is Drive plus follow mode: any change that grows the feed keeps
// the newest item pinned to the bottom of the viewport.
func (f *Feed[T]) DriveTail(w *Window) func() {
	return f.Subscribe(func(c Change[T]) {
		switch c.Type {
		case ChangeUpdate:
			w.RefreshItem(c.Index)
		case ChangeAdd:
			if c.Dropped > 0 {
				w.Refresh()
			}
			w.ScrollToIndex(f.Len()-1, AlignEnd)
		case ChangeInsert:
			w.Refresh()
			w.ScrollToIndex(f.Len()-1, AlignEnd)
		default:
			w.Refresh()
		}
	})
}
