package sash

import "sync/atomic"

// SchedulerState reports where the scheduler is in its frame cycle.
type SchedulerState int

const (
	SchedulerIdle      SchedulerState = iota // nothing pending
	SchedulerScheduled                       // a pass will run on the next frame
	SchedulerRunning                         // a pass is executing now
)

// FrameScheduler coalesces invalidations into at most one materialization
// pass per frame. Invalidate may be called from any goroutine; the pass
// itself always runs on the frame loop goroutine, so model and pool state
// stay single-threaded.
//
// The wake channel has capacity one and is sent to without blocking, so a
// burst of invalidations leaves exactly one token for the frame loop.
// An invalidation that lands while a pass is running re-arms the scheduler
// and a trailing pass follows on the next frame.
type FrameScheduler struct {
	scheduled atomic.Bool
	running   atomic.Bool
	wake      chan struct{}
	pass      func()

	invalidations atomic.Int64
	passes        atomic.Int64
}

// newFrameScheduler wraps the given materialization pass.
func newFrameScheduler(pass func()) *FrameScheduler {
	return &FrameScheduler{
		wake: make(chan struct{}, 1),
		pass: pass,
	}
}

// Invalidate requests a pass on the next frame. Safe to call repeatedly;
// calls between frames coalesce into a single pass.
func (fs *FrameScheduler) Invalidate() {
	fs.invalidations.Add(1)
	fs.scheduled.Store(true)
	select {
	case fs.wake <- struct{}{}:
	default:
	}
}

// Cancel drops any pending pass. A pass already running is not interrupted,
// but no trailing pass will follow.
func (fs *FrameScheduler) Cancel() {
	fs.scheduled.Store(false)
	select {
	case <-fs.wake:
	default:
	}
}

// RunFrame executes the pending pass, if any. Returns true if a pass ran.
// Call once per display frame from the frame loop, or directly in tests.
func (fs *FrameScheduler) RunFrame() bool {
	if !fs.scheduled.Swap(false) {
		return false
	}
	fs.running.Store(true)
	fs.passes.Add(1)
	fs.pass()
	fs.running.Store(false)
	return true
}

// Wake returns the channel a frame loop blocks on. One token is available
// whenever at least one invalidation arrived since the last frame.
func (fs *FrameScheduler) Wake() <-chan struct{} {
	return fs.wake
}

// State returns the current scheduler state.
func (fs *FrameScheduler) State() SchedulerState {
	if fs.running.Load() {
		return SchedulerRunning
	}
	if fs.scheduled.Load() {
		return SchedulerScheduled
	}
	return SchedulerIdle
}

// Invalidations returns the total invalidation count.
func (fs *FrameScheduler) Invalidations() int64 {
	return fs.invalidations.Load()
}

// Passes returns the total number of passes run.
func (fs *FrameScheduler) Passes() int64 {
	return fs.passes.Load()
}

// Coalesced returns how many invalidations were absorbed into shared passes.
func (fs *FrameScheduler) Coalesced() int64 {
	c := fs.invalidations.Load() - fs.passes.Load()
	if c < 0 {
		return 0
	}
	return c
}
