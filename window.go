package sash

import (
	"sync"
	"time"
)

// DefaultOverscan is the number of extra items materialized beyond each
// visible edge when Config.Overscan is zero.
const DefaultOverscan = 6

// Align controls where ScrollToIndex places the target item in the viewport.
type Align int

const (
	AlignStart  Align = iota // item's leading edge at the viewport top
	AlignCenter              // item centered in the viewport
	AlignEnd                 // item's trailing edge at the viewport bottom
)

// Config describes a Window. Host, Count, Render, and exactly one of
// ItemHeight or ItemSize are required; New fails fast with a
// ConfigurationError before any rendering otherwise.
type Config struct {
	// Host supplies the surface, nodes, and viewport geometry.
	Host Host

	// ItemHeight fixes every item's height in rows. Mutually exclusive
	// with ItemSize.
	ItemHeight int
	// ItemSize reports the height of one item. Mutually exclusive with
	// ItemHeight.
	ItemSize func(i int) int

	// Count returns the total item count. Queried fresh at the start of
	// every materialization pass.
	Count func() int

	// Render binds item i's content into the node's buffer. It must be
	// idempotent: recycled nodes are re-rendered with new indices. Errors
	// and panics are isolated to the one node and never abort a pass.
	Render func(n *Node, i int) error

	// KeyOf returns a stable identity for item i, letting the pool hand the
	// same node back when the item moves to a new index. Optional.
	KeyOf func(i int) string

	// Overscan is the number of extra items materialized beyond each
	// visible edge. Zero selects DefaultOverscan; negative is invalid.
	Overscan int

	// NoRecycle destroys released nodes instead of pooling them.
	NoRecycle bool

	// NoKeyboard disables navigation key handling.
	NoKeyboard bool

	// NoScrollbar hides the scroll position gutter.
	NoScrollbar bool

	// StickyHeader reserves a persistent header slot above the recycled
	// window. Requires RenderHeader.
	StickyHeader bool
	// RenderHeader populates the sticky header node once at mount (again
	// after Refresh or a width change).
	RenderHeader func(n *Node)
	// HeaderHeight is the sticky header height in rows, default 1.
	HeaderHeight int
}

// validate reports the first configuration problem, if any.
func (c *Config) validate() error {
	if c.Host == nil {
		return &ConfigurationError{Field: "Host", Reason: "required"}
	}
	if c.Count == nil {
		return &ConfigurationError{Field: "Count", Reason: "required"}
	}
	if c.Render == nil {
		return &ConfigurationError{Field: "Render", Reason: "required"}
	}
	if c.ItemHeight < 0 {
		return &ConfigurationError{Field: "ItemHeight", Reason: "must be positive"}
	}
	if c.ItemHeight == 0 && c.ItemSize == nil {
		return &ConfigurationError{Field: "ItemHeight", Reason: "either ItemHeight or ItemSize is required"}
	}
	if c.ItemHeight > 0 && c.ItemSize != nil {
		return &ConfigurationError{Field: "ItemSize", Reason: "ItemHeight and ItemSize are mutually exclusive"}
	}
	if c.Overscan < 0 {
		return &ConfigurationError{Field: "Overscan", Reason: "must not be negative"}
	}
	if c.StickyHeader && c.RenderHeader == nil {
		return &ConfigurationError{Field: "RenderHeader", Reason: "required with StickyHeader"}
	}
	return nil
}

// inputs is the mailbox of pending pass inputs. Producers (key handlers,
// scroll events, resize signals, feeds) write it under the window mutex;
// the pass snapshots and clears it at frame start, so bursts coalesce with
// last-write-wins semantics.
type inputs struct {
	scroll        int
	scrollSet     bool
	scrollTo      int
	scrollToAlign Align
	scrollToSet   bool
	extent        int
	focus         int
	focusSet      bool
	reloadAll     bool
	reloadItems   []int
	rerenderAll   bool
}

// WindowStats is a snapshot of engine counters, published at the end of
// each pass.
type WindowStats struct {
	Passes           int64
	Invalidations    int64
	Coalesced        int64
	LastPassDuration time.Duration
	BoundNodes       int
	FreeNodes        int
	RenderErrors     int
	Pool             PoolStats
}

// Window is a virtualized viewport over an ordered collection. It
// materializes only the items intersecting the visible range (plus
// overscan), recycling presentation nodes through a NodePool as the window
// moves, and coalesces all inputs into at most one pass per frame.
//
// All model and pool mutation happens inside the materialization pass, which
// the FrameScheduler runs one at a time; public methods only deposit inputs
// and schedule.
type Window struct {
	host  Host
	track *Track
	pool  *NodePool
	sched *FrameScheduler

	count        func() int
	render       func(*Node, int) error
	keyOf        func(int) string
	overscan     int
	recycle      bool
	keyboard     bool
	scrollbar    bool
	stickyHeader bool
	renderHeader func(*Node)
	headerRows   int

	mu         sync.Mutex
	in         inputs
	mounted    bool
	lastRange  Range
	lastScroll int
	lastCount  int
	focused    int
	stats      WindowStats
	lastErr    error

	// pass-owned, touched only inside materialize
	scroll int
	extent int
	window Range
	header *Node

	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a Window for the given configuration. The window renders
// nothing until Mount.
func New(cfg Config) (*Window, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	overscan := cfg.Overscan
	if overscan == 0 {
		overscan = DefaultOverscan
	}
	headerRows := 0
	if cfg.StickyHeader {
		headerRows = cfg.HeaderHeight
		if headerRows <= 0 {
			headerRows = 1
		}
	}

	w := &Window{
		host:         cfg.Host,
		track:        newTrack(cfg.ItemHeight, cfg.ItemSize),
		count:        cfg.Count,
		render:       cfg.Render,
		keyOf:        cfg.KeyOf,
		overscan:     overscan,
		recycle:      !cfg.NoRecycle,
		keyboard:     !cfg.NoKeyboard,
		scrollbar:    !cfg.NoScrollbar,
		stickyHeader: cfg.StickyHeader,
		renderHeader: cfg.RenderHeader,
		headerRows:   headerRows,
		window:       EmptyRange(),
		lastRange:    EmptyRange(),
		focused:      -1,
	}
	w.sched = newFrameScheduler(w.materialize)
	return w, nil
}

// Mount creates the pool, renders the sticky header, and schedules the
// first pass. Mounting an already-mounted window is a no-op.
func (w *Window) Mount() {
	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = true
	w.pool = newNodePool(w.host, w.recycle)
	w.quit = make(chan struct{})
	w.in.extent = w.host.Extent()
	w.mu.Unlock()

	if w.stickyHeader {
		w.mountHeader()
	}
	w.sched.Invalidate()
}

// mountHeader creates and populates the header node, which lives outside
// the recycled window for the lifetime of the mount.
func (w *Window) mountHeader() {
	n, err := w.host.CreateNode()
	if err != nil {
		// Retryable: the next pass will try again.
		return
	}
	w.sizeNodeBuf(n, w.headerRows)
	w.renderHeader(n)
	w.header = n
}

// Unmount cancels any pending pass, stops the frame loop, and synchronously
// releases every node. Safe to call more than once.
func (w *Window) Unmount() {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = false
	quit := w.quit
	w.mu.Unlock()

	w.sched.Cancel()
	close(quit)
	w.wg.Wait()

	w.pool.Clear()
	if w.header != nil {
		w.host.DestroyNode(w.header)
		w.header = nil
	}
	w.window = EmptyRange()

	w.mu.Lock()
	w.lastRange = EmptyRange()
	w.focused = -1
	w.in = inputs{}
	w.mu.Unlock()
}

// Serve runs the frame loop until Unmount. Call it on its own goroutine for
// hosts without a loop of their own; bubbletea hosts drive RunFrame from
// their update loop instead.
func (w *Window) Serve() {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	quit := w.quit
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	for {
		select {
		case <-quit:
			return
		case <-w.sched.Wake():
			w.sched.RunFrame()
		}
	}
}

// RunFrame executes the pending pass, if any. For manual frame pacing.
func (w *Window) RunFrame() bool {
	return w.sched.RunFrame()
}

// Wake exposes the scheduler's wake channel for external frame loops.
func (w *Window) Wake() <-chan struct{} {
	return w.sched.Wake()
}

// Invalidate schedules a pass without changing any input.
func (w *Window) Invalidate() {
	w.sched.Invalidate()
}

// Refresh re-derives the item count and every size, re-renders bound nodes,
// and schedules a pass. Pool bindings are kept; no node churn results from
// a refresh with unchanged inputs.
func (w *Window) Refresh() {
	w.mu.Lock()
	w.in.reloadAll = true
	w.in.rerenderAll = true
	w.mu.Unlock()
	w.sched.Invalidate()
}

// RefreshItem re-measures and re-renders a single item.
func (w *Window) RefreshItem(i int) {
	w.mu.Lock()
	w.in.reloadItems = append(w.in.reloadItems, i)
	w.mu.Unlock()
	w.sched.Invalidate()
}

// SetScrollOffset requests an absolute scroll position for the next pass.
func (w *Window) SetScrollOffset(offset int) {
	w.mu.Lock()
	w.in.scroll = offset
	w.in.scrollSet = true
	w.in.scrollToSet = false
	w.mu.Unlock()
	w.sched.Invalidate()
}

// ScrollBy requests a relative scroll from the last materialized position.
func (w *Window) ScrollBy(delta int) {
	w.mu.Lock()
	base := w.lastScroll
	if w.in.scrollSet {
		base = w.in.scroll
	}
	w.in.scroll = base + delta
	w.in.scrollSet = true
	w.in.scrollToSet = false
	w.mu.Unlock()
	w.sched.Invalidate()
}

// ScrollOffset returns the last materialized scroll position.
func (w *Window) ScrollOffset() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastScroll
}

// ScrollToIndex scrolls so that item i sits at the given alignment. The
// offset is resolved against fresh sizes at the start of the next pass.
func (w *Window) ScrollToIndex(i int, align Align) {
	w.mu.Lock()
	w.in.scrollTo = i
	w.in.scrollToAlign = align
	w.in.scrollToSet = true
	w.in.scrollSet = false
	w.mu.Unlock()
	w.sched.Invalidate()
}

// Resize reports a new viewport extent. Passes are only scheduled when the
// extent actually changed, so repeated resize signals at the same size are
// free.
func (w *Window) Resize(extent int) {
	w.mu.Lock()
	if extent == w.in.extent {
		w.mu.Unlock()
		return
	}
	w.in.extent = extent
	w.mu.Unlock()
	w.sched.Invalidate()
}

// VisibleRange returns the inclusive materialized range from the last pass,
// including overscan.
func (w *Window) VisibleRange() Range {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRange
}

// FocusedIndex returns the focused item index, or -1.
func (w *Window) FocusedIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

// HandleKey interprets a navigation key against the materialized range.
// Returns false for keys that are not navigation keys, leaving them to the
// host's own bindings. The focus transfer happens after the pass the key
// triggers, never against a stale node.
func (w *Window) HandleKey(k Key) bool {
	if !w.keyboard {
		return false
	}
	w.mu.Lock()
	focus := w.focused
	if w.in.focusSet {
		// A queued move not yet materialized; chain from it so rapid
		// keystrokes each advance.
		focus = w.in.focus
	}
	visible := w.lastRange
	count := w.lastCount
	w.mu.Unlock()

	target, handled := navTarget(k, focus, visible, count)
	if !handled {
		return false
	}

	w.mu.Lock()
	w.in.scrollTo = target
	w.in.scrollToAlign = AlignStart
	w.in.scrollToSet = true
	w.in.scrollSet = false
	w.in.focus = target
	w.in.focusSet = true
	// Both rows wearing the focus ring need fresh renders.
	if focus >= 0 {
		w.in.reloadItems = append(w.in.reloadItems, focus)
	}
	w.in.reloadItems = append(w.in.reloadItems, target)
	w.mu.Unlock()
	w.sched.Invalidate()
	return true
}

// Stats returns the engine counters published by the last pass.
func (w *Window) Stats() WindowStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	s.Invalidations = w.sched.Invalidations()
	s.Passes = w.sched.Passes()
	s.Coalesced = w.sched.Coalesced()
	return s
}

// LastRenderError returns the most recent isolated render callback failure.
func (w *Window) LastRenderError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// materialize is the single pass that reconciles the viewport: snapshot
// inputs, reload the track, resolve scroll, diff the window against the
// pool, render entering nodes, composite, and present. Runs only on the
// frame goroutine.
func (w *Window) materialize() {
	started := time.Now()

	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	snap := w.in
	w.in.scrollSet = false
	w.in.scrollToSet = false
	w.in.focusSet = false
	w.in.reloadAll = false
	w.in.rerenderAll = false
	w.in.reloadItems = nil
	w.mu.Unlock()

	// Fresh count every pass; reload sizes when the collection changed
	// shape or a full refresh was requested.
	count := w.count()
	if snap.reloadAll || count != w.track.Count() {
		w.track.Reload(count)
	}

	// A focus request is clamped against the fresh count before anything
	// renders, so callbacks see the index the pass will actually land on.
	// The host focus call still waits until the target node is bound.
	if snap.focusSet && count == 0 {
		snap.focusSet = false
	}
	if snap.focusSet {
		if snap.focus > count-1 {
			// The collection shrank under the request; land on the new
			// last item and repaint its focus ring.
			snap.focus = count - 1
			snap.reloadItems = append(snap.reloadItems, snap.focus)
		}
		w.mu.Lock()
		w.focused = snap.focus
		w.mu.Unlock()
	}

	rerender := make(map[int]bool, len(snap.reloadItems))
	for _, i := range snap.reloadItems {
		w.track.ReloadItem(i)
		rerender[i] = true
	}

	w.extent = snap.extent
	contentExtent := max(0, w.extent-w.headerRows)

	// Resolve the scroll input against fresh offsets.
	if snap.scrollToSet {
		w.scroll = w.alignedOffset(snap.scrollTo, snap.scrollToAlign, contentExtent)
	} else if snap.scrollSet {
		w.scroll = snap.scroll
	}
	maxScroll := max(0, w.track.TotalExtent()-contentExtent)
	if w.scroll > maxScroll {
		w.scroll = maxScroll
	}
	if w.scroll < 0 {
		w.scroll = 0
	}

	newRange := w.track.VisibleRange(w.scroll, contentExtent, w.overscan)

	// Symmetric difference against the previous window: leaving indices are
	// released, entering acquired, the rest left untouched.
	for i := w.window.Start; i <= w.window.End; i++ {
		if !newRange.Contains(i) {
			w.pool.Release(i)
		}
	}
	width := w.host.Width()
	for i := newRange.Start; i <= newRange.End; i++ {
		n := w.pool.Bound(i)
		entering := n == nil
		if entering {
			var err error
			key := ""
			if w.keyOf != nil {
				key = w.keyOf(i)
			}
			n, err = w.pool.Acquire(i, key)
			if err != nil {
				// Host could not produce a node; skip the index this pass
				// and let the next pass retry.
				w.recordError(err)
				continue
			}
		}
		rows := w.track.SizeOf(i)
		resized := w.sizeNode(n, width, rows)
		if entering || resized || rerender[i] || snap.rerenderAll {
			w.renderNode(n, i)
		}
	}
	w.window = newRange

	w.composite(newRange, contentExtent, snap.rerenderAll)
	w.host.Present()

	// Focus only after the pass so the target node is bound and placed. A
	// target that landed outside the window was scrolled away between the
	// request and the pass; the selection keeps the index but host focus
	// stays where it is.
	if snap.focusSet {
		if n := w.pool.Bound(snap.focus); n != nil {
			w.host.Focus(n)
		} else if newRange.Contains(snap.focus) {
			// Inside the window but not bound (host shortage); retry.
			w.mu.Lock()
			w.in.focus = snap.focus
			w.in.focusSet = true
			w.mu.Unlock()
			w.sched.Invalidate()
		}
	}

	w.pool.Prune(2 * newRange.Len())

	w.mu.Lock()
	w.lastRange = newRange
	w.lastScroll = w.scroll
	w.lastCount = count
	if w.focused > count-1 {
		// The collection shrank; the selection tracks the last item.
		w.focused = count - 1
	}
	w.stats.LastPassDuration = time.Since(started)
	w.stats.BoundNodes = w.pool.BoundCount()
	w.stats.FreeNodes = w.pool.FreeCount()
	w.stats.Pool = w.pool.Stats()
	w.mu.Unlock()
}

// alignedOffset computes the scroll offset that places item i at the given
// alignment, clamped to zero. Indices are clamped into the collection.
func (w *Window) alignedOffset(i int, align Align, extent int) int {
	count := w.track.Count()
	if count == 0 {
		return 0
	}
	i = clampIndex(i, count-1)
	offset := w.track.OffsetOf(i)
	leftover := extent - w.track.SizeOf(i)
	switch align {
	case AlignCenter:
		offset -= leftover / 2
	case AlignEnd:
		offset -= leftover
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// sizeNode resizes a node's buffer for its item, reporting whether the
// content was invalidated by the resize.
func (w *Window) sizeNode(n *Node, width, rows int) bool {
	if n.Buf == nil {
		n.Buf = GetBuffer(width, rows)
		return true
	}
	if n.Buf.Width() == width && n.Buf.Height() == rows {
		return false
	}
	n.Buf.Resize(width, rows)
	return true
}

// sizeNodeBuf sizes a standalone node (the header) to the host width.
func (w *Window) sizeNodeBuf(n *Node, rows int) {
	width := w.host.Width()
	if n.Buf == nil {
		n.Buf = GetBuffer(width, rows)
		return
	}
	n.Buf.Resize(width, rows)
}

// renderNode runs the caller's render callback with panic isolation. A
// failing callback clears its own node and never aborts the pass.
func (w *Window) renderNode(n *Node, i int) {
	defer func() {
		if r := recover(); r != nil {
			n.Buf.Clear()
			w.recordError(&RenderCallbackError{Index: i, Cause: r})
		}
	}()
	// The node may carry a previous item's cells; the callback always starts
	// from an empty tile.
	n.Buf.Clear()
	if err := w.render(n, i); err != nil {
		n.Buf.Clear()
		w.recordError(&RenderCallbackError{Index: i, Cause: err})
	}
}

// recordError publishes an isolated error to the stats surface.
func (w *Window) recordError(err error) {
	w.mu.Lock()
	w.lastErr = err
	w.stats.RenderErrors++
	w.mu.Unlock()
}

// composite assembles the viewport: sticky header at the top, then every
// bound node at its track offset relative to the scroll position, then the
// scroll gutter.
func (w *Window) composite(r Range, contentExtent int, headerChanged bool) {
	view := w.host.Viewport()
	view.Clear()

	if w.stickyHeader {
		if w.header == nil {
			// Header creation failed at mount; retry now.
			w.mountHeader()
		}
		if w.header != nil {
			if w.header.Buf.Width() != view.Width() || headerChanged {
				w.sizeNodeBuf(w.header, w.headerRows)
				w.header.Buf.Clear()
				w.renderHeader(w.header)
			}
			view.Blit(w.header.Buf, 0, 0, 0, 0, w.header.Buf.Width(), w.header.Buf.Height())
		}
	}

	for i := r.Start; i <= r.End; i++ {
		n := w.pool.Bound(i)
		if n == nil {
			continue
		}
		y := w.headerRows + w.track.OffsetOf(i) - w.scroll
		n.posY = y
		srcY := 0
		rows := n.Buf.Height()
		if y < w.headerRows {
			// Overscan rows above the viewport must not paint over the
			// header band.
			srcY = w.headerRows - y
			rows -= srcY
			y = w.headerRows
		}
		if rows <= 0 {
			continue
		}
		view.Blit(n.Buf, 0, srcY, 0, y, n.Buf.Width(), rows)
	}

	if w.scrollbar {
		w.renderScrollbar(view, contentExtent)
	}
}

// renderScrollbar draws a simple scrollbar indicator in the last column.
func (w *Window) renderScrollbar(view *Buffer, contentExtent int) {
	total := w.track.TotalExtent()
	if contentExtent < 1 || total <= contentExtent {
		return
	}
	sbX := view.Width() - 1
	sbTop := w.headerRows

	// Calculate thumb position and size
	thumbSize := max(1, contentExtent*contentExtent/total)
	maxScroll := total - contentExtent
	thumbPos := 0
	if maxScroll > 0 {
		thumbPos = (contentExtent - thumbSize) * w.scroll / maxScroll
	}

	trackStyle := DefaultStyle().Foreground(BrightBlack)
	for i := 0; i < contentExtent; i++ {
		view.Set(sbX, sbTop+i, NewCell('│', trackStyle))
	}

	thumbStyle := DefaultStyle().Foreground(White)
	for i := 0; i < thumbSize; i++ {
		view.Set(sbX, sbTop+thumbPos+i, NewCell('┃', thumbStyle))
	}
}
