package sash

import "errors"

// Host supplies the scrollable surface a Window renders into. It creates and
// destroys presentation nodes, tracks which nodes are attached to the
// surface, reports the viewport geometry, and presents the composed frame.
//
// The engine has no platform code of its own; this seam is the only place
// terminal, test, or bubbletea specifics live.
type Host interface {
	// CreateNode allocates a fresh node. Failure is retryable: the engine
	// skips the index this pass and tries again next pass.
	CreateNode() (*Node, error)
	// DestroyNode permanently disposes a node and its resources.
	DestroyNode(n *Node)
	// Attach puts a node on the surface. Attached nodes survive release and
	// are repositioned when rebound.
	Attach(n *Node)
	// Detach removes a node from the surface.
	Detach(n *Node)
	// Attached reports whether the surface still holds the node. Keyed reuse
	// verifies this before trusting a warm node.
	Attached(n *Node) bool
	// Focus transfers input focus to a bound node after a pass completes.
	Focus(n *Node)
	// Viewport returns the composition buffer for the windowed region.
	Viewport() *Buffer
	// Extent returns the viewport height in rows.
	Extent() int
	// Width returns the viewport width in cells.
	Width() int
	// Present pushes the composed viewport to the display.
	Present()
}

// errHostClosed is returned by hosts after teardown.
var errHostClosed = errors.New("host closed")

// ScreenHost adapts a rectangular region of a Screen into a Host. Several
// hosts can share one screen, each compositing into its own region, which is
// how dashboard tiles embed windows.
type ScreenHost struct {
	screen *Screen
	x, y   int
	view   *Buffer

	nodes   map[*Node]struct{}
	focused *Node
	closed  bool
}

// NewScreenHost creates a host occupying the given region of the screen.
func NewScreenHost(screen *Screen, x, y, width, height int) *ScreenHost {
	return &ScreenHost{
		screen: screen,
		x:      x,
		y:      y,
		view:   NewBuffer(width, height),
		nodes:  make(map[*Node]struct{}),
	}
}

// CreateNode allocates a node with a pooled content buffer.
func (h *ScreenHost) CreateNode() (*Node, error) {
	if h.closed {
		return nil, errHostClosed
	}
	return &Node{Buf: GetBuffer(h.view.Width(), 1), index: -1, slot: -1}, nil
}

// DestroyNode returns the node's buffer to the pool.
func (h *ScreenHost) DestroyNode(n *Node) {
	if h.focused == n {
		h.focused = nil
	}
	delete(h.nodes, n)
	PutBuffer(n.Buf)
	n.Buf = nil
}

// Attach registers the node with the surface.
func (h *ScreenHost) Attach(n *Node) {
	h.nodes[n] = struct{}{}
}

// Detach removes the node from the surface.
func (h *ScreenHost) Detach(n *Node) {
	if h.focused == n {
		h.focused = nil
	}
	delete(h.nodes, n)
}

// Attached reports whether the node is still on the surface.
func (h *ScreenHost) Attached(n *Node) bool {
	_, ok := h.nodes[n]
	return ok
}

// Focus remembers the focused node; Present positions the terminal cursor
// on its row.
func (h *ScreenHost) Focus(n *Node) {
	h.focused = n
}

// Viewport returns the host's composition buffer.
func (h *ScreenHost) Viewport() *Buffer {
	return h.view
}

// Extent returns the viewport height in rows.
func (h *ScreenHost) Extent() int {
	return h.view.Height()
}

// Width returns the viewport width in cells.
func (h *ScreenHost) Width() int {
	return h.view.Width()
}

// Present blits the composed viewport onto the screen and flushes the diff,
// batching cursor placement for the focused row into the same write.
func (h *ScreenHost) Present() {
	if h.closed {
		return
	}
	h.screen.Buffer().Blit(h.view, 0, 0, h.x, h.y, h.view.Width(), h.view.Height())
	h.screen.Flush()
	if n := h.focused; n != nil && n.posY >= 0 && n.posY < h.view.Height() {
		h.screen.BufferCursor(h.x, h.y+n.posY, true, CursorBar)
	}
	h.screen.FlushBuffer()
}

// SetRect moves or resizes the host's region, for layout changes.
// The caller follows up with Window.Resize so the engine sees the new extent.
func (h *ScreenHost) SetRect(x, y, width, height int) {
	h.x = x
	h.y = y
	h.view.Resize(width, height)
	h.view.Clear()
}

// Close tears the host down; CreateNode fails afterwards.
func (h *ScreenHost) Close() {
	h.closed = true
	h.nodes = make(map[*Node]struct{})
	h.focused = nil
}
