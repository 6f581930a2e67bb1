package sash

import (
	"bytes"
	"errors"
	"testing"
)

// testHost is an in-memory Host with scriptable failures, shared by the
// pool and window tests.
type testHost struct {
	view    *Buffer
	nodes   map[*Node]struct{}
	focused *Node

	creates     int
	destroys    int
	presents    int
	focusCalls  int
	failCreates int // fail this many CreateNode calls before succeeding
}

func newTestHost(width, height int) *testHost {
	return &testHost{
		view:  NewBuffer(width, height),
		nodes: make(map[*Node]struct{}),
	}
}

func (h *testHost) CreateNode() (*Node, error) {
	if h.failCreates > 0 {
		h.failCreates--
		return nil, errors.New("host out of nodes")
	}
	h.creates++
	return &Node{Buf: GetBuffer(h.view.Width(), 1), index: -1, slot: -1}, nil
}

func (h *testHost) DestroyNode(n *Node) {
	h.destroys++
	if h.focused == n {
		h.focused = nil
	}
	delete(h.nodes, n)
	PutBuffer(n.Buf)
	n.Buf = nil
}

func (h *testHost) Attach(n *Node) { h.nodes[n] = struct{}{} }

func (h *testHost) Detach(n *Node) {
	if h.focused == n {
		h.focused = nil
	}
	delete(h.nodes, n)
}

func (h *testHost) Attached(n *Node) bool {
	_, ok := h.nodes[n]
	return ok
}

func (h *testHost) Focus(n *Node) {
	h.focusCalls++
	h.focused = n
}

func (h *testHost) Viewport() *Buffer { return h.view }
func (h *testHost) Extent() int       { return h.view.Height() }
func (h *testHost) Width() int        { return h.view.Width() }
func (h *testHost) Present()          { h.presents++ }

func TestScreenHostNodes(t *testing.T) {
	var out bytes.Buffer
	screen, err := NewScreen(&out)
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	host := NewScreenHost(screen, 2, 1, 20, 5)

	n, err := host.CreateNode()
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if n.Buf == nil || n.Buf.Width() != 20 {
		t.Errorf("expected 20-wide node buffer, got %v", n.Buf)
	}

	if host.Attached(n) {
		t.Error("fresh node should not be attached")
	}
	host.Attach(n)
	if !host.Attached(n) {
		t.Error("expected node attached")
	}
	host.Detach(n)
	if host.Attached(n) {
		t.Error("expected node detached")
	}

	host.Attach(n)
	host.Focus(n)
	host.DestroyNode(n)
	if host.Attached(n) {
		t.Error("destroyed node should be off the surface")
	}
	if n.Buf != nil {
		t.Error("destroyed node should have released its buffer")
	}
}

func TestScreenHostPresent(t *testing.T) {
	var out bytes.Buffer
	screen, err := NewScreen(&out)
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	host := NewScreenHost(screen, 3, 2, 10, 4)

	host.Viewport().WriteStringFast(0, 0, "hi", DefaultStyle(), 10)
	host.Present()

	if got := screen.Buffer().Get(3, 2).Rune; got != 'h' {
		t.Errorf("expected 'h' at region origin, got %q", got)
	}
	if got := screen.Buffer().Get(4, 2).Rune; got != 'i' {
		t.Errorf("expected 'i', got %q", got)
	}
	if out.Len() == 0 {
		t.Error("expected present to write to the terminal")
	}
}

func TestScreenHostSetRect(t *testing.T) {
	var out bytes.Buffer
	screen, _ := NewScreen(&out)
	host := NewScreenHost(screen, 0, 0, 10, 4)

	host.SetRect(5, 3, 30, 8)
	if host.Width() != 30 || host.Extent() != 8 {
		t.Errorf("expected 30x8, got %dx%d", host.Width(), host.Extent())
	}
}

func TestScreenHostClose(t *testing.T) {
	var out bytes.Buffer
	screen, _ := NewScreen(&out)
	host := NewScreenHost(screen, 0, 0, 10, 4)

	host.Close()
	if _, err := host.CreateNode(); err == nil {
		t.Error("expected CreateNode to fail after close")
	}
}
