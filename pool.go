package sash

import "sync"

// Buffer pool - keyed by capacity to avoid reallocating cells
var bufferPool = sync.Pool{
	New: func() any { return &Buffer{} },
}

// GetBuffer gets a buffer from the pool, resizing if needed.
func GetBuffer(width, height int) *Buffer {
	b := bufferPool.Get().(*Buffer)
	needed := width * height
	if cap(b.cells) < needed {
		b.cells = make([]Cell, needed)
	} else {
		b.cells = b.cells[:needed]
	}
	if cap(b.dirty) < height {
		b.dirty = make([]bool, height)
	} else {
		b.dirty = b.dirty[:height]
	}
	b.width = width
	b.height = height
	b.Clear()
	return b
}

// PutBuffer returns a buffer to the pool.
func PutBuffer(b *Buffer) {
	if b == nil {
		return
	}
	bufferPool.Put(b)
}

// Node is a recyclable presentation slot for one item. The host creates and
// destroys nodes; the pool binds them to item indices as the window moves.
// A released node stays attached to the host surface and is simply
// repositioned when it is next acquired.
type Node struct {
	Buf *Buffer // item content tile, sized by the window before each render

	slot      int    // arena position within the pool
	index     int    // bound item index, -1 while free
	key       string // stable item key, "" when unkeyed
	posY      int    // viewport-relative row of the leading edge, set each pass
	attached  bool
	destroyed bool
}

// Index returns the item index the node is bound to, or -1 if free.
func (n *Node) Index() int {
	return n.index
}

// Key returns the stable item key the node was last acquired with.
func (n *Node) Key() string {
	return n.key
}

// Attached returns true while the node is attached to the host surface.
func (n *Node) Attached() bool {
	return n.attached
}

// PoolStats counts node traffic since the pool was created.
type PoolStats struct {
	Creates  int // nodes created by the host
	Destroys int // nodes destroyed via the host
	KeyHits  int // acquires satisfied by a warm keyed node
	FreeHits int // acquires satisfied from the free list
	Releases int // nodes released as items left the window
}

// NodePool is an arena of host nodes bound to item indices, recycling
// released nodes through a free list. Nodes acquired with a stable key keep
// their identity when the same item re-enters the window at a different
// index, so focus and host-side state survive collection mutations.
//
// Invariant: at most one node per index, tracked by the bound map.
type NodePool struct {
	host    Host
	recycle bool

	slots []*Node          // every live node, indexed by Node.slot
	bound map[int]*Node    // item index -> node
	keyed map[string]*Node // stable key -> node, bound or warm
	free  []*Node
	stats PoolStats
}

// newNodePool creates a pool backed by the given host. With recycle false,
// released nodes are destroyed instead of pooled.
func newNodePool(host Host, recycle bool) *NodePool {
	return &NodePool{
		host:    host,
		recycle: recycle,
		bound:   make(map[int]*Node),
		keyed:   make(map[string]*Node),
	}
}

// Acquire returns the node bound to index, binding one if necessary.
// Resolution order: already bound, warm keyed node for the same item,
// free list, host creation. Host creation failure is reported as a
// HostUnavailableError and leaves the index unbound for this pass.
func (p *NodePool) Acquire(index int, key string) (*Node, error) {
	if n, ok := p.bound[index]; ok {
		return n, nil
	}

	// A warm keyed node keeps its identity for the same logical item even
	// after its index changed, but only while the host still reports it
	// attached. Orphaned entries are discarded, not reused.
	if key != "" {
		if n, ok := p.keyed[key]; ok && n.index == -1 {
			if !n.destroyed && n.key == key && p.host.Attached(n) {
				p.unfree(n)
				p.bind(n, index, key)
				p.stats.KeyHits++
				return n, nil
			}
			delete(p.keyed, key)
			if !n.destroyed {
				p.unfree(n)
				p.destroy(n)
			}
		}
	}

	if len(p.free) > 0 {
		n := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		if n.key != "" && p.keyed[n.key] == n {
			delete(p.keyed, n.key)
		}
		p.bind(n, index, key)
		p.stats.FreeHits++
		return n, nil
	}

	n, err := p.host.CreateNode()
	if err != nil {
		return nil, &HostUnavailableError{Op: "create node", Err: err}
	}
	n.slot = len(p.slots)
	n.index = -1
	p.slots = append(p.slots, n)
	p.bind(n, index, key)
	p.stats.Creates++
	return n, nil
}

// unfree removes a node from the free list if present.
func (p *NodePool) unfree(n *Node) {
	for i, f := range p.free {
		if f == n {
			p.free = append(p.free[:i], p.free[i+1:]...)
			return
		}
	}
}

// bind attaches a node to an index under a (possibly empty) key.
func (p *NodePool) bind(n *Node, index int, key string) {
	n.index = index
	n.key = key
	p.bound[index] = n
	if key != "" {
		p.keyed[key] = n
	}
	if !n.attached {
		p.host.Attach(n)
		n.attached = true
	}
}

// Release unbinds the node at index. In recycle mode the node moves to the
// free list still attached to the surface, keeping its key warm for rescue;
// otherwise it is destroyed through the host. Releasing an unbound index is
// a no-op.
func (p *NodePool) Release(index int) {
	n, ok := p.bound[index]
	if !ok {
		return
	}
	delete(p.bound, index)
	n.index = -1
	p.stats.Releases++

	if !p.recycle {
		p.destroy(n)
		return
	}
	p.free = append(p.free, n)
}

// destroy removes a node permanently via the host.
func (p *NodePool) destroy(n *Node) {
	if n.key != "" && p.keyed[n.key] == n {
		delete(p.keyed, n.key)
	}
	if n.attached {
		p.host.Detach(n)
		n.attached = false
	}
	if last := len(p.slots) - 1; n.slot >= 0 && n.slot <= last {
		p.slots[n.slot] = p.slots[last]
		p.slots[n.slot].slot = n.slot
		p.slots = p.slots[:last]
	}
	n.slot = -1
	n.destroyed = true
	p.host.DestroyNode(n)
	p.stats.Destroys++
}

// Bound returns the node currently bound to index, or nil.
func (p *NodePool) Bound(index int) *Node {
	return p.bound[index]
}

// BoundCount returns the number of currently bound nodes.
func (p *NodePool) BoundCount() int {
	return len(p.bound)
}

// FreeCount returns the number of nodes waiting on the free list.
func (p *NodePool) FreeCount() int {
	return len(p.free)
}

// Prune destroys free nodes beyond maxFree, bounding pool memory after the
// window shrinks.
func (p *NodePool) Prune(maxFree int) {
	if maxFree < 0 {
		maxFree = 0
	}
	for len(p.free) > maxFree {
		n := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.destroy(n)
	}
}

// Clear releases every bound node and destroys the whole pool population.
// Called synchronously on unmount.
func (p *NodePool) Clear() {
	for index, n := range p.bound {
		delete(p.bound, index)
		n.index = -1
		p.destroy(n)
	}
	for _, n := range p.free {
		p.destroy(n)
	}
	p.free = p.free[:0]
	p.keyed = make(map[string]*Node)
}

// Stats returns a copy of the pool counters.
func (p *NodePool) Stats() PoolStats {
	return p.stats
}
