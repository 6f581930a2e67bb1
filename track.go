package sash

// Range is an inclusive span of item indices.
// A range with End < Start is empty.
type Range struct {
	Start int
	End   int
}

// EmptyRange returns the canonical empty range.
func EmptyRange() Range {
	return Range{Start: 0, End: -1}
}

// Empty returns true if the range contains no indices.
func (r Range) Empty() bool {
	return r.End < r.Start
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains returns true if i falls within the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}

// Track maps between item indices and pixel offsets along the scroll axis.
// In fixed mode every item has the same height and lookups are O(1).
// In variable mode a Fenwick tree over per-item sizes answers offset and
// covering-index queries in O(log n); the tree is rebuilt in O(n) by Reload.
type Track struct {
	height int           // fixed item height, 0 in variable mode
	sizeOf func(int) int // variable mode size callback
	count  int
	sums   *fenwick // variable mode only
	total  int
}

// newTrack creates a track in fixed mode (height > 0) or variable mode
// (sizeOf != nil). Exactly one of the two must be provided; Config
// validation enforces that before construction.
func newTrack(height int, sizeOf func(int) int) *Track {
	return &Track{height: height, sizeOf: sizeOf}
}

// fixed returns true if the track is in fixed-height mode.
func (t *Track) fixed() bool {
	return t.sizeOf == nil
}

// Reload re-derives the track for the given item count.
// Variable mode re-queries every item size.
func (t *Track) Reload(count int) {
	if count < 0 {
		count = 0
	}
	t.count = count
	if t.fixed() {
		t.total = count * t.height
		return
	}
	sizes := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		size := t.sizeOf(i)
		if size < 0 {
			size = 0
		}
		sizes[i] = size
		total += size
	}
	t.sums = newFenwick(sizes)
	t.total = total
}

// ReloadItem re-queries the size of a single item and updates the track.
// Fixed mode is a no-op.
func (t *Track) ReloadItem(i int) {
	if t.fixed() || i < 0 || i >= t.count {
		return
	}
	size := t.sizeOf(i)
	if size < 0 {
		size = 0
	}
	old := t.sums.get(i)
	if size == old {
		return
	}
	t.sums.add(i, size-old)
	t.total += size - old
}

// Count returns the item count as of the last Reload.
func (t *Track) Count() int {
	return t.count
}

// TotalExtent returns the length of the whole track in cells,
// equal to OffsetOf(Count()).
func (t *Track) TotalExtent() int {
	return t.total
}

// OffsetOf returns the offset of the leading edge of item i.
// i may equal Count(), in which case the total extent is returned.
func (t *Track) OffsetOf(i int) int {
	if i < 0 || i > t.count {
		panic("sash: offset index out of range")
	}
	if t.fixed() {
		return i * t.height
	}
	return t.sums.prefix(i)
}

// SizeOf returns the size of item i along the scroll axis.
func (t *Track) SizeOf(i int) int {
	if i < 0 || i >= t.count {
		panic("sash: size index out of range")
	}
	if t.fixed() {
		return t.height
	}
	return t.sums.get(i)
}

// IndexAt returns the index of the item covering offset y, clamped to the
// valid index range. Returns -1 for an empty track.
func (t *Track) IndexAt(y int) int {
	if t.count == 0 {
		return -1
	}
	if y < 0 {
		return 0
	}
	if t.fixed() {
		i := y / t.height
		if i >= t.count {
			return t.count - 1
		}
		return i
	}
	i := t.sums.findCovering(y)
	if i >= t.count {
		return t.count - 1
	}
	return i
}

// VisibleRange returns the inclusive index range intersecting the viewport
// [scroll, scroll+extent], widened by overscan items on each side and
// clamped to the collection bounds. Empty collections yield an empty range.
func (t *Track) VisibleRange(scroll, extent, overscan int) Range {
	if t.count == 0 {
		return EmptyRange()
	}
	if scroll < 0 {
		scroll = 0
	}
	if extent < 0 {
		extent = 0
	}

	var first, last int
	if t.fixed() {
		first = scroll / t.height
		last = (scroll + extent) / t.height
	} else {
		// first: earliest item whose trailing edge passes the scroll top.
		// last: earliest item whose trailing edge reaches the viewport
		// bottom, so an item starting exactly at the bottom edge is out.
		first = t.sums.findCovering(scroll)
		last = t.sums.findBefore(scroll + extent)
	}

	// Clamp the visible endpoints into the collection before widening, so a
	// viewport scrolled past the end still overscans back from the last item.
	if first > t.count-1 {
		first = t.count - 1
	}
	if last > t.count-1 {
		last = t.count - 1
	}

	first -= overscan
	last += overscan
	if first < 0 {
		first = 0
	}
	if last > t.count-1 {
		last = t.count - 1
	}
	if first > last {
		// Degenerate zero-extent viewport
		first = last
	}
	return Range{Start: first, End: last}
}

// fenwick is a binary indexed tree over per-item sizes.
// tree is 1-based; tree[i] covers sizes[i-lowbit(i) .. i-1].
type fenwick struct {
	tree []int
	n    int
}

// newFenwick builds the tree from sizes in O(n).
func newFenwick(sizes []int) *fenwick {
	n := len(sizes)
	f := &fenwick{tree: make([]int, n+1), n: n}
	for i, s := range sizes {
		f.tree[i+1] += s
		if parent := i + 1 + ((i + 1) & -(i + 1)); parent <= n {
			f.tree[parent] += f.tree[i+1]
		}
	}
	return f
}

// prefix returns the sum of the first i sizes.
func (f *fenwick) prefix(i int) int {
	sum := 0
	for ; i > 0; i -= i & -i {
		sum += f.tree[i]
	}
	return sum
}

// get returns the size of item i.
func (f *fenwick) get(i int) int {
	return f.prefix(i+1) - f.prefix(i)
}

// add applies a delta to item i.
func (f *fenwick) add(i int, delta int) {
	for i++; i <= f.n; i += i & -i {
		f.tree[i] += delta
	}
}

// findCovering returns the largest index i with prefix(i) <= y, which is the
// item whose span [offset, offset+size) covers y. May return n when y is at
// or beyond the total extent; callers clamp.
func (f *fenwick) findCovering(y int) int {
	pos := 0
	for k := f.stride(); k > 0; k >>= 1 {
		next := pos + k
		if next <= f.n && f.tree[next] <= y {
			pos = next
			y -= f.tree[next]
		}
	}
	return pos
}

// findBefore returns the largest index i with prefix(i) < y: the item whose
// trailing edge first reaches y. May return n; callers clamp.
func (f *fenwick) findBefore(y int) int {
	pos := 0
	for k := f.stride(); k > 0; k >>= 1 {
		next := pos + k
		if next <= f.n && f.tree[next] < y {
			pos = next
			y -= f.tree[next]
		}
	}
	return pos
}

// stride returns the highest power of two not exceeding n.
func (f *fenwick) stride() int {
	k := 1
	for k<<1 <= f.n {
		k <<= 1
	}
	return k
}
