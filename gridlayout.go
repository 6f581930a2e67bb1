package sash

import "sort"

// Tile is one dashboard panel on the layout grid. Coordinates are in grid
// units, not terminal cells.
type Tile struct {
	ID     string
	X, Y   int
	W, H   int
	Locked bool
}

// GridSpec configures the layout grid. Gap is the spacing in terminal cells
// applied when tiles are mapped to screen rectangles; Float disables
// compaction, Static freezes the layout entirely.
type GridSpec struct {
	Columns int
	Gap     int
	Float   bool
	Static  bool
}

// Rect is a rectangle in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// occupancy tracks which grid cells are taken.
type occupancy struct {
	cells   map[[2]int]struct{}
	columns int
}

func newOccupancy(columns int) *occupancy {
	return &occupancy{cells: make(map[[2]int]struct{}), columns: columns}
}

func (o *occupancy) canPlace(t Tile) bool {
	if t.X < 0 || t.Y < 0 || t.X+t.W > o.columns {
		return false
	}
	for y := t.Y; y < t.Y+t.H; y++ {
		for x := t.X; x < t.X+t.W; x++ {
			if _, taken := o.cells[[2]int{x, y}]; taken {
				return false
			}
		}
	}
	return true
}

func (o *occupancy) mark(t Tile) {
	for y := t.Y; y < t.Y+t.H; y++ {
		for x := t.X; x < t.X+t.W; x++ {
			o.cells[[2]int{x, y}] = struct{}{}
		}
	}
}

// rise moves a tile up row by row until something blocks it.
func (o *occupancy) rise(t Tile) Tile {
	for t.Y > 0 {
		test := t
		test.Y--
		if !o.canPlace(test) {
			break
		}
		t.Y--
	}
	return t
}

// firstFit scans rows top to bottom for the first free slot of the tile's
// size. The search is bounded; an impossibly full grid parks the tile below
// everything.
func (o *occupancy) firstFit(t Tile) Tile {
	for y := 0; y < 1000; y++ {
		for x := 0; x <= o.columns-t.W; x++ {
			test := t
			test.X, test.Y = x, y
			if o.canPlace(test) {
				return test
			}
		}
	}
	t.X, t.Y = 0, 1000
	return t
}

// collides reports axis-aligned overlap between two tiles.
func collides(a, b Tile) bool {
	return !(a.X >= b.X+b.W || a.X+a.W <= b.X || a.Y >= b.Y+b.H || a.Y+a.H <= b.Y)
}

// Compact packs tiles upward, top-left first, leaving locked tiles pinned.
// In float mode tiles keep their rows and only get clamped into the
// horizontal bounds. Static grids are left untouched.
func Compact(tiles []Tile, spec GridSpec) {
	if spec.Static || spec.Columns < 1 {
		return
	}
	if spec.Float {
		for i := range tiles {
			if tiles[i].Locked {
				continue
			}
			tiles[i].X = max(0, min(tiles[i].X, spec.Columns-tiles[i].W))
			tiles[i].Y = max(0, tiles[i].Y)
		}
		return
	}

	order := sortedIndices(tiles, func(a, b Tile) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	occ := newOccupancy(spec.Columns)
	for _, t := range tiles {
		if t.Locked {
			occ.mark(t)
		}
	}
	for _, i := range order {
		if tiles[i].Locked {
			continue
		}
		tiles[i] = occ.rise(tiles[i])
		occ.mark(tiles[i])
	}
}

// Reflow resolves collisions after the tile with movedID changed position:
// overlapping tiles are pushed below it, then everything else compacts
// around it. An unknown id degrades to a plain Compact.
func Reflow(tiles []Tile, spec GridSpec, movedID string) {
	if spec.Static || spec.Columns < 1 {
		return
	}
	moved := -1
	for i := range tiles {
		if tiles[i].ID == movedID {
			moved = i
			break
		}
	}
	if moved < 0 {
		Compact(tiles, spec)
		return
	}
	movedTile := tiles[moved]

	order := sortedIndices(tiles, func(a, b Tile) bool { return a.Y < b.Y })
	for _, i := range order {
		if i == moved || tiles[i].Locked {
			continue
		}
		if collides(tiles[i], movedTile) {
			if newY := movedTile.Y + movedTile.H; newY > tiles[i].Y {
				tiles[i].Y = newY
			}
		}
	}

	occ := newOccupancy(spec.Columns)
	occ.mark(movedTile)
	for _, t := range tiles {
		if t.Locked {
			occ.mark(t)
		}
	}
	for _, i := range order {
		if i == moved || tiles[i].Locked {
			continue
		}
		tiles[i] = occ.rise(tiles[i])
		occ.mark(tiles[i])
	}
}

// PlaceTile finds the first free position for a new w by h tile among the
// existing ones.
func PlaceTile(tiles []Tile, w, h int, spec GridSpec) (x, y int) {
	occ := newOccupancy(spec.Columns)
	for _, t := range tiles {
		occ.mark(t)
	}
	placed := occ.firstFit(Tile{W: w, H: h})
	return placed.X, placed.Y
}

// MaxRow returns the exclusive bottom row of the layout.
func MaxRow(tiles []Tile) int {
	bottom := 0
	for _, t := range tiles {
		if t.Y+t.H > bottom {
			bottom = t.Y + t.H
		}
	}
	return bottom
}

// TileRect maps a tile to terminal cells. The screen width is divided into
// spec.Columns columns; rowHeight is the cell height of one grid row. Gap
// cells separate adjacent tiles.
func TileRect(t Tile, spec GridSpec, screenWidth, rowHeight int) Rect {
	if spec.Columns < 1 {
		return Rect{}
	}
	colWidth := screenWidth / spec.Columns
	return Rect{
		X: t.X*colWidth + spec.Gap,
		Y: t.Y*rowHeight + spec.Gap,
		W: t.W*colWidth - spec.Gap,
		H: t.H*rowHeight - spec.Gap,
	}
}

// sortedIndices returns tile indices ordered by less without disturbing the
// slice itself. Ties keep their input order.
func sortedIndices(tiles []Tile, less func(a, b Tile) bool) []int {
	order := make([]int, len(tiles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(tiles[order[i]], tiles[order[j]])
	})
	return order
}
