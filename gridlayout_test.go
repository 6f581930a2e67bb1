package sash

import (
	"math/rand"
	"testing"
)

func tileByID(t *testing.T, tiles []Tile, id string) Tile {
	t.Helper()
	for _, tile := range tiles {
		if tile.ID == id {
			return tile
		}
	}
	t.Fatalf("tile %q not found", id)
	return Tile{}
}

func TestCompact(t *testing.T) {
	spec := GridSpec{Columns: 4}

	t.Run("Gravity", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 5, W: 2, H: 2},
			{ID: "b", X: 0, Y: 9, W: 2, H: 2},
		}
		Compact(tiles, spec)

		if got := tileByID(t, tiles, "a"); got.Y != 0 {
			t.Errorf("expected a at row 0, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "b"); got.Y != 2 {
			t.Errorf("expected b stacked at row 2, got %d", got.Y)
		}
	})

	t.Run("SideBySideRiseIndependently", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 3, W: 2, H: 2},
			{ID: "b", X: 2, Y: 7, W: 2, H: 2},
		}
		Compact(tiles, spec)

		if got := tileByID(t, tiles, "a"); got.Y != 0 {
			t.Errorf("expected a at row 0, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "b"); got.Y != 0 {
			t.Errorf("expected b at row 0, got %d", got.Y)
		}
	})

	t.Run("WideTileBlocks", func(t *testing.T) {
		tiles := []Tile{
			{ID: "bar", X: 0, Y: 0, W: 4, H: 1},
			{ID: "b", X: 1, Y: 5, W: 2, H: 2},
		}
		Compact(tiles, spec)

		if got := tileByID(t, tiles, "b"); got.Y != 1 {
			t.Errorf("expected b under the full-width bar, got row %d", got.Y)
		}
	})

	t.Run("LockedStaysPinned", func(t *testing.T) {
		tiles := []Tile{
			{ID: "lock", X: 0, Y: 4, W: 2, H: 2, Locked: true},
			{ID: "c", X: 0, Y: 8, W: 2, H: 2},
		}
		Compact(tiles, spec)

		if got := tileByID(t, tiles, "lock"); got.Y != 4 {
			t.Errorf("expected the locked tile pinned at 4, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "c"); got.Y != 6 {
			t.Errorf("expected c to stop under the locked tile, got %d", got.Y)
		}
	})

	t.Run("FloatClampsOnly", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: -2, Y: 7, W: 2, H: 2},
			{ID: "b", X: 5, Y: 3, W: 2, H: 2},
			{ID: "lock", X: 9, Y: 1, W: 2, H: 2, Locked: true},
		}
		Compact(tiles, GridSpec{Columns: 4, Float: true})

		a := tileByID(t, tiles, "a")
		if a.X != 0 || a.Y != 7 {
			t.Errorf("expected a clamped to (0,7), got (%d,%d)", a.X, a.Y)
		}
		b := tileByID(t, tiles, "b")
		if b.X != 2 || b.Y != 3 {
			t.Errorf("expected b clamped to (2,3), got (%d,%d)", b.X, b.Y)
		}
		if got := tileByID(t, tiles, "lock"); got.X != 9 {
			t.Errorf("expected the locked tile untouched, got x %d", got.X)
		}
	})

	t.Run("StaticFrozen", func(t *testing.T) {
		tiles := []Tile{{ID: "a", X: 0, Y: 9, W: 2, H: 2}}
		Compact(tiles, GridSpec{Columns: 4, Static: true})

		if got := tileByID(t, tiles, "a"); got.Y != 9 {
			t.Errorf("expected static layout untouched, got %d", got.Y)
		}
	})

	t.Run("DegenerateColumns", func(t *testing.T) {
		tiles := []Tile{{ID: "a", X: 0, Y: 9, W: 2, H: 2}}
		Compact(tiles, GridSpec{Columns: 0})

		if got := tileByID(t, tiles, "a"); got.Y != 9 {
			t.Errorf("expected no-op without columns, got %d", got.Y)
		}
	})
}

// TestCompactSettles generates random non-overlapping layouts and checks the
// compacted result is collision free, in bounds, and has no tile with free
// space directly above it.
func TestCompactSettles(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	spec := GridSpec{Columns: 8}

	for trial := 0; trial < 25; trial++ {
		n := 2 + rng.Intn(7)
		tiles := make([]Tile, n)
		for i := range tiles {
			w := 1 + rng.Intn(4)
			tiles[i] = Tile{
				ID: string(rune('a' + i)),
				X:  rng.Intn(spec.Columns - w + 1),
				// One row band per tile keeps the input overlap free.
				Y:      i*4 + rng.Intn(2),
				W:      w,
				H:      1 + rng.Intn(3),
				Locked: rng.Intn(8) == 0,
			}
		}

		Compact(tiles, spec)

		for i := range tiles {
			if tiles[i].Y < 0 || tiles[i].X < 0 || tiles[i].X+tiles[i].W > spec.Columns {
				t.Fatalf("trial %d: tile %s out of bounds: %+v", trial, tiles[i].ID, tiles[i])
			}
			for j := i + 1; j < n; j++ {
				if collides(tiles[i], tiles[j]) {
					t.Fatalf("trial %d: %s overlaps %s: %+v vs %+v",
						trial, tiles[i].ID, tiles[j].ID, tiles[i], tiles[j])
				}
			}
			if tiles[i].Locked || tiles[i].Y == 0 {
				continue
			}
			raised := tiles[i]
			raised.Y--
			blocked := false
			for j := range tiles {
				if j != i && collides(raised, tiles[j]) {
					blocked = true
					break
				}
			}
			if !blocked {
				t.Fatalf("trial %d: tile %s has free space above: %+v", trial, tiles[i].ID, tiles[i])
			}
		}
	}
}

func TestReflow(t *testing.T) {
	spec := GridSpec{Columns: 4}

	t.Run("PushesColliders", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 1, W: 2, H: 2}, // just dragged onto b
			{ID: "b", X: 0, Y: 2, W: 2, H: 2},
		}
		Reflow(tiles, spec, "a")

		if got := tileByID(t, tiles, "a"); got.Y != 1 {
			t.Errorf("expected the dragged tile kept at 1, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "b"); got.Y != 3 {
			t.Errorf("expected b pushed below a, got %d", got.Y)
		}
	})

	t.Run("OthersCompactAround", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 5, W: 2, H: 2}, // dragged into empty space
			{ID: "b", X: 0, Y: 0, W: 2, H: 2},
			{ID: "c", X: 0, Y: 2, W: 2, H: 2},
		}
		Reflow(tiles, spec, "a")

		if got := tileByID(t, tiles, "a"); got.Y != 5 {
			t.Errorf("expected the dragged tile left at 5, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "b"); got.Y != 0 {
			t.Errorf("expected b at 0, got %d", got.Y)
		}
		if got := tileByID(t, tiles, "c"); got.Y != 2 {
			t.Errorf("expected c at 2, got %d", got.Y)
		}
	})

	t.Run("LockedNotPushed", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 3, W: 2, H: 2},
			{ID: "lock", X: 0, Y: 4, W: 2, H: 2, Locked: true},
		}
		Reflow(tiles, spec, "a")

		if got := tileByID(t, tiles, "lock"); got.Y != 4 {
			t.Errorf("expected the locked tile pinned, got %d", got.Y)
		}
	})

	t.Run("UnknownIDCompacts", func(t *testing.T) {
		tiles := []Tile{{ID: "a", X: 0, Y: 6, W: 2, H: 2}}
		Reflow(tiles, spec, "ghost")

		if got := tileByID(t, tiles, "a"); got.Y != 0 {
			t.Errorf("expected plain compaction, got %d", got.Y)
		}
	})
}

func TestPlaceTile(t *testing.T) {
	spec := GridSpec{Columns: 4}

	t.Run("EmptyGrid", func(t *testing.T) {
		x, y := PlaceTile(nil, 2, 2, spec)
		if x != 0 || y != 0 {
			t.Errorf("expected (0,0), got (%d,%d)", x, y)
		}
	})

	t.Run("FillsRowFirst", func(t *testing.T) {
		tiles := []Tile{{ID: "a", X: 0, Y: 0, W: 2, H: 2}}
		x, y := PlaceTile(tiles, 2, 2, spec)
		if x != 2 || y != 0 {
			t.Errorf("expected (2,0), got (%d,%d)", x, y)
		}
	})

	t.Run("WrapsToNextFreeRow", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 0, W: 2, H: 2},
			{ID: "b", X: 2, Y: 0, W: 2, H: 2},
		}
		x, y := PlaceTile(tiles, 4, 1, spec)
		if x != 0 || y != 2 {
			t.Errorf("expected (0,2), got (%d,%d)", x, y)
		}
	})

	t.Run("SlipsIntoGaps", func(t *testing.T) {
		tiles := []Tile{
			{ID: "a", X: 0, Y: 0, W: 3, H: 1},
			{ID: "b", X: 0, Y: 1, W: 2, H: 1},
		}
		x, y := PlaceTile(tiles, 1, 1, spec)
		if x != 3 || y != 0 {
			t.Errorf("expected (3,0), got (%d,%d)", x, y)
		}
	})
}

func TestMaxRow(t *testing.T) {
	if got := MaxRow(nil); got != 0 {
		t.Errorf("expected 0 for empty layout, got %d", got)
	}
	tiles := []Tile{
		{X: 0, Y: 0, W: 2, H: 2},
		{X: 2, Y: 3, W: 2, H: 4},
	}
	if got := MaxRow(tiles); got != 7 {
		t.Errorf("expected bottom row 7, got %d", got)
	}
}

func TestCollides(t *testing.T) {
	a := Tile{X: 0, Y: 0, W: 2, H: 2}

	if collides(a, Tile{X: 2, Y: 0, W: 2, H: 2}) {
		t.Error("touching right edges must not collide")
	}
	if collides(a, Tile{X: 0, Y: 2, W: 2, H: 2}) {
		t.Error("touching bottom edges must not collide")
	}
	if !collides(a, Tile{X: 1, Y: 1, W: 2, H: 2}) {
		t.Error("expected diagonal overlap to collide")
	}
	if !collides(a, a) {
		t.Error("expected identity overlap to collide")
	}
}

func TestTileRect(t *testing.T) {
	spec := GridSpec{Columns: 12, Gap: 1}

	r := TileRect(Tile{X: 1, Y: 2, W: 3, H: 2}, spec, 120, 4)
	want := Rect{X: 11, Y: 9, W: 29, H: 7}
	if r != want {
		t.Errorf("expected %+v, got %+v", want, r)
	}

	if got := TileRect(Tile{W: 2, H: 2}, GridSpec{}, 120, 4); got != (Rect{}) {
		t.Errorf("expected zero rect without columns, got %+v", got)
	}
}
