package sash

import (
	"fmt"
	"sort"
	"sync"
)

// PanelBuilder constructs the window for one dashboard panel on the given
// host.
type PanelBuilder func(host Host) (*Window, error)

// PanelRegistry maps panel kinds to builders. Registration normally happens
// at init time; lookups are safe from any goroutine.
type PanelRegistry struct {
	mu       sync.RWMutex
	builders map[string]PanelBuilder
}

// NewPanelRegistry creates an empty registry.
func NewPanelRegistry() *PanelRegistry {
	return &PanelRegistry{builders: make(map[string]PanelBuilder)}
}

// Register binds a kind to its builder, replacing any previous binding.
func (r *PanelRegistry) Register(kind string, b PanelBuilder) {
	r.mu.Lock()
	r.builders[kind] = b
	r.mu.Unlock()
}

// Kinds returns the registered kinds, sorted.
func (r *PanelRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs a window for the kind. Unknown kinds get a placeholder
// panel naming the missing kind, so a saved layout with a stale kind still
// renders.
func (r *PanelRegistry) Build(kind string, host Host) (*Window, error) {
	r.mu.RLock()
	b, ok := r.builders[kind]
	r.mu.RUnlock()
	if !ok {
		b = placeholderPanel(kind)
	}
	return b(host)
}

// placeholderPanel renders a single row naming the unregistered kind.
func placeholderPanel(kind string) PanelBuilder {
	return func(host Host) (*Window, error) {
		msg := fmt.Sprintf("unregistered panel kind: %q", kind)
		return New(Config{
			Host:       host,
			ItemHeight: 1,
			Count:      func() int { return 1 },
			Render: func(n *Node, i int) error {
				n.Buf.WriteStringFast(0, 0, msg, ThemeDark.Warning, n.Buf.Width())
				return nil
			},
			NoScrollbar: true,
			NoKeyboard:  true,
		})
	}
}

// panel pairs a tile's host with its window.
type panel struct {
	host *ScreenHost
	win  *Window
}

// Dashboard arranges panels on a screen using the layout grid. Each tile
// owns a ScreenHost region and a window built from the registry. Not safe
// for concurrent use; drive it from the app goroutine.
type Dashboard struct {
	screen    *Screen
	registry  *PanelRegistry
	spec      GridSpec
	rowHeight int
	chrome    bool
	theme     Theme

	tiles  []Tile
	kinds  map[string]string
	panels map[string]*panel

	width  int
	height int
}

// NewDashboard creates a dashboard placing panels on the screen. rowHeight
// is the terminal height of one grid row.
func NewDashboard(screen *Screen, registry *PanelRegistry, spec GridSpec, rowHeight int) *Dashboard {
	if rowHeight < 2 {
		rowHeight = 2
	}
	return &Dashboard{
		screen:    screen,
		registry:  registry,
		spec:      spec,
		rowHeight: rowHeight,
		kinds:     make(map[string]string),
		panels:    make(map[string]*panel),
	}
}

// WithChrome draws a border and title around every tile, with panels inset
// one cell on each side to make room. Chrome owns the whole surface: layout
// changes clear the screen and repaint.
func (d *Dashboard) WithChrome(theme Theme) *Dashboard {
	d.chrome = true
	d.theme = theme
	d.relayout()
	return d
}

// AddTile places a new w by h tile, builds its panel, and mounts it. The
// tile lands in the first free slot.
func (d *Dashboard) AddTile(id, kind string, w, h int) error {
	if _, exists := d.panels[id]; exists {
		return fmt.Errorf("dashboard: duplicate tile id %q", id)
	}
	if w < 1 || h < 1 || w > d.spec.Columns {
		return fmt.Errorf("dashboard: tile %q has invalid size %dx%d", id, w, h)
	}
	x, y := PlaceTile(d.tiles, w, h, d.spec)

	host := NewScreenHost(d.screen, 0, 0, 1, 1)
	win, err := d.registry.Build(kind, host)
	if err != nil {
		host.Close()
		return fmt.Errorf("dashboard: building tile %q: %w", id, err)
	}

	d.tiles = append(d.tiles, Tile{ID: id, X: x, Y: y, W: w, H: h})
	d.kinds[id] = kind
	d.panels[id] = &panel{host: host, win: win}
	win.Mount()
	d.relayout()
	return nil
}

// RemoveTile unmounts and discards a tile, compacting the remainder.
func (d *Dashboard) RemoveTile(id string) {
	p, ok := d.panels[id]
	if !ok {
		return
	}
	p.win.Unmount()
	p.host.Close()
	delete(d.panels, id)
	delete(d.kinds, id)
	for i := range d.tiles {
		if d.tiles[i].ID == id {
			d.tiles = append(d.tiles[:i], d.tiles[i+1:]...)
			break
		}
	}
	Compact(d.tiles, d.spec)
	d.relayout()
}

// LockTile pins or unpins a tile against compaction.
func (d *Dashboard) LockTile(id string, locked bool) {
	for i := range d.tiles {
		if d.tiles[i].ID == id {
			d.tiles[i].Locked = locked
			return
		}
	}
}

// MoveTile drops a tile at a new grid position and reflows the others
// around it.
func (d *Dashboard) MoveTile(id string, x, y int) {
	for i := range d.tiles {
		if d.tiles[i].ID == id {
			d.tiles[i].X = max(0, min(x, d.spec.Columns-d.tiles[i].W))
			d.tiles[i].Y = max(0, y)
			break
		}
	}
	Reflow(d.tiles, d.spec, id)
	d.relayout()
}

// Layout recomputes every panel's screen rectangle for the given screen
// size. Call it from the app's resize hook.
func (d *Dashboard) Layout(width, height int) {
	d.width, d.height = width, height
	Compact(d.tiles, d.spec)
	d.relayout()
}

func (d *Dashboard) relayout() {
	if d.width < 1 {
		return
	}
	if d.chrome {
		d.screen.Clear()
	}
	for _, t := range d.tiles {
		p := d.panels[t.ID]
		if p == nil {
			continue
		}
		r := TileRect(t, d.spec, d.width, d.rowHeight)
		if d.chrome {
			r = d.drawChrome(t, r)
		}
		if r.W < 1 || r.H < 1 {
			continue
		}
		p.host.SetRect(r.X, r.Y, r.W, r.H)
		p.win.Resize(r.H)
		p.win.Invalidate()
	}
}

// drawChrome draws the tile border with the tile id as its title, returning
// the inner rect the panel renders into. Tiles too small for a border keep
// the full rect.
func (d *Dashboard) drawChrome(t Tile, r Rect) Rect {
	if r.W < 3 || r.H < 3 {
		return r
	}
	buf := d.screen.Buffer()
	buf.DrawBorder(r.X, r.Y, r.W, r.H, BorderSingle, d.theme.Border)
	buf.WriteStringFast(r.X+1, r.Y, " "+t.ID+" ", d.theme.Title, r.W-2)
	return Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
}

// Tiles returns a copy of the current layout, top-left first.
func (d *Dashboard) Tiles() []Tile {
	out := make([]Tile, len(d.tiles))
	copy(out, d.tiles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Window returns the window for a tile id, or nil.
func (d *Dashboard) Window(id string) *Window {
	if p, ok := d.panels[id]; ok {
		return p.win
	}
	return nil
}

// Windows returns every panel window in layout order, for App.Attach.
func (d *Dashboard) Windows() []*Window {
	tiles := d.Tiles()
	out := make([]*Window, 0, len(tiles))
	for _, t := range tiles {
		if p, ok := d.panels[t.ID]; ok {
			out = append(out, p.win)
		}
	}
	return out
}

// WindowAfter returns the next window in layout order after cur, wrapping
// around. With no panels it returns nil.
func (d *Dashboard) WindowAfter(cur *Window) *Window {
	wins := d.Windows()
	if len(wins) == 0 {
		return nil
	}
	for i, w := range wins {
		if w == cur {
			return wins[(i+1)%len(wins)]
		}
	}
	return wins[0]
}

// Unmount tears down every panel.
func (d *Dashboard) Unmount() {
	for id, p := range d.panels {
		p.win.Unmount()
		p.host.Close()
		delete(d.panels, id)
		delete(d.kinds, id)
	}
	d.tiles = nil
}
