package sash

import (
	"fmt"
	"sync"
	"time"
)

const statsSamples = 32

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// statsTarget is one watched window.
type statsTarget struct {
	name string
	win  *Window
}

// StatsPanel renders engine counters for a set of windows: pass counts,
// coalesced invalidations, pool occupancy and reuse ratio, and a heat
// sparkline of recent pass durations. Build it into a dashboard tile and
// feed it with Sample from a ticker.
type StatsPanel struct {
	mu      sync.Mutex
	screen  *Screen
	targets []statsTarget
	durs    map[string][]time.Duration
	win     *Window
}

// NewStatsPanel creates a panel. screen may be nil when flush stats are not
// wanted.
func NewStatsPanel(screen *Screen) *StatsPanel {
	return &StatsPanel{screen: screen, durs: make(map[string][]time.Duration)}
}

// Watch adds a named window to the readout.
func (s *StatsPanel) Watch(name string, w *Window) *StatsPanel {
	s.mu.Lock()
	s.targets = append(s.targets, statsTarget{name: name, win: w})
	s.mu.Unlock()
	return s
}

// Sample records each watched window's latest pass duration and refreshes
// the panel. Call it on a ticker.
func (s *StatsPanel) Sample() {
	s.mu.Lock()
	for _, t := range s.targets {
		d := t.win.Stats().LastPassDuration
		ring := append(s.durs[t.name], d)
		if len(ring) > statsSamples {
			ring = ring[len(ring)-statsSamples:]
		}
		s.durs[t.name] = ring
	}
	win := s.win
	s.mu.Unlock()
	if win != nil {
		win.Refresh()
	}
}

// rowsPerTarget is the counters row plus the sparkline row.
const rowsPerTarget = 2

func (s *StatsPanel) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.targets) * rowsPerTarget
	if s.screen != nil {
		n++
	}
	return n
}

// Builder returns the panel builder for a registry.
func (s *StatsPanel) Builder() PanelBuilder {
	return func(host Host) (*Window, error) {
		win, err := New(Config{
			Host:        host,
			ItemHeight:  1,
			Count:       s.rowCount,
			Render:      s.renderRow,
			NoScrollbar: true,
			NoKeyboard:  true,
		})
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.win = win
		s.mu.Unlock()
		return win, nil
	}
}

// renderRow draws one readout row. Rows alternate counters and sparkline
// per target, with the screen flush row last.
func (s *StatsPanel) renderRow(n *Node, i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	width := n.Buf.Width()
	ti := i / rowsPerTarget
	if ti < len(s.targets) {
		t := s.targets[ti]
		if i%rowsPerTarget == 0 {
			s.renderCounters(n, t, width)
		} else {
			s.renderSpark(n, t, width)
		}
		return nil
	}
	if s.screen != nil {
		fs := s.screen.LastFlushStats()
		line := fmt.Sprintf("flush  dirty %d  changed %d", fs.DirtyRows, fs.ChangedRows)
		n.Buf.WriteStringFast(0, 0, line, ThemeDark.Muted, width)
	}
	return nil
}

func (s *StatsPanel) renderCounters(n *Node, t statsTarget, width int) {
	st := t.win.Stats()
	reuse := 0
	if total := st.Pool.KeyHits + st.Pool.FreeHits + st.Pool.Creates; total > 0 {
		reuse = 100 * (st.Pool.KeyHits + st.Pool.FreeHits) / total
	}
	x := n.Buf.WriteStringFast(0, 0, t.name, ThemeDark.Title, width)
	line := fmt.Sprintf("  passes %d  skipped %d  bound %d  free %d  reuse %d%%",
		st.Passes, st.Coalesced, st.BoundNodes, st.FreeNodes, reuse)
	n.Buf.WriteStringFast(x, 0, line, ThemeDark.Base, width-x)
}

func (s *StatsPanel) renderSpark(n *Node, t statsTarget, width int) {
	ring := s.durs[t.name]
	if len(ring) == 0 {
		n.Buf.WriteStringFast(0, 0, "  no samples", ThemeDark.Muted, width)
		return
	}
	var maxDur time.Duration
	for _, d := range ring {
		if d > maxDur {
			maxDur = d
		}
	}
	x := n.Buf.WriteStringFast(0, 0, "  ", ThemeDark.Base, width)
	for _, d := range ring {
		if x >= width-10 {
			break
		}
		t := 0.0
		if maxDur > 0 {
			t = float64(d) / float64(maxDur)
		}
		idx := int(t * float64(len(sparkRunes)-1))
		style := DefaultStyle().Foreground(HeatColor(t))
		n.Buf.Set(x, 0, NewCell(sparkRunes[idx], style))
		x++
	}
	last := ring[len(ring)-1]
	n.Buf.WriteStringFast(x+1, 0, last.Round(time.Microsecond).String(), ThemeDark.Muted, width-x-1)
}
