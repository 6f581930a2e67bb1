package sash

import (
	"bytes"
	"strings"
	"testing"
)

func TestStatsPanelRowCount(t *testing.T) {
	target, err := New(Config{
		Host:       newTestHost(30, 5),
		ItemHeight: 1,
		Count:      func() int { return 10 },
		Render:     rowRenderer,
		NoKeyboard: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := NewStatsPanel(nil)
	if got := s.rowCount(); got != 0 {
		t.Errorf("expected 0 rows with no targets, got %d", got)
	}
	s.Watch("a", target)
	if got := s.rowCount(); got != 2 {
		t.Errorf("expected 2 rows per target, got %d", got)
	}
	s.Watch("b", target)
	if got := s.rowCount(); got != 4 {
		t.Errorf("expected 4 rows, got %d", got)
	}

	screen, err := NewScreen(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	withFlush := NewStatsPanel(screen).Watch("a", target)
	if got := withFlush.rowCount(); got != 3 {
		t.Errorf("expected a flush row when screen stats are on, got %d rows", got)
	}
}

func TestStatsPanelRender(t *testing.T) {
	screen, err := NewScreen(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	target, err := New(Config{
		Host:        newTestHost(30, 5),
		ItemHeight:  1,
		Count:       func() int { return 100 },
		Render:      rowRenderer,
		NoScrollbar: true,
		NoKeyboard:  true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	target.Mount()
	defer target.Unmount()
	target.RunFrame()

	s := NewStatsPanel(screen).Watch("feed", target)
	panelHost := newTestHost(80, 6)
	win, err := s.Builder()(panelHost)
	if err != nil {
		t.Fatalf("Builder failed: %v", err)
	}
	win.Mount()
	defer win.Unmount()
	win.RunFrame()

	view := panelHost.view
	if got := view.GetLine(0); !strings.HasPrefix(got, "feed  passes 1") {
		t.Errorf("expected the counters row, got %q", got)
	}
	if got := view.GetLine(1); got != "  no samples" {
		t.Errorf("expected an empty sparkline, got %q", got)
	}
	if got := view.GetLine(2); got != "flush  dirty 0  changed 0" {
		t.Errorf("expected the flush row, got %q", got)
	}

	s.Sample()
	win.RunFrame()

	if got := view.GetLine(1); got == "  no samples" {
		t.Error("expected a sparkline after sampling")
	}
	if r := view.Get(2, 1).Rune; !strings.ContainsRune(string(sparkRunes), r) {
		t.Errorf("expected a spark rune, got %q", r)
	}
}

func TestStatsPanelRingCap(t *testing.T) {
	target, err := New(Config{
		Host:       newTestHost(30, 5),
		ItemHeight: 1,
		Count:      func() int { return 10 },
		Render:     rowRenderer,
		NoKeyboard: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := NewStatsPanel(nil).Watch("w", target)
	for i := 0; i < statsSamples+8; i++ {
		s.Sample()
	}
	if got := len(s.durs["w"]); got != statsSamples {
		t.Errorf("expected the ring capped at %d, got %d", statsSamples, got)
	}
}
