package sash

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTeaHostRender(t *testing.T) {
	h := NewTeaHost(10, 3)
	h.Viewport().WriteStringFast(0, 0, "plain", DefaultStyle(), 10)
	h.Viewport().WriteStringFast(0, 1, "alert", ThemeDark.Error, 10)
	h.Viewport().WriteStringFast(0, 2, "本", DefaultStyle(), 10)

	if h.Frame() != "" {
		t.Error("expected an empty frame before present")
	}
	h.Present()

	lines := strings.Split(h.Frame(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 frame lines, got %d", len(lines))
	}
	if lines[0] != "plain     " {
		t.Errorf("expected a raw default-styled row, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "alert") {
		t.Errorf("expected the styled row text, got %q", lines[1])
	}
	if lines[2] != "本"+strings.Repeat(" ", 8) {
		t.Errorf("expected the wide rune placeholder skipped, got %q", lines[2])
	}

	if len(h.styles) != 1 {
		t.Errorf("expected one cached style, got %d", len(h.styles))
	}
	h.Present()
	if len(h.styles) != 1 {
		t.Errorf("expected the style cache reused, got %d entries", len(h.styles))
	}
}

func TestTeaHostSetSize(t *testing.T) {
	h := NewTeaHost(0, -2)
	if h.Width() != 1 || h.Extent() != 1 {
		t.Errorf("expected degenerate sizes clamped to 1x1, got %dx%d", h.Width(), h.Extent())
	}

	h.SetSize(30, 8)
	if h.Width() != 30 || h.Extent() != 8 {
		t.Errorf("expected 30x8, got %dx%d", h.Width(), h.Extent())
	}
	if h.Viewport().Width() != 30 || h.Viewport().Height() != 8 {
		t.Error("expected the viewport buffer resized")
	}

	h.SetSize(0, 0)
	if h.Width() != 1 || h.Extent() != 1 {
		t.Errorf("expected resize clamped to 1x1, got %dx%d", h.Width(), h.Extent())
	}
}

func TestTeaHostNodes(t *testing.T) {
	h := NewTeaHost(20, 5)
	n, err := h.CreateNode()
	if err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}
	if n.Buf == nil || n.Buf.Width() != 20 {
		t.Errorf("expected a 20-wide node buffer, got %v", n.Buf)
	}

	h.Attach(n)
	if !h.Attached(n) {
		t.Error("expected node attached")
	}
	h.Focus(n)
	h.DestroyNode(n)
	if h.Attached(n) {
		t.Error("expected destroyed node off the surface")
	}
	if h.focus != nil {
		t.Error("expected focus cleared with the node")
	}
	if n.Buf != nil {
		t.Error("expected the node buffer released")
	}
}

func TestTranslateKeyMsg(t *testing.T) {
	cases := []struct {
		name string
		msg  tea.KeyMsg
		want Key
		ok   bool
	}{
		{"Up", tea.KeyMsg{Type: tea.KeyUp}, Key{Code: KeyUp}, true},
		{"Down", tea.KeyMsg{Type: tea.KeyDown}, Key{Code: KeyDown}, true},
		{"PageUp", tea.KeyMsg{Type: tea.KeyPgUp}, Key{Code: KeyPageUp}, true},
		{"PageDown", tea.KeyMsg{Type: tea.KeyPgDown}, Key{Code: KeyPageDown}, true},
		{"Home", tea.KeyMsg{Type: tea.KeyHome}, Key{Code: KeyHome}, true},
		{"End", tea.KeyMsg{Type: tea.KeyEnd}, Key{Code: KeyEnd}, true},
		{"Enter", tea.KeyMsg{Type: tea.KeyEnter}, Key{Code: KeyEnter}, true},
		{"Escape", tea.KeyMsg{Type: tea.KeyEsc}, Key{Code: KeyEscape}, true},
		{"CtrlD", tea.KeyMsg{Type: tea.KeyCtrlD}, Key{Code: KeyCtrlD}, true},
		{"Space", tea.KeyMsg{Type: tea.KeySpace}, Key{Code: KeyRune, Rune: ' '}, true},
		{"Rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, Key{Code: KeyRune, Rune: 'j'}, true},
		{"EmptyRunes", tea.KeyMsg{Type: tea.KeyRunes}, Key{}, false},
		{"Unmapped", tea.KeyMsg{Type: tea.KeyCtrlC}, Key{}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			k, ok := TranslateKeyMsg(c.msg)
			if ok != c.ok {
				t.Fatalf("expected ok=%v, got %v", c.ok, ok)
			}
			if k != c.want {
				t.Errorf("expected %+v, got %+v", c.want, k)
			}
		})
	}
}

func TestTeaModel(t *testing.T) {
	host := NewTeaHost(20, 6)
	win, err := New(Config{
		Host:        host,
		ItemHeight:  1,
		Count:       func() int { return 100 },
		Render:      rowRenderer,
		NoScrollbar: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m := NewTeaModel(host, win)

	// Init mounts and arms the frame wait; the mount pass is already
	// pending, so the command yields immediately.
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected a frame command from Init")
	}
	if _, ok := cmd().(frameMsg); !ok {
		t.Fatal("expected a frame message")
	}

	model, next := m.Update(frameMsg{})
	m = model.(TeaModel)
	if next == nil {
		t.Error("expected the frame wait re-armed")
	}
	if !strings.Contains(host.Frame(), "row 0") {
		t.Errorf("expected the first row presented, got %q", host.Frame())
	}

	m.Update(tea.WindowSizeMsg{Width: 30, Height: 8})
	if host.Width() != 30 || host.Extent() != 8 {
		t.Errorf("expected the host resized to 30x8, got %dx%d", host.Width(), host.Extent())
	}
	win.RunFrame()
	if got := strings.Count(host.Frame(), "\n"); got != 7 {
		t.Errorf("expected 8 frame rows, got %d newlines", got)
	}
	if !strings.Contains(host.Frame(), "row 7") {
		t.Error("expected the taller viewport to show more rows")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	win.RunFrame()
	if got := win.FocusedIndex(); got != 0 {
		t.Errorf("expected arrow keys to navigate, got focus %d", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	win.RunFrame()
	if got := win.FocusedIndex(); got != 1 {
		t.Errorf("expected vim keys to navigate, got focus %d", got)
	}

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	win.RunFrame()
	if got := win.ScrollOffset(); got != 3 {
		t.Errorf("expected a wheel tick to scroll 3 lines, got %d", got)
	}
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	win.RunFrame()
	if got := win.ScrollOffset(); got != 0 {
		t.Errorf("expected the wheel to scroll back, got %d", got)
	}

	m.OnKey = func(tea.KeyMsg) bool { return true }
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	win.RunFrame()
	if got := win.FocusedIndex(); got != 1 {
		t.Errorf("expected the key consumed before navigation, got focus %d", got)
	}
	m.OnKey = nil

	_, quit := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if quit == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Error("expected ctrl-c to quit")
	}
	if win.mounted {
		t.Error("expected the window unmounted on quit")
	}
}
