package sash

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TeaHost is a Host that renders into a bubbletea program. Present
// serializes the viewport to a styled string which View serves; bubbletea's
// own renderer handles the terminal diffing.
type TeaHost struct {
	width  int
	height int
	view   *Buffer
	nodes  map[*Node]struct{}
	focus  *Node
	styles map[Style]lipgloss.Style
	frame  string
}

// NewTeaHost creates a host with the given initial size.
func NewTeaHost(width, height int) *TeaHost {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &TeaHost{
		width:  width,
		height: height,
		view:   NewBuffer(width, height),
		nodes:  make(map[*Node]struct{}),
		styles: make(map[Style]lipgloss.Style),
	}
}

// SetSize resizes the viewport. Call from the update loop on
// tea.WindowSizeMsg, paired with Window.Resize.
func (h *TeaHost) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	h.width, h.height = width, height
	h.view.Resize(width, height)
}

func (h *TeaHost) CreateNode() (*Node, error) {
	n := &Node{Buf: GetBuffer(h.width, 1), index: -1, slot: -1}
	return n, nil
}

func (h *TeaHost) DestroyNode(n *Node) {
	if n.Buf != nil {
		PutBuffer(n.Buf)
		n.Buf = nil
	}
	delete(h.nodes, n)
	if h.focus == n {
		h.focus = nil
	}
}

func (h *TeaHost) Attach(n *Node) {
	h.nodes[n] = struct{}{}
}

func (h *TeaHost) Detach(n *Node) {
	delete(h.nodes, n)
}

func (h *TeaHost) Attached(n *Node) bool {
	_, ok := h.nodes[n]
	return ok
}

func (h *TeaHost) Focus(n *Node) {
	h.focus = n
}

func (h *TeaHost) Viewport() *Buffer {
	return h.view
}

func (h *TeaHost) Extent() int {
	return h.height
}

func (h *TeaHost) Width() int {
	return h.width
}

// Present renders the composed viewport to the frame string.
func (h *TeaHost) Present() {
	h.frame = h.render()
}

// Frame returns the last presented frame, for tea.Model View methods.
func (h *TeaHost) Frame() string {
	return h.frame
}

// render serializes the viewport buffer, batching runs of identically
// styled cells into single lipgloss renders.
func (h *TeaHost) render() string {
	var sb strings.Builder
	sb.Grow(h.width * h.height * 2)
	var run strings.Builder

	for y := 0; y < h.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run.Reset()
		var runStyle Style
		for x := 0; x < h.width; x++ {
			cell := h.view.Get(x, y)
			if cell.Rune == 0 {
				// Placeholder behind a wide rune.
				continue
			}
			if run.Len() > 0 && !cell.Style.Equal(runStyle) {
				h.flushRun(&sb, run.String(), runStyle)
				run.Reset()
			}
			if run.Len() == 0 {
				runStyle = cell.Style
			}
			run.WriteRune(cell.Rune)
		}
		if run.Len() > 0 {
			h.flushRun(&sb, run.String(), runStyle)
			run.Reset()
		}
	}
	return sb.String()
}

func (h *TeaHost) flushRun(sb *strings.Builder, text string, style Style) {
	if style.Equal(DefaultStyle()) {
		sb.WriteString(text)
		return
	}
	sb.WriteString(h.styleFor(style).Render(text))
}

// styleFor maps a cell style to a cached lipgloss style.
func (h *TeaHost) styleFor(s Style) lipgloss.Style {
	if ls, ok := h.styles[s]; ok {
		return ls
	}
	ls := lipgloss.NewStyle()
	if fg, ok := lipglossColor(s.FG); ok {
		ls = ls.Foreground(fg)
	}
	if bg, ok := lipglossColor(s.BG); ok {
		ls = ls.Background(bg)
	}
	if s.Attr.Has(AttrBold) {
		ls = ls.Bold(true)
	}
	if s.Attr.Has(AttrDim) {
		ls = ls.Faint(true)
	}
	if s.Attr.Has(AttrItalic) {
		ls = ls.Italic(true)
	}
	if s.Attr.Has(AttrUnderline) {
		ls = ls.Underline(true)
	}
	if s.Attr.Has(AttrBlink) {
		ls = ls.Blink(true)
	}
	if s.Attr.Has(AttrInverse) {
		ls = ls.Reverse(true)
	}
	if s.Attr.Has(AttrStrikethrough) {
		ls = ls.Strikethrough(true)
	}
	h.styles[s] = ls
	return ls
}

func lipglossColor(c Color) (lipgloss.TerminalColor, bool) {
	switch c.Mode {
	case Color16, Color256:
		return lipgloss.Color(strconv.Itoa(int(c.Index))), true
	case ColorRGB:
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), true
	}
	return nil, false
}

// frameMsg signals a scheduled pass to the update loop.
type frameMsg struct{}

// WaitFrame returns a command that delivers a frame message the next time
// the window schedules a pass. Re-issue it from Update after each frame.
func WaitFrame(w *Window) tea.Cmd {
	return func() tea.Msg {
		<-w.Wake()
		return frameMsg{}
	}
}

// TeaModel adapts a Window and TeaHost to bubbletea's Model. Embed it or
// use it directly for single-window programs.
type TeaModel struct {
	Host *TeaHost
	Win  *Window

	// WheelLines is the scroll distance per wheel tick, default 3.
	WheelLines int
	// OnKey runs before navigation dispatch; return true to consume.
	OnKey func(tea.KeyMsg) bool
}

// NewTeaModel wires a window to its tea host.
func NewTeaModel(host *TeaHost, win *Window) TeaModel {
	return TeaModel{Host: host, Win: win, WheelLines: 3}
}

func (m TeaModel) Init() tea.Cmd {
	m.Win.Mount()
	return WaitFrame(m.Win)
}

func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Host.SetSize(msg.Width, msg.Height)
		m.Win.Resize(msg.Height)
		m.Win.Invalidate()

	case tea.KeyMsg:
		if m.OnKey != nil && m.OnKey(msg) {
			return m, nil
		}
		if msg.Type == tea.KeyCtrlC {
			m.Win.Unmount()
			return m, tea.Quit
		}
		if k, ok := TranslateKeyMsg(msg); ok {
			m.Win.HandleKey(VimKey(k))
		}

	case tea.MouseMsg:
		lines := m.WheelLines
		if lines <= 0 {
			lines = 3
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.Win.ScrollBy(-lines)
		case tea.MouseButtonWheelDown:
			m.Win.ScrollBy(lines)
		}

	case frameMsg:
		m.Win.RunFrame()
		return m, WaitFrame(m.Win)
	}
	return m, nil
}

func (m TeaModel) View() string {
	return m.Host.Frame()
}

// TranslateKeyMsg maps a bubbletea key message to a Key.
func TranslateKeyMsg(msg tea.KeyMsg) (Key, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return Key{Code: KeyUp}, true
	case tea.KeyDown:
		return Key{Code: KeyDown}, true
	case tea.KeyLeft:
		return Key{Code: KeyLeft}, true
	case tea.KeyRight:
		return Key{Code: KeyRight}, true
	case tea.KeyPgUp:
		return Key{Code: KeyPageUp}, true
	case tea.KeyPgDown:
		return Key{Code: KeyPageDown}, true
	case tea.KeyHome:
		return Key{Code: KeyHome}, true
	case tea.KeyEnd:
		return Key{Code: KeyEnd}, true
	case tea.KeyEnter:
		return Key{Code: KeyEnter}, true
	case tea.KeyEsc:
		return Key{Code: KeyEscape}, true
	case tea.KeyTab:
		return Key{Code: KeyTab}, true
	case tea.KeyBackspace:
		return Key{Code: KeyBackspace}, true
	case tea.KeyCtrlD:
		return Key{Code: KeyCtrlD}, true
	case tea.KeyCtrlU:
		return Key{Code: KeyCtrlU}, true
	case tea.KeySpace:
		return Key{Code: KeyRune, Rune: ' '}, true
	case tea.KeyRunes:
		if len(msg.Runes) > 0 {
			return Key{Code: KeyRune, Rune: msg.Runes[0]}, true
		}
	}
	return Key{}, false
}
