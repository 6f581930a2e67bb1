package sash

import (
	"os"
	"sync"
	"sync/atomic"
)

const (
	evKey = iota
	evResize
	evWake
)

type appEvent struct {
	kind int
	key  Key
}

// App ties a Screen, a key decoder, and one or more Windows into a running
// program. All window passes, key dispatch, and resize relayout happen on
// the Run goroutine, so handlers can touch windows and hosts freely.
type App struct {
	screen  *Screen
	decoder *KeyDecoder

	windows  []*Window
	focused  *Window
	bindings map[Key]func()
	onResize func(width, height int)
	onKey    func(Key) bool
	onFrame  func()
	vimKeys  bool

	events  chan appEvent
	quit    chan struct{}
	once    sync.Once
	running atomic.Bool
	err     error
}

// NewApp creates an application reading keys from stdin.
func NewApp() (*App, error) {
	screen, err := NewScreen(nil)
	if err != nil {
		return nil, err
	}
	return &App{
		screen:   screen,
		decoder:  NewKeyDecoder(os.Stdin),
		bindings: make(map[Key]func()),
		events:   make(chan appEvent, 64),
		quit:     make(chan struct{}),
	}, nil
}

// Screen returns the screen for host construction.
func (a *App) Screen() *Screen {
	return a.screen
}

// Size returns the current screen size.
func (a *App) Size() Size {
	return a.screen.Size()
}

// Attach registers a window so the app drives its frames. Attach before
// Run, or from a handler on the Run goroutine.
func (a *App) Attach(w *Window) *App {
	a.windows = append(a.windows, w)
	if a.focused == nil {
		a.focused = w
	}
	if a.running.Load() {
		go a.forwardWakes(w)
	}
	return a
}

// Detach removes a window from the frame loop and drops focus if it held
// it. Unmounting the window remains the caller's job.
func (a *App) Detach(w *Window) {
	for i, x := range a.windows {
		if x == w {
			a.windows = append(a.windows[:i], a.windows[i+1:]...)
			break
		}
	}
	if a.focused == w {
		a.focused = nil
	}
}

// Focus directs navigation keys at the given window.
func (a *App) Focus(w *Window) {
	a.focused = w
}

// Focused returns the window currently receiving navigation keys.
func (a *App) Focused() *Window {
	return a.focused
}

// Bind registers an exact key binding, dispatched before window navigation.
func (a *App) Bind(k Key, fn func()) *App {
	a.bindings[k] = fn
	return a
}

// BindRune registers a binding for a printable key.
func (a *App) BindRune(r rune, fn func()) *App {
	return a.Bind(Key{Code: KeyRune, Rune: r}, fn)
}

// WithVimKeys translates j/k/g/G and ctrl-d/ctrl-u into navigation before
// window dispatch.
func (a *App) WithVimKeys() *App {
	a.vimKeys = true
	return a
}

// OnResize registers a relayout callback, invoked on the Run goroutine with
// the new screen size before windows re-materialize.
func (a *App) OnResize(fn func(width, height int)) *App {
	a.onResize = fn
	return a
}

// OnKey registers a fallback for keys no binding or window consumed.
func (a *App) OnKey(fn func(Key) bool) *App {
	a.onKey = fn
	return a
}

// OnFrame registers a hook that runs after each batch of window frames, on
// the Run goroutine. Overlays like toasts draw here.
func (a *App) OnFrame(fn func()) *App {
	a.onFrame = fn
	return a
}

// Run enters raw mode and blocks until Stop. Windows must be mounted by the
// caller before or during Run (a resize callback is a good place).
func (a *App) Run() error {
	a.running.Store(true)

	if err := a.screen.EnterRawMode(); err != nil {
		return err
	}
	defer a.screen.ExitRawMode()

	go a.forwardResize()
	for _, w := range a.windows {
		go a.forwardWakes(w)
	}
	go a.readKeys()

	// Initial layout and first frames.
	if a.onResize != nil {
		size := a.screen.Size()
		a.onResize(size.Width, size.Height)
	}
	a.runFrames()

	for {
		select {
		case <-a.quit:
			return a.err
		case ev := <-a.events:
			switch ev.kind {
			case evKey:
				a.dispatch(ev.key)
			case evResize:
				if a.onResize != nil {
					size := a.screen.Size()
					a.onResize(size.Width, size.Height)
				}
				a.runFrames()
			case evWake:
				a.runFrames()
			}
		}
	}
}

// RequestFrame asks for a frame batch without invalidating any window,
// letting overlays redraw. Safe to call from any goroutine.
func (a *App) RequestFrame() {
	select {
	case a.events <- appEvent{kind: evWake}:
	default:
	}
}

// Stop ends Run. Safe to call from any goroutine or key handler.
func (a *App) Stop() {
	a.running.Store(false)
	a.once.Do(func() { close(a.quit) })
	// Unblock the key reader.
	os.Stdin.Close()
}

func (a *App) runFrames() {
	for _, w := range a.windows {
		w.RunFrame()
	}
	if a.onFrame != nil {
		a.onFrame()
	}
}

// dispatch routes one key: exact bindings first, then the focused window's
// navigation, then the fallback handler.
func (a *App) dispatch(k Key) {
	if fn, ok := a.bindings[k]; ok {
		fn()
		return
	}
	nav := k
	if a.vimKeys {
		nav = VimKey(k)
	}
	if a.focused != nil && a.focused.HandleKey(nav) {
		return
	}
	if a.onKey != nil {
		a.onKey(k)
	}
}

func (a *App) readKeys() {
	for {
		k, err := a.decoder.Next()
		if err != nil {
			if a.running.Load() {
				a.err = err
				a.once.Do(func() { close(a.quit) })
			}
			return
		}
		select {
		case a.events <- appEvent{kind: evKey, key: k}:
		case <-a.quit:
			return
		}
	}
}

func (a *App) forwardResize() {
	for {
		select {
		case <-a.screen.ResizeChan():
			select {
			case a.events <- appEvent{kind: evResize}:
			case <-a.quit:
				return
			}
		case <-a.quit:
			return
		}
	}
}

// forwardWakes turns scheduler wakes into frame events. A window with
// nothing pending ignores the resulting RunFrame, so over-delivery is
// harmless.
func (a *App) forwardWakes(w *Window) {
	for {
		select {
		case <-w.Wake():
			select {
			case a.events <- appEvent{kind: evWake}:
			case <-a.quit:
				return
			}
		case <-a.quit:
			return
		}
	}
}
