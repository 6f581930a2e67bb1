package sash

import "testing"

// newDispatchFixture builds an app with one mounted window that has already
// completed a pass, so navigation keys land.
func newDispatchFixture(t *testing.T) (*App, *Window, *testHost) {
	t.Helper()
	app, err := NewApp()
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	h := newTestHost(20, 10)
	w, err := New(Config{
		Host:       h,
		ItemHeight: 1,
		Count:      func() int { return 100 },
		Render:     rowRenderer,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.Mount()
	t.Cleanup(w.Unmount)
	w.RunFrame()
	app.Attach(w)
	return app, w, h
}

func TestAppFocusTracking(t *testing.T) {
	app, err := NewApp()
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	h := newTestHost(20, 10)
	w1, _ := New(Config{Host: h, ItemHeight: 1, Count: func() int { return 1 }, Render: rowRenderer})
	w2, _ := New(Config{Host: h, ItemHeight: 1, Count: func() int { return 1 }, Render: rowRenderer})

	app.Attach(w1).Attach(w2)
	if app.Focused() != w1 {
		t.Error("expected the first attached window focused")
	}
	app.Focus(w2)
	if app.Focused() != w2 {
		t.Error("expected focus to move")
	}
}

func TestAppDetach(t *testing.T) {
	app, w, h := newDispatchFixture(t)

	app.Detach(w)
	if app.Focused() != nil {
		t.Error("expected focus dropped with the window")
	}
	w.Invalidate()
	app.runFrames()
	if h.presents != 1 {
		t.Errorf("expected no frame for a detached window, got %d presents", h.presents)
	}

	// Reattach picks the pending pass back up.
	app.Attach(w)
	if app.Focused() != w {
		t.Error("expected the reattached window focused")
	}
	app.runFrames()
	if h.presents != 2 {
		t.Errorf("expected the reattached window driven, got %d presents", h.presents)
	}
}

func TestAppDispatch(t *testing.T) {
	t.Run("BindingBeforeNavigation", func(t *testing.T) {
		app, w, _ := newDispatchFixture(t)
		fired := false
		app.Bind(Key{Code: KeyDown}, func() { fired = true })

		app.dispatch(Key{Code: KeyDown})
		w.RunFrame()

		if !fired {
			t.Error("expected the binding to fire")
		}
		if got := w.FocusedIndex(); got != -1 {
			t.Errorf("expected the window untouched, got focus %d", got)
		}
	})

	t.Run("NavigationToFocusedWindow", func(t *testing.T) {
		app, w, _ := newDispatchFixture(t)
		fellThrough := false
		app.OnKey(func(Key) bool { fellThrough = true; return true })

		app.dispatch(Key{Code: KeyDown})
		w.RunFrame()

		if got := w.FocusedIndex(); got != 0 {
			t.Errorf("expected focus on the first row, got %d", got)
		}
		if fellThrough {
			t.Error("expected the window to consume the key")
		}
	})

	t.Run("FallbackForUnhandledKeys", func(t *testing.T) {
		app, _, _ := newDispatchFixture(t)
		var got Key
		app.OnKey(func(k Key) bool { got = k; return true })

		app.dispatch(Key{Code: KeyRune, Rune: 'z'})

		if got.Rune != 'z' {
			t.Errorf("expected the fallback to see 'z', got %+v", got)
		}
	})

	t.Run("VimTranslation", func(t *testing.T) {
		app, w, _ := newDispatchFixture(t)
		app.WithVimKeys()

		app.dispatch(Key{Code: KeyRune, Rune: 'j'})
		w.RunFrame()

		if got := w.FocusedIndex(); got != 0 {
			t.Errorf("expected j to navigate down, got focus %d", got)
		}
	})

	t.Run("BindingBeatsVimTranslation", func(t *testing.T) {
		app, w, _ := newDispatchFixture(t)
		fired := false
		app.WithVimKeys().BindRune('j', func() { fired = true })

		app.dispatch(Key{Code: KeyRune, Rune: 'j'})
		w.RunFrame()

		if !fired {
			t.Error("expected the rune binding to fire")
		}
		if got := w.FocusedIndex(); got != -1 {
			t.Errorf("expected no navigation, got focus %d", got)
		}
	})

	t.Run("NoFocusedWindow", func(t *testing.T) {
		app, err := NewApp()
		if err != nil {
			t.Fatalf("NewApp failed: %v", err)
		}
		var got Key
		app.OnKey(func(k Key) bool { got = k; return true })

		app.dispatch(Key{Code: KeyDown})

		if got.Code != KeyDown {
			t.Errorf("expected the fallback to run without windows, got %+v", got)
		}
	})
}

func TestAppFrames(t *testing.T) {
	app, w, h := newDispatchFixture(t)
	frames := 0
	app.OnFrame(func() { frames++ })

	w.Invalidate()
	app.runFrames()
	if h.presents != 2 {
		t.Errorf("expected a second present, got %d", h.presents)
	}
	if frames != 1 {
		t.Errorf("expected one frame hook call, got %d", frames)
	}

	// Nothing pending: the hook still runs, the window does not.
	app.runFrames()
	if h.presents != 2 {
		t.Errorf("expected no extra present, got %d", h.presents)
	}
	if frames != 2 {
		t.Errorf("expected two frame hook calls, got %d", frames)
	}
}

func TestAppRequestFrame(t *testing.T) {
	app, err := NewApp()
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	// Far over the queue capacity; RequestFrame must never block.
	for i := 0; i < 100; i++ {
		app.RequestFrame()
	}

	count := 0
drain:
	for {
		select {
		case ev := <-app.events:
			if ev.kind != evWake {
				t.Fatalf("expected only wake events, got kind %d", ev.kind)
			}
			count++
		default:
			break drain
		}
	}
	if count != cap(app.events) {
		t.Errorf("expected the queue capped at %d, got %d", cap(app.events), count)
	}
}
