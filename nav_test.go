package sash

import "testing"

func TestNavTarget(t *testing.T) {
	visible := Range{Start: 20, End: 33}
	count := 1000

	cases := []struct {
		name    string
		key     Key
		focus   int
		target  int
		handled bool
	}{
		{"DownAdvances", Key{Code: KeyDown}, 25, 26, true},
		{"DownClampsAtLast", Key{Code: KeyDown}, 999, 999, true},
		{"DownUnfocusedPicksTop", Key{Code: KeyDown}, -1, 20, true},
		{"UpRetreats", Key{Code: KeyUp}, 25, 24, true},
		{"UpClampsAtZero", Key{Code: KeyUp}, 0, 0, true},
		{"UpUnfocusedPicksBottom", Key{Code: KeyUp}, -1, 33, true},
		{"PageDownToVisibleEnd", Key{Code: KeyPageDown}, 25, 33, true},
		{"PageUpToVisibleStart", Key{Code: KeyPageUp}, 25, 20, true},
		{"Home", Key{Code: KeyHome}, 500, 0, true},
		{"End", Key{Code: KeyEnd}, 500, 999, true},
		{"LeftUnhandled", Key{Code: KeyLeft}, 25, -1, false},
		{"RightUnhandled", Key{Code: KeyRight}, 25, -1, false},
		{"RuneUnhandled", Key{Code: KeyRune, Rune: 'x'}, 25, -1, false},
		{"EnterUnhandled", Key{Code: KeyEnter}, 25, -1, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			target, handled := navTarget(c.key, c.focus, visible, count)
			if handled != c.handled {
				t.Fatalf("expected handled=%v, got %v", c.handled, handled)
			}
			if handled && target != c.target {
				t.Errorf("expected target %d, got %d", c.target, target)
			}
		})
	}

	t.Run("EmptyCollection", func(t *testing.T) {
		for _, code := range []KeyCode{KeyDown, KeyUp, KeyPageDown, KeyPageUp, KeyHome, KeyEnd} {
			if _, handled := navTarget(Key{Code: code}, -1, EmptyRange(), 0); handled {
				t.Errorf("key %v: expected unhandled on empty collection", code)
			}
		}
	})

	t.Run("StaleRangeClamped", func(t *testing.T) {
		// The visible range can outlive a shrink; targets still clamp.
		target, handled := navTarget(Key{Code: KeyPageDown}, 2, Range{Start: 5, End: 90}, 10)
		if !handled || target != 9 {
			t.Errorf("expected 9, got %d handled=%v", target, handled)
		}
	})
}

func TestVimKey(t *testing.T) {
	cases := []struct {
		name string
		in   Key
		want Key
	}{
		{"J", Key{Code: KeyRune, Rune: 'j'}, Key{Code: KeyDown}},
		{"K", Key{Code: KeyRune, Rune: 'k'}, Key{Code: KeyUp}},
		{"LowerG", Key{Code: KeyRune, Rune: 'g'}, Key{Code: KeyHome}},
		{"UpperG", Key{Code: KeyRune, Rune: 'G'}, Key{Code: KeyEnd}},
		{"CtrlD", Key{Code: KeyCtrlD}, Key{Code: KeyPageDown}},
		{"CtrlU", Key{Code: KeyCtrlU}, Key{Code: KeyPageUp}},
		{"OtherRunePassesThrough", Key{Code: KeyRune, Rune: 'x'}, Key{Code: KeyRune, Rune: 'x'}},
		{"ArrowPassesThrough", Key{Code: KeyDown}, Key{Code: KeyDown}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := VimKey(c.in); got != c.want {
				t.Errorf("expected %+v, got %+v", c.want, got)
			}
		})
	}
}
