package sash

// KeyCode identifies a decoded key press.
type KeyCode int

const (
	KeyRune KeyCode = iota // printable rune, see Key.Rune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyCtrlC
	KeyCtrlD
	KeyCtrlU
)

// Key is a single decoded key press.
type Key struct {
	Code KeyCode
	Rune rune
}

// VimKey translates vim-style movement runes into navigation keys.
// Unrecognized keys pass through unchanged. Wrap keys with this before
// HandleKey to get j/k/g/G and half-page bindings.
func VimKey(k Key) Key {
	if k.Code == KeyCtrlD {
		return Key{Code: KeyPageDown}
	}
	if k.Code == KeyCtrlU {
		return Key{Code: KeyPageUp}
	}
	if k.Code != KeyRune {
		return k
	}
	switch k.Rune {
	case 'j':
		return Key{Code: KeyDown}
	case 'k':
		return Key{Code: KeyUp}
	case 'g':
		return Key{Code: KeyHome}
	case 'G':
		return Key{Code: KeyEnd}
	}
	return k
}

// navTarget computes the focus target for a navigation key.
// focus is the currently focused index, or -1 when nothing holds focus.
// Returns handled=false for keys that are not navigation keys, so hosts can
// fall through to their own bindings.
func navTarget(k Key, focus int, visible Range, count int) (target int, handled bool) {
	if count == 0 {
		return -1, false
	}
	last := count - 1

	switch k.Code {
	case KeyDown:
		if focus >= 0 {
			return min(last, focus+1), true
		}
		return clampIndex(visible.Start, last), true
	case KeyUp:
		if focus >= 0 {
			return max(0, focus-1), true
		}
		return clampIndex(visible.End, last), true
	case KeyPageDown:
		return clampIndex(visible.End, last), true
	case KeyPageUp:
		return clampIndex(visible.Start, last), true
	case KeyHome:
		return 0, true
	case KeyEnd:
		return last, true
	}
	return -1, false
}

// clampIndex bounds i into [0, last].
func clampIndex(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
