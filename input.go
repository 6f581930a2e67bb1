package sash

import (
	"io"
	"unicode/utf8"
)

// KeyDecoder turns a raw-mode byte stream into Key events. It understands
// the common xterm CSI and SS3 sequences for arrows, paging, and home/end,
// passes printable input through as KeyRune, and consumes bracketed paste
// markers so pasted text arrives as plain runes.
type KeyDecoder struct {
	r       io.Reader
	buf     [256]byte
	pending []byte
}

// NewKeyDecoder wraps a reader, normally os.Stdin in raw mode.
func NewKeyDecoder(r io.Reader) *KeyDecoder {
	return &KeyDecoder{r: r}
}

// Next blocks until one key is available. Unknown escape sequences are
// consumed and skipped rather than surfaced as garbage.
func (d *KeyDecoder) Next() (Key, error) {
	for {
		if len(d.pending) == 0 {
			n, err := d.r.Read(d.buf[:])
			if n == 0 {
				if err != nil {
					return Key{}, err
				}
				continue
			}
			d.pending = d.buf[:n]
		}
		k, n, ok := decodeKey(d.pending)
		d.pending = d.pending[n:]
		if ok {
			return k, nil
		}
	}
}

// decodeKey decodes one key from the front of b, returning the bytes
// consumed. ok is false for sequences that should be swallowed silently.
// b is never empty.
func decodeKey(b []byte) (Key, int, bool) {
	switch b[0] {
	case 0x1b:
		return decodeEscape(b)
	case '\r', '\n':
		return Key{Code: KeyEnter}, 1, true
	case '\t':
		return Key{Code: KeyTab}, 1, true
	case 0x7f, 0x08:
		return Key{Code: KeyBackspace}, 1, true
	case 0x03:
		return Key{Code: KeyCtrlC}, 1, true
	case 0x04:
		return Key{Code: KeyCtrlD}, 1, true
	case 0x15:
		return Key{Code: KeyCtrlU}, 1, true
	}
	if b[0] < 0x20 {
		// Other control bytes have no binding.
		return Key{}, 1, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size == 1 {
		return Key{}, 1, false
	}
	return Key{Code: KeyRune, Rune: r}, size, true
}

// decodeEscape handles ESC, CSI (ESC [), and SS3 (ESC O) sequences.
func decodeEscape(b []byte) (Key, int, bool) {
	if len(b) == 1 {
		// Bare escape: nothing followed in the same read.
		return Key{Code: KeyEscape}, 1, true
	}
	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return Key{Code: KeyEscape}, 1, true
		}
		switch b[2] {
		case 'A':
			return Key{Code: KeyUp}, 3, true
		case 'B':
			return Key{Code: KeyDown}, 3, true
		case 'C':
			return Key{Code: KeyRight}, 3, true
		case 'D':
			return Key{Code: KeyLeft}, 3, true
		case 'H':
			return Key{Code: KeyHome}, 3, true
		case 'F':
			return Key{Code: KeyEnd}, 3, true
		}
		return Key{}, 3, false
	}
	// Alt-modified byte; surface the plain key.
	k, n, ok := decodeKey(b[1:])
	return k, n + 1, ok
}

// decodeCSI decodes ESC [ <params> <final>. Parameters are digits and
// semicolons; the final byte is in 0x40..0x7e.
func decodeCSI(b []byte) (Key, int, bool) {
	i := 2
	for i < len(b) && (b[i] >= '0' && b[i] <= '9' || b[i] == ';') {
		i++
	}
	if i >= len(b) {
		// Truncated sequence; drop what we have.
		return Key{}, len(b), false
	}
	final := b[i]
	consumed := i + 1
	params := string(b[2:i])

	switch final {
	case 'A':
		return Key{Code: KeyUp}, consumed, true
	case 'B':
		return Key{Code: KeyDown}, consumed, true
	case 'C':
		return Key{Code: KeyRight}, consumed, true
	case 'D':
		return Key{Code: KeyLeft}, consumed, true
	case 'H':
		return Key{Code: KeyHome}, consumed, true
	case 'F':
		return Key{Code: KeyEnd}, consumed, true
	case '~':
		switch params {
		case "1", "7":
			return Key{Code: KeyHome}, consumed, true
		case "4", "8":
			return Key{Code: KeyEnd}, consumed, true
		case "5":
			return Key{Code: KeyPageUp}, consumed, true
		case "6":
			return Key{Code: KeyPageDown}, consumed, true
		case "200", "201":
			// Bracketed paste markers; the pasted bytes decode as runes.
			return Key{}, consumed, false
		}
	}
	return Key{}, consumed, false
}
