package telex

import "strings"

// Keystroke is one raw input character and its ordinal position in the
// word. It is never modified once recorded.
type Keystroke struct {
	Char rune
	Pos  int
}

// History is the ordered log of raw keystrokes for the current word.
type History struct {
	keys []Keystroke
}

// Push records c and returns the keystroke.
func (h *History) Push(c rune) Keystroke {
	k := Keystroke{Char: c, Pos: len(h.keys)}
	h.keys = append(h.keys, k)
	return k
}

// Pop removes and returns the most recent keystroke.
func (h *History) Pop() (Keystroke, bool) {
	if len(h.keys) == 0 {
		return Keystroke{}, false
	}
	k := h.keys[len(h.keys)-1]
	h.keys = h.keys[:len(h.keys)-1]
	return k, true
}

// Len returns the number of recorded keystrokes.
func (h *History) Len() int { return len(h.keys) }

// Keys returns a copy of the log in input order.
func (h *History) Keys() []Keystroke {
	out := make([]Keystroke, len(h.keys))
	copy(out, h.keys)
	return out
}

// Raw concatenates the keystrokes exactly as typed.
func (h *History) Raw() string {
	var b strings.Builder
	for _, k := range h.keys {
		b.WriteRune(k.Char)
	}
	return b.String()
}

// Clear empties the log, keeping its storage.
func (h *History) Clear() {
	h.keys = h.keys[:0]
}
