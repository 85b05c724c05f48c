package telex

import (
	"strings"
	"unicode"
)

// TelexKeys returns a keystroke sequence that composes word. Letter
// diacritics are typed in place (â as "aa", ư as "uw", đ as "dd") and the
// tone trigger goes last. Runes Telex cannot produce are copied as is.
func TelexKeys(word string) string {
	var b strings.Builder
	tone := ToneLevel
	for _, r := range word {
		base, mark, t, upper, ok := decompose(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		if t != ToneLevel {
			tone = t
		}
		first := base
		if upper {
			first = unicode.ToUpper(base)
		}
		b.WriteRune(first)
		switch mark {
		case MarkCircumflex, MarkStroke:
			b.WriteRune(base)
		case MarkBreve, MarkHorn:
			b.WriteRune('w')
		}
	}
	if k := tone.Key(); k != 0 {
		b.WriteRune(k)
	}
	return b.String()
}

// Backconvert starts a new word from already composed text, so a
// committed word can be edited again. The engine is reset and fed the
// keystrokes TelexKeys derives from word.
func (e *Engine) Backconvert(word string) State {
	e.Reset()
	for _, k := range TelexKeys(word) {
		e.PushChar(k)
	}
	return e.state
}
