package telex

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tone is the tone carried by a syllable. At most one is active.
type Tone uint8

const (
	// ToneLevel is the unmarked tone (thanh ngang). It doubles as "no tone".
	ToneLevel Tone = iota
	// ToneFalling is huyền, typed with f.
	ToneFalling
	// ToneRising is sắc (the sharp tone), typed with s.
	ToneRising
	// ToneQuestion is hỏi, typed with r.
	ToneQuestion
	// ToneTumbling is ngã, typed with x.
	ToneTumbling
	// ToneHeavy is nặng, typed with j.
	ToneHeavy
)

var toneNames = [...]string{"level", "falling", "rising", "question", "tumbling", "heavy"}

func (t Tone) String() string {
	if int(t) < len(toneNames) {
		return toneNames[t]
	}
	return "unknown"
}

// Key returns the Telex trigger for t, or 0 for ToneLevel.
func (t Tone) Key() rune {
	switch t {
	case ToneFalling:
		return 'f'
	case ToneRising:
		return 's'
	case ToneQuestion:
		return 'r'
	case ToneTumbling:
		return 'x'
	case ToneHeavy:
		return 'j'
	}
	return 0
}

func (t Tone) combining() rune {
	switch t {
	case ToneFalling:
		return '\u0300'
	case ToneRising:
		return '\u0301'
	case ToneQuestion:
		return '\u0309'
	case ToneTumbling:
		return '\u0303'
	case ToneHeavy:
		return '\u0323'
	}
	return 0
}

// toneForKey maps a lowercase tone trigger to its tone.
func toneForKey(k rune) (Tone, bool) {
	switch k {
	case 'f':
		return ToneFalling, true
	case 's':
		return ToneRising, true
	case 'r':
		return ToneQuestion, true
	case 'x':
		return ToneTumbling, true
	case 'j':
		return ToneHeavy, true
	}
	return ToneLevel, false
}

// Mark is a letter diacritic other than a tone.
type Mark uint8

const (
	MarkNone Mark = iota
	// MarkCircumflex turns a, e, o into â, ê, ô.
	MarkCircumflex
	// MarkBreve turns a into ă.
	MarkBreve
	// MarkHorn turns o, u into ơ, ư.
	MarkHorn
	// MarkStroke turns the onset d into đ.
	MarkStroke
)

var markNames = [...]string{"none", "circumflex", "breve", "horn", "stroke"}

func (m Mark) String() string {
	if int(m) < len(markNames) {
		return markNames[m]
	}
	return "unknown"
}

func (m Mark) combining() rune {
	switch m {
	case MarkCircumflex:
		return '\u0302'
	case MarkBreve:
		return '\u0306'
	case MarkHorn:
		return '\u031B'
	}
	return 0
}

// accepts reports whether m can sit on the base vowel.
func (m Mark) accepts(base rune) bool {
	switch m {
	case MarkNone:
		return true
	case MarkCircumflex:
		return base == 'a' || base == 'e' || base == 'o'
	case MarkBreve:
		return base == 'a'
	case MarkHorn:
		return base == 'o' || base == 'u'
	}
	return false
}

// Vowel is one position of the nucleus: a plain base vowel plus the
// diacritic applied to it so far.
type Vowel struct {
	Base  rune // lowercase a e i o u y
	Mark  Mark
	Upper bool
}

// String renders the vowel without tone.
func (v Vowel) String() string {
	return v.render(ToneLevel)
}

func (v Vowel) render(t Tone) string {
	base := v.Base
	if v.Upper {
		base = unicode.ToUpper(base)
	}
	buf := make([]rune, 0, 3)
	buf = append(buf, base)
	if c := v.Mark.combining(); c != 0 {
		buf = append(buf, c)
	}
	if c := t.combining(); c != 0 {
		buf = append(buf, c)
	}
	return norm.NFC.String(string(buf))
}

func isVowelLetter(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func isConsonantLetter(r rune) bool {
	switch r {
	case 'b', 'c', 'd', 'đ', 'g', 'h', 'k', 'l', 'm', 'n', 'p', 'q', 'r', 's', 't', 'v', 'x':
		return true
	}
	return false
}

// decompose splits a precomposed Vietnamese letter into its lowercase base,
// letter diacritic and tone. ok is false for runes outside the Latin
// letters Telex can produce.
func decompose(r rune) (base rune, mark Mark, tone Tone, upper bool, ok bool) {
	upper = unicode.IsUpper(r)
	lower := unicode.ToLower(r)
	if lower == 'đ' {
		return 'd', MarkStroke, ToneLevel, upper, true
	}
	parts := []rune(norm.NFD.String(string(lower)))
	base = parts[0]
	if base > unicode.MaxASCII || !unicode.IsLetter(base) {
		return 0, MarkNone, ToneLevel, false, false
	}
	for _, c := range parts[1:] {
		switch c {
		case '\u0302':
			mark = MarkCircumflex
		case '\u0306':
			mark = MarkBreve
		case '\u031B':
			mark = MarkHorn
		case '\u0300':
			tone = ToneFalling
		case '\u0301':
			tone = ToneRising
		case '\u0309':
			tone = ToneQuestion
		case '\u0303':
			tone = ToneTumbling
		case '\u0323':
			tone = ToneHeavy
		default:
			return 0, MarkNone, ToneLevel, false, false
		}
	}
	if mark != MarkNone && !mark.accepts(base) {
		return 0, MarkNone, ToneLevel, false, false
	}
	return base, mark, tone, upper, true
}

// parseVowels turns a lowercase composed cluster such as "ươ" into vowels.
func parseVowels(s string) []Vowel {
	out := make([]Vowel, 0, len(s))
	for _, r := range s {
		base, mark, _, _, ok := decompose(r)
		if !ok || !isVowelLetter(base) {
			return nil
		}
		out = append(out, Vowel{Base: base, Mark: mark})
	}
	return out
}
