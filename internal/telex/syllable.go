package telex

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Structural bounds of a syllable. The longest Vietnamese syllable,
// "nghiêng", uses three onset letters, two vowels and two coda letters.
const (
	maxOnset   = 3
	maxNucleus = 3
	maxCoda    = 2
)

// codaPrefixes are the coda spellings the syllable model will build,
// including the single letters that start a two-letter coda.
var codaPrefixes = map[string]bool{
	"c": true, "ch": true, "m": true, "n": true, "ng": true,
	"nh": true, "p": true, "t": true,
}

// Slot names a structural position in a syllable.
type Slot uint8

const (
	SlotOnset Slot = iota
	SlotNucleus
	SlotCoda
)

func (s Slot) String() string {
	switch s {
	case SlotOnset:
		return "onset"
	case SlotNucleus:
		return "nucleus"
	case SlotCoda:
		return "coda"
	}
	return "unknown"
}

// Target addresses the letters a diacritic applies to: Span letters of
// Slot starting at Index. A zero Span means one letter.
type Target struct {
	Slot  Slot
	Index int
	Span  int
}

func (t Target) span() int {
	if t.Span < 1 {
		return 1
	}
	return t.Span
}

type consonant struct {
	r     rune // lowercase, 'đ' once stroked
	upper bool
}

func (c consonant) String() string {
	if c.upper {
		return string(unicode.ToUpper(c.r))
	}
	return string(c.r)
}

// Shape is a read-only snapshot of a syllable's structure, the input the
// rule table keys on.
type Shape struct {
	Onset   string // lowercase, "đ" once stroked
	Nucleus []Vowel
	Coda    string // lowercase
	Tone    Tone
}

// Syllable holds the onset, nucleus, coda and tone of the syllable being
// typed. The zero value is not usable; call NewSyllable.
type Syllable struct {
	onset   []consonant
	nucleus []Vowel
	coda    []consonant
	tone    Tone

	// alternate places the tone on the second vowel of a bare oa, oe, uy.
	alternate bool
}

// NewSyllable returns an empty syllable that places tones per cfg.
func NewSyllable(cfg Config) *Syllable {
	return &Syllable{
		onset:     make([]consonant, 0, maxOnset),
		nucleus:   make([]Vowel, 0, maxNucleus),
		coda:      make([]consonant, 0, maxCoda),
		alternate: cfg.AlternateOaUyTonePlacement,
	}
}

// IsEmpty reports whether no letter has been applied.
func (s *Syllable) IsEmpty() bool {
	return len(s.onset) == 0 && len(s.nucleus) == 0 && len(s.coda) == 0
}

// Onset returns the lowercase onset spelling.
func (s *Syllable) Onset() string { return joinLower(s.onset) }

// Coda returns the lowercase coda spelling.
func (s *Syllable) Coda() string { return joinLower(s.coda) }

// Tone returns the active tone.
func (s *Syllable) Tone() Tone { return s.tone }

// Nucleus returns a copy of the nucleus vowels.
func (s *Syllable) Nucleus() []Vowel {
	out := make([]Vowel, len(s.nucleus))
	copy(out, s.nucleus)
	return out
}

// Shape snapshots the structure for rule lookup.
func (s *Syllable) Shape() Shape {
	return Shape{
		Onset:   s.Onset(),
		Nucleus: s.Nucleus(),
		Coda:    s.Coda(),
		Tone:    s.tone,
	}
}

func joinLower(cs []consonant) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteRune(c.r)
	}
	return b.String()
}

// ApplyLetter appends c to the onset, nucleus or coda depending on where
// the syllable currently stands. It returns false, leaving the syllable
// untouched, when c cannot extend the structure.
func (s *Syllable) ApplyLetter(c rune) bool {
	return s.ApplyMarkedLetter(c, MarkNone)
}

// ApplyMarkedLetter is ApplyLetter for a vowel that arrives already
// marked, such as the ư produced by a lone w.
func (s *Syllable) ApplyMarkedLetter(c rune, m Mark) bool {
	lower := unicode.ToLower(c)
	upper := lower != c

	if isVowelLetter(lower) {
		if !m.accepts(lower) || len(s.coda) > 0 {
			return false
		}
		onset := s.Onset()
		// The u of qu belongs to the onset.
		if len(s.nucleus) == 0 && onset == "q" && lower == 'u' && m == MarkNone {
			s.onset = append(s.onset, consonant{r: 'u', upper: upper})
			return true
		}
		// A bare i after g is the nucleus ("gì") until another vowel
		// follows, at which point it is the onset gi ("gia").
		if len(s.nucleus) == 1 && onset == "g" && s.nucleus[0].Base == 'i' && s.nucleus[0].Mark == MarkNone {
			s.onset = append(s.onset, consonant{r: 'i', upper: s.nucleus[0].Upper})
			s.nucleus = s.nucleus[:0]
		}
		if len(s.nucleus) >= maxNucleus {
			return false
		}
		if (lower == 'i' || lower == 'u') && m == MarkNone {
			s.promoteHorn()
		}
		s.nucleus = append(s.nucleus, Vowel{Base: lower, Mark: m, Upper: upper})
		return true
	}

	if !isConsonantLetter(lower) || m != MarkNone {
		return false
	}
	if len(s.nucleus) == 0 {
		if len(s.onset) >= maxOnset {
			return false
		}
		s.onset = append(s.onset, consonant{r: lower, upper: upper})
		return true
	}
	if len(s.coda) >= maxCoda || !codaPrefixes[s.Coda()+string(lower)] {
		return false
	}
	s.promoteHorn()
	s.coda = append(s.coda, consonant{r: lower, upper: upper})
	return true
}

// promoteHorn turns a final uơ into ươ. Only the bare pair spells uơ
// (thuở); followed by a coda or by i or u it is always ươ (thương, người).
func (s *Syllable) promoteHorn() {
	n := len(s.nucleus)
	if n < 2 {
		return
	}
	u, o := &s.nucleus[n-2], s.nucleus[n-1]
	if u.Base == 'u' && u.Mark == MarkNone && o.Base == 'o' && o.Mark == MarkHorn {
		u.Mark = MarkHorn
	}
}

// ApplyTone sets t, or clears the tone when t is already active. It
// returns false when there is no vowel to carry a tone.
func (s *Syllable) ApplyTone(t Tone) bool {
	if len(s.nucleus) == 0 {
		return false
	}
	if s.tone == t {
		s.tone = ToneLevel
		return true
	}
	s.tone = t
	return true
}

// ApplyDiacritic puts m on the target letters, or removes it when every
// target already carries m. It returns false when the target does not
// exist or cannot take m.
func (s *Syllable) ApplyDiacritic(m Mark, t Target) bool {
	switch t.Slot {
	case SlotOnset:
		if m != MarkStroke || t.Index != 0 || len(s.onset) == 0 {
			return false
		}
		switch s.onset[0].r {
		case 'd':
			s.onset[0].r = 'đ'
		case 'đ':
			s.onset[0].r = 'd'
		default:
			return false
		}
		return true

	case SlotNucleus:
		n := t.span()
		if m == MarkNone || m == MarkStroke || t.Index < 0 || t.Index+n > len(s.nucleus) {
			return false
		}
		targets := s.nucleus[t.Index : t.Index+n]
		all := true
		for _, v := range targets {
			if !m.accepts(v.Base) {
				return false
			}
			if v.Mark != m {
				all = false
			}
		}
		next := m
		if all {
			next = MarkNone
		}
		for i := range targets {
			targets[i].Mark = next
		}
		return true
	}
	return false
}

// Render produces the NFC Vietnamese text of the syllable.
func (s *Syllable) Render() string {
	var b strings.Builder
	for _, c := range s.onset {
		b.WriteString(c.String())
	}
	at := s.tonePosition()
	for i, v := range s.nucleus {
		if i == at {
			b.WriteString(v.render(s.tone))
		} else {
			b.WriteString(v.render(ToneLevel))
		}
	}
	for _, c := range s.coda {
		b.WriteString(c.String())
	}
	return norm.NFC.String(b.String())
}

// tonePosition picks the nucleus vowel that carries the tone mark.
func (s *Syllable) tonePosition() int {
	n := len(s.nucleus)
	if n == 0 {
		return -1
	}
	for i := n - 1; i >= 0; i-- {
		if s.nucleus[i].Mark != MarkNone {
			return i
		}
	}
	switch {
	case n == 1:
		return 0
	case n == 3:
		return 1
	case len(s.coda) > 0:
		return n - 1
	}
	switch string([]rune{s.nucleus[0].Base, s.nucleus[1].Base}) {
	case "oa", "oe", "uy":
		if s.alternate {
			return 1
		}
	}
	return 0
}
