package telex

// Validator decides whether a syllable is a well-formed, or at least
// plausible, Vietnamese syllable. Implementations must not mutate s.
type Validator interface {
	// Check reports whether s is, or can still become, a syllable.
	Check(s *Syllable) bool
	// Complete reports whether s is a finished syllable a word may be
	// committed as.
	Complete(s *Syllable) bool
}

// PhonotacticValidator checks syllables against a set of Tables.
//
// A syllable is accepted while it can still become a real syllable: a
// partial onset or coda ("ng" on the way to "ngh"), or a nucleus whose
// diacritics are still pending ("ie" on the way to "iê"), is plausible.
type PhonotacticValidator struct {
	onsets       map[string]bool
	onsetPrefix  map[string]bool
	codas        map[string]bool
	codaPrefix   map[string]bool
	stops        map[string]bool
	palatalCodas map[string]bool
	palatal      []Vowel
	front        map[string]bool
	back         map[string]bool
	nuclei       []nucleusPattern
}

type nucleusPattern struct {
	vowels []Vowel
	coda   CodaRule
}

// NewValidator compiles t. A nil t uses DefaultTables.
func NewValidator(t *Tables) *PhonotacticValidator {
	if t == nil {
		t = DefaultTables()
	}
	v := &PhonotacticValidator{
		onsets:       setOf(t.Onsets),
		onsetPrefix:  prefixesOf(t.Onsets),
		codas:        setOf(t.Codas),
		codaPrefix:   prefixesOf(t.Codas),
		stops:        setOf(t.StopCodas),
		palatalCodas: setOf(t.PalatalCodas),
		palatal:      parseVowels(t.PalatalVowels),
		front:        setOf(t.FrontOnsets),
		back:         setOf(t.BackOnsets),
	}
	for _, n := range t.Nuclei {
		vs := parseVowels(n.Vowels)
		if len(vs) == 0 {
			continue
		}
		v.nuclei = append(v.nuclei, nucleusPattern{vowels: vs, coda: n.Coda})
	}
	return v
}

func setOf(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

func prefixesOf(items []string) map[string]bool {
	m := make(map[string]bool, len(items)*2)
	for _, s := range items {
		rs := []rune(s)
		for i := 1; i <= len(rs); i++ {
			m[string(rs[:i])] = true
		}
	}
	return m
}

// Check implements Validator.
func (p *PhonotacticValidator) Check(s *Syllable) bool {
	onset := s.Onset()
	coda := s.Coda()
	nuc := s.nucleus

	if len(nuc) == 0 {
		return coda == "" && (onset == "" || p.onsetPrefix[onset])
	}
	if onset != "" && !p.onsets[onset] {
		return false
	}
	if !p.onsetFits(onset, nuc[0]) {
		return false
	}
	if coda == "" {
		return p.nucleusPrefix(nuc)
	}
	if !p.codaPrefix[coda] || !p.nucleusTakesCoda(nuc) {
		return false
	}
	if p.palatalCodas[coda] && !p.palatalFits(nuc[len(nuc)-1]) {
		return false
	}
	if p.stops[coda] {
		switch s.tone {
		case ToneLevel, ToneRising, ToneHeavy:
		default:
			return false
		}
	}
	return true
}

// Complete implements Validator. On top of Check it wants a nucleus whose
// diacritics are all in place, a whole coda, and the coda the nucleus
// calls for: "lă" and "tiê" are plausible but unfinished.
func (p *PhonotacticValidator) Complete(s *Syllable) bool {
	if len(s.nucleus) == 0 || !p.Check(s) {
		return false
	}
	coda := s.Coda()
	if coda != "" && !p.codas[coda] {
		return false
	}
	for _, pat := range p.nuclei {
		if !sameVowels(s.nucleus, pat.vowels) {
			continue
		}
		switch pat.coda {
		case CodaRequired:
			return coda != ""
		case CodaForbidden:
			return coda == ""
		}
		return true
	}
	return false
}

// sameVowels reports whether typed spells exactly want, marks included.
func sameVowels(typed, want []Vowel) bool {
	if len(typed) != len(want) {
		return false
	}
	for i, v := range typed {
		if v.Base != want[i].Base || v.Mark != want[i].Mark {
			return false
		}
	}
	return true
}

// compatible reports whether typed can still become want: same base, and
// either the same mark or no mark yet.
func compatible(typed, want Vowel) bool {
	return typed.Base == want.Base && (typed.Mark == want.Mark || typed.Mark == MarkNone)
}

func (p *PhonotacticValidator) onsetFits(onset string, first Vowel) bool {
	frontVowel := first.Base == 'e' || first.Base == 'i' || first.Base == 'y'
	switch {
	case p.front[onset]:
		return frontVowel
	case p.back[onset]:
		return !frontVowel
	case onset == "g":
		return first.Base != 'e'
	}
	return true
}

func (p *PhonotacticValidator) nucleusPrefix(nuc []Vowel) bool {
	for _, pat := range p.nuclei {
		if len(pat.vowels) >= len(nuc) && matches(nuc, pat.vowels) {
			return true
		}
	}
	return false
}

func (p *PhonotacticValidator) nucleusTakesCoda(nuc []Vowel) bool {
	for _, pat := range p.nuclei {
		if pat.coda != CodaForbidden && len(pat.vowels) == len(nuc) && matches(nuc, pat.vowels) {
			return true
		}
	}
	return false
}

func (p *PhonotacticValidator) palatalFits(last Vowel) bool {
	for _, v := range p.palatal {
		if compatible(last, v) {
			return true
		}
	}
	return false
}

func matches(typed, want []Vowel) bool {
	for i, v := range typed {
		if !compatible(v, want[i]) {
			return false
		}
	}
	return true
}
