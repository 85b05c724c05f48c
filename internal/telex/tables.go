package telex

// CodaRule says whether a nucleus may, must or must not be closed by a coda.
type CodaRule uint8

const (
	CodaOptional CodaRule = iota
	CodaRequired
	CodaForbidden
)

// Nucleus is one permitted vowel cluster, written in lowercase with its
// letter diacritics ("ươ", "uyê").
type Nucleus struct {
	Vowels string
	Coda   CodaRule
}

// Tables is the phonotactic data the validity checker works from. The
// defaults follow standard Vietnamese orthography; callers may extend or
// replace any list.
type Tables struct {
	// Onsets are the complete initial consonant spellings.
	Onsets []string
	// Nuclei are the permitted vowel clusters.
	Nuclei []Nucleus
	// Codas are the complete final consonant spellings.
	Codas []string
	// StopCodas only combine with the level, rising and heavy tones.
	StopCodas []string
	// PalatalCodas (ch, nh) only follow the vowels in PalatalVowels.
	PalatalCodas  []string
	PalatalVowels string
	// FrontOnsets (k, gh, ngh) only precede e, ê, i, y; BackOnsets
	// (c, ng) never do. The g onset may not precede e or ê.
	FrontOnsets []string
	BackOnsets  []string
}

// DefaultTables returns the standard Vietnamese tables.
func DefaultTables() *Tables {
	return &Tables{
		Onsets: []string{
			"b", "c", "ch", "d", "đ", "g", "gh", "gi", "h", "k", "kh", "l", "m",
			"n", "ng", "ngh", "nh", "p", "ph", "qu", "r", "s", "t", "th", "tr",
			"v", "x",
		},
		Nuclei: []Nucleus{
			{"a", CodaOptional}, {"ă", CodaRequired}, {"â", CodaRequired},
			{"e", CodaOptional}, {"ê", CodaOptional}, {"i", CodaOptional},
			{"o", CodaOptional}, {"ô", CodaOptional}, {"ơ", CodaOptional},
			{"u", CodaOptional}, {"ư", CodaOptional}, {"y", CodaOptional},

			{"ai", CodaForbidden}, {"ao", CodaForbidden}, {"au", CodaForbidden},
			{"ay", CodaForbidden}, {"âu", CodaForbidden}, {"ây", CodaForbidden},
			{"eo", CodaForbidden}, {"êu", CodaForbidden}, {"ia", CodaForbidden},
			{"iê", CodaRequired}, {"iu", CodaForbidden}, {"oa", CodaOptional},
			{"oă", CodaRequired}, {"oe", CodaOptional}, {"oi", CodaForbidden},
			{"ôi", CodaForbidden}, {"ơi", CodaForbidden}, {"oo", CodaRequired},
			{"ua", CodaForbidden}, {"uâ", CodaRequired}, {"uê", CodaOptional},
			{"ui", CodaForbidden}, {"uô", CodaRequired}, {"uơ", CodaForbidden},
			{"uy", CodaOptional}, {"ưa", CodaForbidden}, {"ưi", CodaForbidden},
			{"ươ", CodaRequired}, {"ưu", CodaForbidden}, {"yê", CodaRequired},

			{"iêu", CodaForbidden}, {"oai", CodaForbidden}, {"oay", CodaForbidden},
			{"oeo", CodaForbidden}, {"uây", CodaForbidden}, {"uôi", CodaForbidden},
			{"ươi", CodaForbidden}, {"ươu", CodaForbidden}, {"uya", CodaForbidden},
			{"uyê", CodaRequired}, {"uyu", CodaForbidden}, {"yêu", CodaForbidden},
		},
		Codas:         []string{"c", "ch", "m", "n", "ng", "nh", "p", "t"},
		StopCodas:     []string{"c", "ch", "p", "t"},
		PalatalCodas:  []string{"ch", "nh"},
		PalatalVowels: "aêiy",
		FrontOnsets:   []string{"k", "gh", "ngh"},
		BackOnsets:    []string{"c", "ng"},
	}
}

// Clone returns a deep copy so callers can extend the defaults safely.
func (t *Tables) Clone() *Tables {
	c := *t
	c.Onsets = append([]string(nil), t.Onsets...)
	c.Nuclei = append([]Nucleus(nil), t.Nuclei...)
	c.Codas = append([]string(nil), t.Codas...)
	c.StopCodas = append([]string(nil), t.StopCodas...)
	c.PalatalCodas = append([]string(nil), t.PalatalCodas...)
	c.FrontOnsets = append([]string(nil), t.FrontOnsets...)
	c.BackOnsets = append([]string(nil), t.BackOnsets...)
	return &c
}
