package telex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhonotacticValidator(t *testing.T) {
	tests := []struct {
		keys string
		want bool
	}{
		// Partial onsets are plausible.
		{"", true},
		{"ng", true},
		{"ngh", true},
		{"bl", false},

		// Onset spelling before front vowels.
		{"nghi", true},
		{"ngha", false},
		{"ki", true},
		{"ka", false},
		{"ca", true},
		{"ce", false},
		{"cy", false},
		{"nge", false},
		{"nga", true},
		{"ghe", true},
		{"gha", false},
		{"ge", false},
		{"gi", true},

		// Nuclei, including ones with pending diacritics.
		{"ie", true},
		{"iee", true},
		{"uoo", true},
		{"uowi", true},
		{"aw", true},
		{"uya", true},

		// Coda requirements per nucleus.
		{"ain", false},
		{"uyan", false},
		{"uowin", false},
		{"ieen", true},
		{"awn", true},
		{"oan", true},

		// ch and nh follow a, ê, i, y only.
		{"ach", true},
		{"eech", true},
		{"ich", true},
		{"och", false},
		{"anh", true},
		{"onh", false},

		// Stop codas take level, rising or heavy.
		{"tac", true},
		{"tosc", true},
		{"tojc", true},
		{"tofc", false},
		{"toxp", false},
	}
	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			e := newEngine(t, tt.keys)
			assert.Equal(t, tt.want, v.Check(e.syllable))
		})
	}
}

func TestPhonotacticValidatorComplete(t *testing.T) {
	tests := []struct {
		keys string
		want bool
	}{
		// No nucleus.
		{"", false},
		{"ng", false},
		{"dd", false},

		// Diacritics still pending.
		{"ie", false},
		{"tien", false},
		{"uon", false},
		{"tieen", true},

		// Nuclei that need a coda.
		{"aw", false},
		{"awn", true},
		{"baa", false},
		{"baan", true},
		{"tiee", false},
		{"thuowng", true},
		{"khoong", true},

		// Nuclei that take none.
		{"thuow", true},
		{"huowr", true},
		{"muowi", true},
		{"chaof", true},
		{"ba", true},
	}
	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			e := newEngine(t, tt.keys)
			assert.Equal(t, tt.want, v.Complete(e.syllable))
		})
	}
}

func TestValidatorCustomTables(t *testing.T) {
	tables := DefaultTables()
	tables.Onsets = append(tables.Onsets, "kl")
	v := NewValidator(tables)
	assert.True(t, v.Check(newEngine(t, "kla").syllable))
	assert.False(t, NewValidator(nil).Check(newEngine(t, "kla").syllable))

	tables = DefaultTables()
	tables.Nuclei = nil
	v = NewValidator(tables)
	assert.False(t, v.Check(newEngine(t, "ta").syllable))
}

func TestTablesClone(t *testing.T) {
	orig := DefaultTables()
	c := orig.Clone()
	c.Onsets[0] = "zz"
	c.Nuclei = append(c.Nuclei, Nucleus{Vowels: "ư", Coda: CodaForbidden})
	assert.Equal(t, "b", orig.Onsets[0])
	assert.Len(t, orig.Nuclei, len(DefaultTables().Nuclei))
}
