package telex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeWord(e *Engine, keys string) State {
	s := e.State()
	for _, c := range keys {
		s = e.PushChar(c)
	}
	return s
}

func newEngine(t *testing.T, keys string) *Engine {
	t.Helper()
	e := New(DefaultConfig())
	typeWord(e, keys)
	return e
}

func TestNewEngineIsComposing(t *testing.T) {
	e := New(DefaultConfig())
	assert.Equal(t, Composing, e.State())
	assert.Equal(t, "", e.Peek())
	assert.Equal(t, "", e.Retrieve())
	assert.Equal(t, "", e.RetrieveRaw())
	assert.Equal(t, 0, e.Len())
}

func TestScenarioVieet(t *testing.T) {
	e := newEngine(t, "vieet")
	require.Equal(t, Valid, e.State())
	assert.Equal(t, "viêt", e.Peek())

	assert.Equal(t, CommittedValid, e.Commit())
	assert.Equal(t, "viêt", e.Retrieve())

	e = newEngine(t, "vieetj")
	require.Equal(t, Valid, e.State())
	assert.Equal(t, CommittedValid, e.Commit())
	assert.Equal(t, "việt", e.Retrieve())
}

func TestScenarioDdieemr(t *testing.T) {
	e := newEngine(t, "ddieemr")
	require.Equal(t, Valid, e.State())
	assert.Equal(t, CommittedValid, e.Commit())
	assert.Equal(t, "điểm", e.Retrieve())
	assert.Equal(t, "ddieemr", e.RetrieveRaw())
}

func TestScenarioXyz123(t *testing.T) {
	e := New(DefaultConfig())
	assert.Equal(t, Valid, e.PushChar('x'))
	assert.Equal(t, Valid, e.PushChar('y'))
	// z has no tone to clear.
	assert.Equal(t, Invalid, e.PushChar('z'))
	for _, c := range "123" {
		assert.Equal(t, Invalid, e.PushChar(c))
	}
	assert.Equal(t, "xyz123", e.Peek())

	assert.Equal(t, CommittedInvalid, e.Commit())
	assert.Equal(t, "", e.Retrieve())
	assert.Equal(t, "xyz123", e.RetrieveRaw())
}

func TestScenarioTootjBackspace(t *testing.T) {
	e := newEngine(t, "toot")
	require.Equal(t, Valid, e.State())
	untoned := e.Peek()
	assert.Equal(t, "tôt", untoned)

	assert.Equal(t, Valid, e.PushChar('j'))
	assert.Equal(t, "tột", e.Peek())

	assert.Equal(t, Valid, e.Backspace())
	assert.Equal(t, untoned, e.Peek())
	assert.Equal(t, "toot", e.RetrieveRaw())
}

func TestScenarioToneToggle(t *testing.T) {
	e := newEngine(t, "a")
	before := e.Peek()

	e.PushChar('s')
	assert.Equal(t, "á", e.Peek())
	e.PushChar('s')
	assert.Equal(t, before, e.Peek())
	assert.Equal(t, Valid, e.State())
	assert.Equal(t, "ass", e.RetrieveRaw())
}

func TestToggleLaw(t *testing.T) {
	tests := []struct {
		prefix  string
		trigger string
	}{
		{"bo", "ss"},
		{"ban", "ff"},
		{"ca", "rr"},
		{"nga", "xx"},
		{"ho", "jj"},
		{"ca", "aa"},
		{"ke", "ee"},
		{"co", "oo"},
		{"ca", "ww"},
		{"co", "ww"},
		{"tu", "ww"},
		{"nguo", "ww"},
		{"d", "dd"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix+tt.trigger, func(t *testing.T) {
			e := newEngine(t, tt.prefix)
			before := e.Peek()
			typeWord(e, tt.trigger)
			assert.Equal(t, before, e.Peek())
		})
	}
}

func TestBackspaceIsInverseOfPush(t *testing.T) {
	words := append([]string{"xyz123", "Nguowif", "toofcs", "1a2b"}, corpus...)
	for _, word := range words {
		t.Run(word, func(t *testing.T) {
			e := New(DefaultConfig())
			for _, c := range word {
				peek, state := e.Peek(), e.State()
				e.PushChar(c)
				e.Backspace()
				assert.Equal(t, peek, e.Peek(), "peek after backspace of %q", c)
				assert.Equal(t, state, e.State(), "state after backspace of %q", c)
				e.PushChar(c)
			}
		})
	}
}

func TestRetrieveRawIsConcatenation(t *testing.T) {
	e := New(DefaultConfig())
	typed := ""
	for _, c := range "dd,uowngf 2!Z" {
		typed += string(c)
		e.PushChar(c)
		assert.Equal(t, typed, e.RetrieveRaw())
	}
	e.Commit()
	assert.Equal(t, typed, e.RetrieveRaw())

	e.Backspace()
	assert.Equal(t, typed[:len(typed)-1], e.RetrieveRaw())
}

func TestResetMatchesFreshEngine(t *testing.T) {
	for _, word := range []string{"", "vieetj", "hello", "xyz123"} {
		e := newEngine(t, word)
		e.Commit()
		e.Reset()

		fresh := New(DefaultConfig())
		assert.Equal(t, fresh.State(), e.State())
		assert.Equal(t, fresh.Peek(), e.Peek())
		assert.Equal(t, fresh.Retrieve(), e.Retrieve())
		assert.Equal(t, fresh.RetrieveRaw(), e.RetrieveRaw())
		assert.Equal(t, fresh.Len(), e.Len())
	}
}

func TestCommit(t *testing.T) {
	t.Run("empty engine stays composing", func(t *testing.T) {
		e := New(DefaultConfig())
		assert.Equal(t, Composing, e.Commit())
	})

	t.Run("commit is idempotent", func(t *testing.T) {
		e := newEngine(t, "chaof")
		assert.Equal(t, CommittedValid, e.Commit())
		assert.Equal(t, CommittedValid, e.Commit())
		assert.Equal(t, "chào", e.Retrieve())
	})

	t.Run("push after commit starts a new word", func(t *testing.T) {
		e := newEngine(t, "chaof")
		e.Commit()
		assert.Equal(t, Valid, e.PushChar('b'))
		assert.Equal(t, "b", e.RetrieveRaw())
		assert.Equal(t, "b", e.Peek())
		assert.Equal(t, "", e.Retrieve())
	})

	t.Run("backspace reopens a committed word", func(t *testing.T) {
		e := newEngine(t, "banj")
		e.Commit()
		assert.Equal(t, Valid, e.Backspace())
		assert.Equal(t, "ban", e.Peek())
		assert.Equal(t, "", e.Retrieve())
	})
}

func TestCommitNeedsCompleteSyllable(t *testing.T) {
	tests := []struct {
		keys  string
		peek  string
		valid bool
	}{
		{"law", "lă", false},
		{"saw", "să", false},
		{"baa", "bâ", false},
		{"tiee", "tiê", false},
		{"tien", "tien", false},
		{"muow", "muơ", true},
		{"thuow", "thuơ", true},
		{"ng", "ng", false},
		{"lawm", "lăm", true},
		{"tieen", "tiên", true},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			e := newEngine(t, tt.keys)
			require.Equal(t, Valid, e.State())
			assert.Equal(t, tt.peek, e.Peek())

			if !tt.valid {
				assert.Equal(t, CommittedInvalid, e.Commit())
				assert.Equal(t, "", e.Retrieve())
				assert.Equal(t, tt.keys, e.RetrieveRaw())
				return
			}
			assert.Equal(t, CommittedValid, e.Commit())
			assert.Equal(t, tt.peek, e.Retrieve())
		})
	}
}

func TestLiteralMakesWordInvalid(t *testing.T) {
	e := newEngine(t, "ba")
	assert.Equal(t, ActionLiteral, TelexRules{}.Lookup(e.syllable.Shape(), '1').Kind)
	assert.Equal(t, Invalid, e.PushChar('1'))
	assert.Equal(t, Invalid, e.PushChar('s'))
	assert.Equal(t, "ba1s", e.Peek())

	e.Backspace()
	e.Backspace()
	assert.Equal(t, Valid, e.PushChar('s'))
	assert.Equal(t, "bá", e.Peek())
}

func TestBackspaceOnEmptyEngine(t *testing.T) {
	e := New(DefaultConfig())
	assert.Equal(t, Composing, e.Backspace())

	e.PushChar('a')
	assert.Equal(t, Composing, e.Backspace())
	assert.Equal(t, "", e.Peek())
}

func TestInvalidCanRecover(t *testing.T) {
	e := newEngine(t, "toofc")
	assert.Equal(t, Invalid, e.State())
	assert.Equal(t, "tồc", e.Peek())

	assert.Equal(t, Valid, e.PushChar('s'))
	assert.Equal(t, "tốc", e.Peek())
}

func TestRejectedKeyIsSticky(t *testing.T) {
	e := newEngine(t, "hel")
	assert.Equal(t, Invalid, e.State())
	assert.Equal(t, "hel", e.Peek())

	assert.Equal(t, Invalid, e.PushChar('s'))
	assert.Equal(t, "hels", e.Peek())

	e.Backspace()
	e.Backspace()
	assert.Equal(t, Valid, e.State())
	assert.Equal(t, "he", e.Peek())
}

func TestBackspacedInvalidStaysInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BackspacedInvalidStaysInvalid = true
	e := New(cfg)
	typeWord(e, "hello")
	require.Equal(t, Invalid, e.State())

	for _, want := range []string{"hell", "hel", "he", "h"} {
		assert.Equal(t, Invalid, e.Backspace())
		assert.Equal(t, want, e.Peek())
	}
	assert.Equal(t, Composing, e.Backspace())
	assert.Equal(t, Valid, e.PushChar('h'))
}

func TestTonePlacementConfig(t *testing.T) {
	tests := []struct {
		keys      string
		alternate string
		classic   string
	}{
		{"hoaf", "hoà", "hòa"},
		{"thuys", "thuý", "thúy"},
		{"hoef", "hoè", "hòe"},
		{"hoanf", "hoàn", "hoàn"},
		{"muaf", "mùa", "mùa"},
		{"khuyr", "khuỷ", "khủy"},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			alt := New(Config{AlternateOaUyTonePlacement: true})
			typeWord(alt, tt.keys)
			assert.Equal(t, tt.alternate, alt.Peek())

			classic := New(Config{})
			typeWord(classic, tt.keys)
			assert.Equal(t, tt.classic, classic.Peek())
		})
	}
}

func TestAcceptDAnywhere(t *testing.T) {
	e := New(Config{AcceptDAnywhere: true})
	assert.Equal(t, Valid, typeWord(e, "did"))
	assert.Equal(t, "đi", e.Peek())

	e = New(DefaultConfig())
	assert.Equal(t, Invalid, typeWord(e, "did"))
	assert.Equal(t, "did", e.Peek())
}

func TestSetConfig(t *testing.T) {
	e := New(DefaultConfig())
	typeWord(e, "di")
	assert.ErrorIs(t, e.SetConfig(Config{AcceptDAnywhere: true}), ErrConfigMidWord)

	e.Reset()
	require.NoError(t, e.SetConfig(Config{AcceptDAnywhere: true}))
	assert.True(t, e.Config().AcceptDAnywhere)
	typeWord(e, "did")
	assert.Equal(t, "đi", e.Peek())
}

func TestKeystrokes(t *testing.T) {
	e := newEngine(t, "aw")
	ks := e.Keystrokes()
	require.Len(t, ks, 2)
	assert.Equal(t, Keystroke{Char: 'a', Pos: 0}, ks[0])
	assert.Equal(t, Keystroke{Char: 'w', Pos: 1}, ks[1])

	ks[0].Char = 'x'
	assert.Equal(t, 'a', e.Keystrokes()[0].Char)
}

type rejectAll struct{}

func (rejectAll) Lookup(Shape, rune) Action { return Action{Kind: ActionReject} }

type acceptAll struct{}

func (acceptAll) Check(*Syllable) bool    { return true }
func (acceptAll) Complete(*Syllable) bool { return true }

func TestOptions(t *testing.T) {
	e := New(DefaultConfig(), WithRules(rejectAll{}))
	assert.Equal(t, Invalid, e.PushChar('a'))

	// Custom rules survive a config swap.
	e.Reset()
	require.NoError(t, e.SetConfig(Config{}))
	assert.Equal(t, Invalid, e.PushChar('a'))

	e = New(DefaultConfig(), WithValidator(acceptAll{}))
	assert.Equal(t, Valid, typeWord(e, "ka"))

	tables := DefaultTables()
	tables.Onsets = append(tables.Onsets, "kl")
	e = New(DefaultConfig(), WithTables(tables))
	assert.Equal(t, Valid, typeWord(e, "klaf"))
	assert.Equal(t, "klà", e.Peek())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "composing", Composing.String())
	assert.Equal(t, "committed-invalid", CommittedInvalid.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, CommittedValid.Committed())
	assert.False(t, Valid.Committed())
}
