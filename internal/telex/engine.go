package telex

import "errors"

// ErrConfigMidWord is returned by SetConfig while a word is in progress.
var ErrConfigMidWord = errors.New("telex: config change while composing a word")

// Option customises an Engine at construction.
type Option func(*Engine)

// WithRules replaces the Telex rule table.
func WithRules(r Rules) Option {
	return func(e *Engine) {
		e.rules = r
		e.customRules = true
	}
}

// WithValidator replaces the phonotactic validity checker.
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithTables builds the validity checker from t.
func WithTables(t *Tables) Option {
	return func(e *Engine) {
		e.validator = NewValidator(t)
	}
}

// Engine composes one word at a time from Telex keystrokes.
//
// An Engine is owned by a single caller and is not safe for concurrent
// use. Every operation is a bounded in-memory computation.
type Engine struct {
	cfg         Config
	rules       Rules
	customRules bool
	validator   Validator

	history  History
	syllable *Syllable
	state    State

	// rejected is set once a keystroke could not be applied; the rest of
	// the word is then carried literally.
	rejected bool
	// forceInvalid holds a word invalid across backspaces when
	// BackspacedInvalidStaysInvalid is on.
	forceInvalid bool
	committed    string
}

// New returns an engine in the Composing state.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rules == nil {
		e.rules = TelexRules{AcceptDAnywhere: cfg.AcceptDAnywhere}
	}
	if e.validator == nil {
		e.validator = NewValidator(nil)
	}
	e.Reset()
	return e
}

// Config returns the active options.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig swaps the options. It is only allowed between words, when
// the history is empty.
func (e *Engine) SetConfig(cfg Config) error {
	if e.history.Len() > 0 {
		return ErrConfigMidWord
	}
	e.cfg = cfg
	if !e.customRules {
		e.rules = TelexRules{AcceptDAnywhere: cfg.AcceptDAnywhere}
	}
	e.syllable = NewSyllable(cfg)
	return nil
}

// Reset discards the word in progress and returns to Composing.
func (e *Engine) Reset() {
	e.history.Clear()
	e.syllable = NewSyllable(e.cfg)
	e.state = Composing
	e.rejected = false
	e.forceInvalid = false
	e.committed = ""
}

// PushChar records c and applies it. Pushing into a committed engine
// starts a new word: the engine resets first.
func (e *Engine) PushChar(c rune) State {
	if e.state.Committed() {
		e.Reset()
	}
	e.history.Push(c)
	e.step(c)
	e.state = e.evaluate()
	return e.state
}

// Backspace removes the last keystroke and recomposes the word by
// replaying the remaining keystrokes from scratch. A committed word is
// reopened.
func (e *Engine) Backspace() State {
	wasInvalid := e.state == Invalid || e.state == CommittedInvalid
	if _, ok := e.history.Pop(); !ok {
		e.Reset()
		return e.state
	}
	e.replay()
	e.committed = ""
	if e.history.Len() == 0 {
		e.forceInvalid = false
	} else if e.cfg.BackspacedInvalidStaysInvalid && wasInvalid {
		e.forceInvalid = true
	}
	e.state = e.evaluate()
	return e.state
}

// Commit finalises the word. A Valid word that is also a complete
// syllable freezes the composed text; anything else, including a Valid
// word that stopped short ("law" composing "lă"), commits the raw
// keystrokes. An empty or already committed engine is unchanged.
func (e *Engine) Commit() State {
	switch e.state {
	case Valid:
		if !e.validator.Complete(e.syllable) {
			e.state = CommittedInvalid
			break
		}
		e.committed = e.syllable.Render()
		e.state = CommittedValid
	case Invalid:
		e.state = CommittedInvalid
	}
	return e.state
}

// Peek renders the word in progress without changing anything. Once a
// keystroke has been rejected the raw keystrokes are shown instead.
func (e *Engine) Peek() string {
	if e.rejected || e.forceInvalid {
		return e.history.Raw()
	}
	return e.syllable.Render()
}

// Retrieve returns the text frozen by a CommittedValid commit, or "".
func (e *Engine) Retrieve() string {
	if e.state != CommittedValid {
		return ""
	}
	return e.committed
}

// RetrieveRaw returns the keystrokes exactly as typed.
func (e *Engine) RetrieveRaw() string {
	return e.history.Raw()
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Len returns the number of keystrokes in the word.
func (e *Engine) Len() int { return e.history.Len() }

// Keystrokes returns a copy of the keystroke history.
func (e *Engine) Keystrokes() []Keystroke { return e.history.Keys() }

func (e *Engine) step(c rune) {
	if e.rejected {
		return
	}
	a := e.rules.Lookup(e.syllable.Shape(), c)
	var ok bool
	switch a.Kind {
	case ActionAppendLetter:
		ok = e.syllable.ApplyMarkedLetter(a.Letter, a.Mark)
	case ActionApplyTone:
		ok = e.syllable.ApplyTone(a.Tone)
	case ActionApplyDiacritic:
		ok = e.syllable.ApplyDiacritic(a.Mark, a.Target)
	case ActionLiteral:
		// A digit or punctuation mark has no place in a syllable; the word
		// stays as typed.
		ok = false
	case ActionReject:
		ok = false
	}
	if !ok {
		e.rejected = true
	}
}

func (e *Engine) replay() {
	e.syllable = NewSyllable(e.cfg)
	e.rejected = false
	for _, k := range e.history.keys {
		e.step(k.Char)
	}
}

func (e *Engine) evaluate() State {
	switch {
	case e.history.Len() == 0:
		return Composing
	case e.rejected || e.forceInvalid:
		return Invalid
	case !e.validator.Check(e.syllable):
		return Invalid
	}
	return Valid
}
