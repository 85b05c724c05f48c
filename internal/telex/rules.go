package telex

import "unicode"

// ActionKind tags the variant held by an Action.
type ActionKind uint8

const (
	// ActionAppendLetter extends the syllable with Letter (marked with Mark).
	ActionAppendLetter ActionKind = iota
	// ActionApplyTone sets or toggles Tone; ToneLevel clears the tone.
	ActionApplyTone
	// ActionApplyDiacritic sets or toggles Mark on Target.
	ActionApplyDiacritic
	// ActionLiteral passes the key through with no linguistic meaning.
	ActionLiteral
	// ActionReject means the trigger has no valid target in this shape.
	ActionReject
)

var actionNames = [...]string{"append-letter", "apply-tone", "apply-diacritic", "literal", "reject"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

// Action is the outcome of a rule lookup. Only the fields relevant to
// Kind are set.
type Action struct {
	Kind   ActionKind
	Letter rune
	Mark   Mark
	Tone   Tone
	Target Target
}

// Rules maps the current syllable shape and the next keystroke to an
// Action. Lookup must be a pure function.
type Rules interface {
	Lookup(shape Shape, key rune) Action
}

// TelexRules is the standard Telex rule table.
//
//	key          no nucleus            nucleus present
//	s r x        onset letter          tone (toggle)
//	f j          reject                tone (toggle)
//	z            reject                clear tone; reject if none
//	a e o        letter                circumflex on closest same vowel, else letter
//	w            ư                     horn/breve (uo pair, bare ua, closest a o u);
//	                                   a bare final uo horns only the o
//	d            stroke a lone d       letter; stroke if AcceptDAnywhere
//	other a-z    letter                letter
//	non-letter   literal               literal
type TelexRules struct {
	// AcceptDAnywhere lets a d typed after the nucleus stroke a leading d.
	AcceptDAnywhere bool
}

// Lookup implements Rules.
func (r TelexRules) Lookup(shape Shape, key rune) Action {
	k := unicode.ToLower(key)
	if k < 'a' || k > 'z' {
		return Action{Kind: ActionLiteral}
	}
	hasNucleus := len(shape.Nucleus) > 0

	switch k {
	case 's', 'f', 'r', 'x', 'j':
		if hasNucleus {
			t, _ := toneForKey(k)
			return Action{Kind: ActionApplyTone, Tone: t}
		}
		if k == 'f' || k == 'j' {
			return reject()
		}
		return appendLetter(key)

	case 'z':
		if hasNucleus && shape.Tone != ToneLevel {
			return Action{Kind: ActionApplyTone, Tone: ToneLevel}
		}
		return reject()

	case 'd':
		if shape.Onset == "d" || shape.Onset == "đ" {
			if !hasNucleus || r.AcceptDAnywhere {
				return Action{
					Kind:   ActionApplyDiacritic,
					Mark:   MarkStroke,
					Target: Target{Slot: SlotOnset, Index: 0, Span: 1},
				}
			}
		}
		return appendLetter(key)

	case 'a', 'e', 'o':
		if i := closest(shape.Nucleus, k); i >= 0 {
			return Action{
				Kind:   ActionApplyDiacritic,
				Mark:   MarkCircumflex,
				Target: Target{Slot: SlotNucleus, Index: i, Span: 1},
			}
		}
		return appendLetter(key)

	case 'w':
		return lookupW(shape, unicode.IsUpper(key))
	}
	return appendLetter(key)
}

func lookupW(shape Shape, upper bool) Action {
	n := shape.Nucleus
	if len(n) == 0 {
		if shape.Onset == "q" || shape.Onset == "qu" {
			return reject()
		}
		letter := 'u'
		if upper {
			letter = 'U'
		}
		return Action{Kind: ActionAppendLetter, Letter: letter, Mark: MarkHorn}
	}
	for i := 0; i+1 < len(n); i++ {
		if n[i].Base != 'u' || n[i+1].Base != 'o' {
			continue
		}
		both := n[i].Mark == MarkHorn && n[i+1].Mark == MarkHorn
		if !both && i+2 == len(n) && shape.Coda == "" {
			// A bare uo at the end horns the o alone (thuở, huơ);
			// Syllable.ApplyMarkedLetter moves the horn onto the u too
			// once a coda or another vowel follows.
			return horn(i+1, 1)
		}
		return horn(i, 2)
	}
	if len(n) == 2 && n[0].Base == 'u' && n[1].Base == 'a' && shape.Coda == "" {
		return horn(0, 1)
	}
	for i := len(n) - 1; i >= 0; i-- {
		switch n[i].Base {
		case 'a':
			return Action{
				Kind:   ActionApplyDiacritic,
				Mark:   MarkBreve,
				Target: Target{Slot: SlotNucleus, Index: i, Span: 1},
			}
		case 'o', 'u':
			return horn(i, 1)
		}
	}
	return reject()
}

func horn(index, span int) Action {
	return Action{
		Kind:   ActionApplyDiacritic,
		Mark:   MarkHorn,
		Target: Target{Slot: SlotNucleus, Index: index, Span: span},
	}
}

func appendLetter(key rune) Action {
	return Action{Kind: ActionAppendLetter, Letter: key}
}

func reject() Action {
	return Action{Kind: ActionReject}
}

// closest returns the index of the last nucleus vowel with the given
// base, or -1.
func closest(nucleus []Vowel, base rune) int {
	for i := len(nucleus) - 1; i >= 0; i-- {
		if nucleus[i].Base == base {
			return i
		}
	}
	return -1
}
