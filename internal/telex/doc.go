// Package telex implements the Telex Vietnamese transliteration engine.
//
// # Overview
//
// The engine consumes one keystroke at a time and keeps a single syllable
// in composition. Plain letters build the onset, nucleus and coda; trailing
// ASCII triggers add tones and letter diacritics:
//
//	┌─────────┬──────────────────────────────┬──────────────────────┐
//	│ Key     │ Effect                       │ Example              │
//	├─────────┼──────────────────────────────┼──────────────────────┤
//	│ s       │ sắc (rising)                 │ as   → á             │
//	│ f       │ huyền (falling)              │ af   → à             │
//	│ r       │ hỏi (question)               │ ar   → ả             │
//	│ x       │ ngã (tumbling)               │ ax   → ã             │
//	│ j       │ nặng (heavy)                 │ aj   → ạ             │
//	│ z       │ clear tone                   │ asz  → a             │
//	│ aa ee oo│ circumflex                   │ aa   → â             │
//	│ w       │ breve / horn                 │ aw → ă, ow → ơ, w → ư│
//	│ dd      │ stroked d                    │ dd   → đ             │
//	└─────────┴──────────────────────────────┴──────────────────────┘
//
// Repeating a trigger on the same target undoes it: "ass" gives "a" and
// "aaa" gives "a". The keystrokes stay in the history either way.
//
// # Pipeline
//
//	PushChar(c)
//	     ↓
//	History.Push        raw keystroke log, kept for RetrieveRaw
//	     ↓
//	Rules.Lookup        (Shape, key) → Action
//	     ↓
//	Syllable.Apply*     onset / nucleus / coda / tone mutation
//	     ↓
//	Validator.Check     phonotactics → Valid | Invalid
//
// Backspace pops the last keystroke and replays the rest through the same
// pipeline from an empty syllable, so it is the exact inverse of PushChar.
//
// # States
//
//	Composing ──push──→ Valid ⇄ Invalid
//	                     │        │
//	                  Commit   Commit
//	                     ↓        ↓
//	          CommittedValid  CommittedInvalid
//
// Valid means plausible: "tie" may still become "tiếng". Commit asks
// Validator.Complete, so a Valid word that stopped short commits as
// CommittedInvalid and keeps the raw keystrokes.
//
// Reset returns to Composing from anywhere. PushChar on a committed engine
// resets first and starts a new word. Backspace reopens a committed word.
//
// # Ownership
//
// An Engine belongs to one input context. It has no locks and no I/O; the
// caller serialises access and swaps Config only between words.
package telex
