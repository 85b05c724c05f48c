// Package ime connects the telex engine to a host input method.
//
// # Architecture Overview
//
// A host (TSF text service, IBus engine, terminal line editor) owns the
// keyboard and the document. For every focused text field it opens a
// Session and forwards key events; the session answers with what to draw
// and what to commit:
//
//	Key Event → Session.HandleKey → Result{Delete, Commit, Preedit, Handled}
//	                 ↓
//	           telex.Engine (one per session)
//	                 ↓
//	           CommitHook (word journal)
//
// # Sessions
//
// Each session owns exactly one engine. There is no shared table of
// engines and no reference counting: the Manager creates a session on
// focus and retires it with Close. Calls on one session are serialised by
// the session's mutex; different sessions never contend.
//
// # Key Routing
//
//	┌────────────────────────┬──────────────────────────────────────────┐
//	│ Key                    │ Effect                                   │
//	├────────────────────────┼──────────────────────────────────────────┤
//	│ letter, digit          │ PushChar, preedit updated                │
//	│ space, punctuation     │ commit word + the character              │
//	│ Backspace (composing)  │ engine Backspace                         │
//	│ Backspace (idle)       │ backconvert the previous word, if enabled│
//	│ Escape                 │ commit the raw keystrokes                │
//	│ Ctrl/Alt/Meta chord    │ commit word, key passes through          │
//	│ other keys             │ commit word, key passes through          │
//	└────────────────────────┴──────────────────────────────────────────┘
//
// A committed word is the composed text when the engine ends in
// CommittedValid and the raw keystrokes otherwise.
//
// # Configuration Changes
//
// Manager.ApplyConfig reaches every session. A session with a word in
// progress keeps its current options until the word is committed, so an
// engine never sees its configuration change mid-word.
package ime
