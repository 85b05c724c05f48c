package ime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/groutoutlook/VietType-powershell/internal/logging"
	"github.com/groutoutlook/VietType-powershell/internal/metrics"
	"github.com/groutoutlook/VietType-powershell/internal/telex"
)

// ErrSessionClosed is returned for calls on a session after Close.
var ErrSessionClosed = errors.New("session closed")

// maxDocTail bounds the committed text a session remembers for
// backconversion.
const maxDocTail = 1024

// KeyKind classifies a key event.
type KeyKind uint8

const (
	// KeyChar produces a character (Key.Char).
	KeyChar KeyKind = iota
	// KeyBackspace deletes backwards.
	KeyBackspace
	// KeyEscape abandons composition and keeps the raw keystrokes.
	KeyEscape
	// KeyOther is any key that moves the caret or has no text meaning
	// (arrows, Home, Enter handled by the host, function keys).
	KeyOther
)

// Key represents a key event from the host.
type Key struct {
	// Code is the host's virtual key code, informational only.
	Code uint16

	// Char is the character the key produces when Kind is KeyChar.
	Char rune

	Kind KeyKind

	// Modifiers indicates which modifier keys are held.
	Modifiers Modifiers

	// Timestamp is when the key event occurred.
	// If zero, the current time will be used.
	Timestamp time.Time
}

// NewKey creates a character key.
func NewKey(char rune) Key {
	return Key{Char: char, Kind: KeyChar}
}

// NewKeyWithCode creates a character key with its virtual key code.
func NewKeyWithCode(code uint16, char rune) Key {
	return Key{Code: code, Char: char, Kind: KeyChar}
}

// NewSpecialKey creates a non-character key.
func NewSpecialKey(kind KeyKind) Key {
	return Key{Kind: kind}
}

// Modifiers represents modifier key state.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta // Command on macOS, Windows key on Windows
)

// chord reports whether the modifiers turn a key into a shortcut.
func (m Modifiers) chord() bool {
	return m&(ModControl|ModAlt|ModMeta) != 0
}

// InputOptions are the session-level behaviours around the engine.
type InputOptions struct {
	// BackconvertOnBackspace reopens the previous committed word when
	// backspace is pressed with nothing in composition.
	BackconvertOnBackspace bool

	// Boundaries lists extra characters that end a word, besides
	// whitespace, punctuation and symbols.
	Boundaries string

	// DefaultEnabled is the user on/off setting a new session starts
	// with. A disabled session passes every key through untouched.
	DefaultEnabled bool
}

func (o InputOptions) isBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) ||
		strings.ContainsRune(o.Boundaries, r)
}

// SessionOptions identifies the text context a session serves.
type SessionOptions struct {
	// AppID identifies the application (bundle ID, process name, etc.)
	AppID string

	// DocID identifies the document or text field.
	DocID string
}

// Validate checks that the session options are valid.
func (o SessionOptions) Validate() error {
	if o.AppID == "" {
		return errors.New("AppID is required")
	}
	if o.DocID == "" {
		return errors.New("DocID is required")
	}
	return nil
}

// Result tells the host what to do after a key.
type Result struct {
	// Delete is the number of runes before the caret the host must remove
	// before inserting Commit (backconversion pulls a word back into
	// composition this way).
	Delete int

	// Commit is final text to insert into the document.
	Commit string

	// Preedit is the in-progress composition to display after Commit.
	Preedit string

	// Handled is false when the host should also deliver the key to the
	// application.
	Handled bool

	// State is the engine state after the key.
	State telex.State
}

// Word is a committed word, reported to commit hooks.
type Word struct {
	SessionID string
	AppID     string
	Raw       string
	Composed  string // empty unless Valid
	Valid     bool
	At        time.Time
}

// CommitHook observes committed words. It runs on the typing path with
// the session locked and must not call back into the session.
type CommitHook func(Word)

// Session is one input context: one telex engine, the committed text
// before the caret, and the options it was opened with.
type Session struct {
	ID        string
	StartTime time.Time
	AppID     string
	DocID     string

	mu           sync.Mutex
	engine       *telex.Engine
	input        InputOptions
	pending      *telex.Config
	pendingInput *InputOptions
	doc          []byte
	closed       bool
	userEnabled  bool
	blocked      bool

	hook    CommitHook
	logger  *logging.Logger
	crash   *logging.CrashHandler
	metrics *metrics.IME

	keystrokes   int
	validWords   int
	invalidWords int
}

func newSession(id string, opts SessionOptions, cfg telex.Config, input InputOptions, engineOpts []telex.Option, hook CommitHook, logger *logging.Logger, crash *logging.CrashHandler) *Session {
	return &Session{
		ID:          id,
		StartTime:   time.Now(),
		AppID:       opts.AppID,
		DocID:       opts.DocID,
		engine:      telex.New(cfg, engineOpts...),
		input:       input,
		userEnabled: input.DefaultEnabled,
		hook:        hook,
		logger:      logger,
		crash:       crash,
	}
}

// HandleKey routes one key event through the engine.
func (s *Session) HandleKey(key Key) (res Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrSessionClosed
	}
	defer s.crash.Recover("handle key", func(logging.CrashReport) {
		// Drop the composition and let the key through; the keyboard
		// stays usable.
		s.metrics.RecordRecovery()
		s.engine.Reset()
		s.applyPending()
		res, err = Result{Handled: false, State: s.engine.State()}, nil
	})

	if !s.enabled() {
		// The host inserts the key itself; the text before the caret is
		// no longer what this session saw.
		s.doc = s.doc[:0]
		return Result{Handled: false, State: s.engine.State()}, nil
	}

	start := time.Now()
	defer func() { s.metrics.RecordKey(time.Since(start)) }()

	if key.Timestamp.IsZero() {
		key.Timestamp = start
	}
	s.keystrokes++

	switch {
	case key.Modifiers.chord():
		res = Result{Commit: s.commitWord(key.Timestamp), Handled: false}
	case key.Kind == KeyBackspace:
		res = s.backspace()
	case key.Kind == KeyEscape:
		res = s.escape(key.Timestamp)
	case key.Kind == KeyChar && key.Char != 0:
		res = s.char(key)
	default:
		res = Result{Commit: s.commitWord(key.Timestamp), Handled: false}
		s.doc = s.doc[:0]
	}
	res.State = s.engine.State()
	return res, nil
}

func (s *Session) char(key Key) Result {
	if s.input.isBoundary(key.Char) {
		text := s.commitWord(key.Timestamp) + string(key.Char)
		s.appendDoc(string(key.Char))
		return Result{Commit: text, Handled: true}
	}
	s.engine.PushChar(key.Char)
	return Result{Preedit: s.engine.Peek(), Handled: true}
}

func (s *Session) backspace() Result {
	if s.engine.Len() > 0 {
		s.engine.Backspace()
		if s.engine.Len() == 0 {
			s.engine.Reset()
			s.applyPending()
		}
		return Result{Preedit: s.engine.Peek(), Handled: true}
	}

	if s.input.BackconvertOnBackspace {
		if word := []rune(s.lastWord()); len(word) > 0 {
			// The word comes back into composition minus the rune the
			// backspace deletes.
			s.deleteDoc(len(word))
			if rest := string(word[:len(word)-1]); rest != "" {
				s.engine.Backconvert(rest)
			}
			s.metrics.RecordBackconvert()
			s.logger.Debug("backconvert", "word", string(word), "state", s.engine.State().String())
			return Result{Delete: len(word), Preedit: s.engine.Peek(), Handled: true}
		}
	}

	s.deleteDoc(1)
	return Result{Handled: false}
}

func (s *Session) escape(at time.Time) Result {
	if s.engine.Len() == 0 {
		return Result{Handled: false}
	}
	raw := s.engine.RetrieveRaw()
	s.invalidWords++
	s.metrics.RecordWord(false)
	s.emit(Word{Raw: raw, At: at})
	s.engine.Reset()
	s.applyPending()
	s.appendDoc(raw)
	return Result{Commit: raw, Handled: true}
}

// commitWord commits the composition and returns the text to insert.
func (s *Session) commitWord(at time.Time) string {
	if s.engine.Len() == 0 {
		return ""
	}
	var text string
	w := Word{Raw: s.engine.RetrieveRaw(), At: at}
	if s.engine.Commit() == telex.CommittedValid {
		text = s.engine.Retrieve()
		w.Composed, w.Valid = text, true
		s.validWords++
	} else {
		text = w.Raw
		s.invalidWords++
	}
	s.metrics.RecordWord(w.Valid)
	s.emit(w)
	s.engine.Reset()
	s.applyPending()
	s.appendDoc(text)
	return text
}

func (s *Session) emit(w Word) {
	w.SessionID, w.AppID = s.ID, s.AppID
	s.logger.Debug("word committed", "raw", w.Raw, "composed", w.Composed, "valid", w.Valid)
	if s.hook != nil {
		s.hook(w)
	}
}

// Commit ends the word in progress, as a caret move or focus loss would,
// and returns the text to insert.
func (s *Session) Commit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.commitWord(time.Now()), nil
}

func (s *Session) enabled() bool {
	return s.userEnabled && !s.blocked
}

// Enabled reports whether keys go through the engine: the user setting is
// on and the session is not blocked.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled()
}

// SetEnabled changes the user on/off setting. Turning the session off
// commits the word in progress and returns the text to insert. The setting
// cannot change while the session is blocked.
func (s *Session) SetEnabled(on bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.blocked {
		return "", nil
	}
	return s.setUserEnabled(on), nil
}

// Toggle flips the user on/off setting and reports the new state along
// with any text committed by turning the session off.
func (s *Session) Toggle() (commit string, enabled bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrSessionClosed
	}
	if s.blocked {
		return "", false, nil
	}
	commit = s.setUserEnabled(!s.userEnabled)
	return commit, s.enabled(), nil
}

func (s *Session) setUserEnabled(on bool) string {
	if on == s.userEnabled {
		return ""
	}
	var text string
	if !on {
		text = s.commitWord(time.Now())
	}
	s.userEnabled = on
	s.logger.Debug("session toggled", "enabled", on)
	return text
}

// SetBlocked disables the session regardless of the user setting, for
// fields that must not be composed into (passwords, read-only text).
// Blocking commits the word in progress; unblocking restores the user
// setting.
func (s *Session) SetBlocked(blocked bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	var text string
	if blocked && !s.blocked {
		text = s.commitWord(time.Now())
	}
	s.blocked = blocked
	return text, nil
}

// Preedit returns the composition currently on display.
func (s *Session) Preedit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Peek()
}

// SetConfig changes the engine and input options. The change is applied
// at once between words and deferred to the next word boundary otherwise.
func (s *Session) SetConfig(cfg telex.Config, input InputOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending, s.pendingInput = &cfg, &input
	if s.engine.Len() == 0 {
		s.applyPending()
	}
}

func (s *Session) applyPending() {
	if s.pending == nil {
		return
	}
	if err := s.engine.SetConfig(*s.pending); err != nil {
		return
	}
	s.input = *s.pendingInput
	s.pending, s.pendingInput = nil, nil
	s.logger.Debug("config applied")
}

// OnTextCommit records text the host inserted without going through
// HandleKey (paste, autocomplete).
func (s *Session) OnTextCommit(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.appendDoc(text)
	return nil
}

// OnTextDelete records that count runes before the caret were deleted by
// the host.
func (s *Session) OnTextDelete(count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.deleteDoc(count)
	return nil
}

// OnCaretMoved forgets the text before the caret; it no longer matches
// what the session saw.
func (s *Session) OnCaretMoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.doc[:0]
}

func (s *Session) appendDoc(text string) {
	s.doc = append(s.doc, text...)
	if over := len(s.doc) - maxDocTail; over > 0 {
		// Cut at a rune boundary.
		for over < len(s.doc) && !utf8.RuneStart(s.doc[over]) {
			over++
		}
		s.doc = append(s.doc[:0], s.doc[over:]...)
	}
}

func (s *Session) deleteDoc(count int) {
	end := len(s.doc)
	for ; count > 0 && end > 0; count-- {
		_, size := utf8.DecodeLastRune(s.doc[:end])
		end -= size
	}
	s.doc = s.doc[:end]
}

// lastWord returns the letters directly before the caret.
func (s *Session) lastWord() string {
	end := len(s.doc)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRune(s.doc[:start])
		if !unicode.IsLetter(r) || s.input.isBoundary(r) {
			break
		}
		start -= size
	}
	return string(s.doc[start:end])
}

// Document returns the committed text before the caret that the session
// is tracking.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.doc)
}

// SessionInfo contains read-only session information.
type SessionInfo struct {
	ID         string
	StartTime  time.Time
	AppID      string
	DocID      string
	State      telex.State
	Preedit    string
	Keystrokes int
	Words      int
	Enabled    bool
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:         s.ID,
		StartTime:  s.StartTime,
		AppID:      s.AppID,
		DocID:      s.DocID,
		State:      s.engine.State(),
		Preedit:    s.engine.Peek(),
		Keystrokes: s.keystrokes,
		Words:      s.validWords + s.invalidWords,
		Enabled:    s.enabled(),
	}
}

// SessionSummary is produced when a session closes.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	AppID        string    `json:"app_id"`
	DocID        string    `json:"doc_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Keystrokes   int       `json:"keystrokes"`
	ValidWords   int       `json:"valid_words"`
	InvalidWords int       `json:"invalid_words"`
	// FinalCommit is the text flushed from the composition at close.
	FinalCommit string `json:"final_commit,omitempty"`
}

// ToJSON returns the summary as a JSON string.
func (s *SessionSummary) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	return string(data), nil
}

// close commits any pending word and marks the session closed.
func (s *Session) close() *SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	now := time.Now()
	final := s.commitWord(now)
	s.closed = true
	return &SessionSummary{
		SessionID:    s.ID,
		AppID:        s.AppID,
		DocID:        s.DocID,
		StartTime:    s.StartTime,
		EndTime:      now,
		Keystrokes:   s.keystrokes,
		ValidWords:   s.validWords,
		InvalidWords: s.invalidWords,
		FinalCommit:  final,
	}
}
