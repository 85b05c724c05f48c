package ime

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/groutoutlook/VietType-powershell/internal/logging"
	"github.com/groutoutlook/VietType-powershell/internal/metrics"
	"github.com/groutoutlook/VietType-powershell/internal/telex"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns one Session per active input context. Sessions never share
// an engine; the manager only hands out and retires them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      telex.Config
	input    InputOptions
	engine   []telex.Option
	hooks    []CommitHook
	logger   *logging.Logger
	crash    *logging.CrashHandler
	metrics  *metrics.IME
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger sessions log through.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithCommitHook adds an observer for committed words.
func WithCommitHook(h CommitHook) ManagerOption {
	return func(m *Manager) { m.hooks = append(m.hooks, h) }
}

// WithEngineOptions passes opts to the engine of every new session.
func WithEngineOptions(opts ...telex.Option) ManagerOption {
	return func(m *Manager) { m.engine = append(m.engine, opts...) }
}

// WithMetrics records key, word and session metrics in m.
func WithMetrics(m *metrics.IME) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithCrashDir writes a JSON report for every panic recovered while
// handling keys.
func WithCrashDir(dir string) ManagerOption {
	return func(m *Manager) { m.crash.Dir = dir }
}

// NewManager creates a manager whose sessions start with cfg and input.
func NewManager(cfg telex.Config, input InputOptions, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		input:    input,
		crash:    &logging.CrashHandler{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	m.logger = m.logger.WithComponent("ime")
	m.crash.Logger = m.logger
	return m
}

// Open starts a session for a new input context. Missing identifiers are
// recorded as "unknown".
func (m *Manager) Open(opts SessionOptions) (*Session, error) {
	if opts.AppID == "" {
		opts.AppID = "unknown"
	}
	if opts.DocID == "" {
		opts.DocID = "unknown"
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSession(id, opts, m.cfg, m.input, m.engine, m.fanOut(), m.logger.WithSession(id), m.crash)
	s.metrics = m.metrics
	m.sessions[id] = s
	m.metrics.SessionOpened()
	m.logger.Info("session opened", "session_id", id, "app_id", opts.AppID)
	return s, nil
}

func (m *Manager) fanOut() CommitHook {
	if len(m.hooks) == 0 {
		return nil
	}
	hooks := append([]CommitHook(nil), m.hooks...)
	return func(w Word) {
		for _, h := range hooks {
			h(w)
		}
	}
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close commits the session's pending word, retires it and returns its
// summary.
func (m *Manager) Close(id string) (*SessionSummary, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	summary := s.close()
	m.metrics.SessionClosed()
	m.logger.Info("session closed", "session_id", id,
		"keystrokes", summary.Keystrokes,
		"valid_words", summary.ValidWords,
		"invalid_words", summary.InvalidWords)
	return summary, nil
}

// CloseAll closes every session.
func (m *Manager) CloseAll() []*SessionSummary {
	var out []*SessionSummary
	for _, id := range m.IDs() {
		if s, err := m.Close(id); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// IDs lists the open sessions in a stable order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Config returns the options new sessions start with.
func (m *Manager) Config() (telex.Config, InputOptions) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg, m.input
}

// ApplyConfig switches every session, and every later one, to cfg and
// input. Sessions in the middle of a word switch at the next boundary.
func (m *Manager) ApplyConfig(cfg telex.Config, input InputOptions) {
	m.mu.Lock()
	m.cfg, m.input = cfg, input
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.SetConfig(cfg, input)
	}
	m.logger.Info("config applied", "sessions", len(sessions))
}
