package metrics

import "time"

// IME holds the input method metrics. A nil *IME records nothing, so
// callers need no checks.
type IME struct {
	registry *Registry

	Keystrokes     *Counter
	ValidWords     *Counter
	InvalidWords   *Counter
	Backconverts   *Counter
	Recoveries     *Counter
	SessionsOpened *Counter

	ActiveSessions *Gauge

	KeyLatency *Histogram
}

// NewIME registers the input method metrics in registry, or in a new
// "viettype" registry when registry is nil.
func NewIME(registry *Registry) *IME {
	if registry == nil {
		registry = NewRegistry("viettype")
	}
	return &IME{
		registry: registry,

		Keystrokes: registry.Counter("keystrokes_total",
			"Keys handled by input sessions", nil),
		ValidWords: registry.Counter("words_committed_total",
			"Words committed, by outcome", Labels{"outcome": "valid"}),
		InvalidWords: registry.Counter("words_committed_total",
			"Words committed, by outcome", Labels{"outcome": "invalid"}),
		Backconverts: registry.Counter("backconverts_total",
			"Committed words pulled back into composition by backspace", nil),
		Recoveries: registry.Counter("recoveries_total",
			"Panics recovered while handling a key", nil),
		SessionsOpened: registry.Counter("sessions_opened_total",
			"Input sessions opened", nil),

		ActiveSessions: registry.Gauge("sessions_active",
			"Input sessions currently open", nil),

		KeyLatency: registry.Histogram("key_handle_seconds",
			"Time spent handling one key", nil, LatencyBuckets),
	}
}

// Registry returns the registry the metrics live in.
func (m *IME) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordKey counts a handled key and its latency.
func (m *IME) RecordKey(d time.Duration) {
	if m == nil {
		return
	}
	m.Keystrokes.Inc()
	m.KeyLatency.ObserveDuration(d)
}

// RecordWord counts a committed word.
func (m *IME) RecordWord(valid bool) {
	if m == nil {
		return
	}
	if valid {
		m.ValidWords.Inc()
	} else {
		m.InvalidWords.Inc()
	}
}

// RecordBackconvert counts a word reopened by backspace.
func (m *IME) RecordBackconvert() {
	if m == nil {
		return
	}
	m.Backconverts.Inc()
}

// RecordRecovery counts a recovered panic.
func (m *IME) RecordRecovery() {
	if m == nil {
		return
	}
	m.Recoveries.Inc()
}

// SessionOpened counts an opened session.
func (m *IME) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
	m.ActiveSessions.Inc()
}

// SessionClosed marks a session closed.
func (m *IME) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}
