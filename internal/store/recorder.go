package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/groutoutlook/VietType-powershell/internal/ime"
	"github.com/groutoutlook/VietType-powershell/internal/logging"
)

// Recorder writes committed words to a Store off the typing path. Observe
// never blocks: when the buffer is full the word is dropped and counted.
type Recorder struct {
	store  *Store
	logger *logging.Logger
	ch     chan Entry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewRecorder starts a recorder with room for buffer pending words.
func NewRecorder(s *Store, buffer int, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Recorder{
		store:  s,
		logger: logger.WithComponent("journal"),
		ch:     make(chan Entry, max(buffer, 1)),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.ch {
		if _, err := r.store.Record(context.Background(), e); err != nil {
			r.failed.Add(1)
			r.logger.Warn("record word", "error", err)
			continue
		}
		r.written.Add(1)
	}
}

// Observe queues a committed word. Its signature matches ime.CommitHook.
func (r *Recorder) Observe(w ime.Word) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	e := Entry{
		SessionID:   w.SessionID,
		AppID:       w.AppID,
		CommittedAt: w.At,
		Raw:         w.Raw,
		Composed:    w.Composed,
		Valid:       w.Valid,
	}
	select {
	case r.ch <- e:
	default:
		r.dropped.Add(1)
	}
}

// RecordSummary stores a closed session's summary synchronously.
func (r *Recorder) RecordSummary(ctx context.Context, s *ime.SessionSummary) error {
	if s == nil {
		return nil
	}
	return r.store.RecordSession(ctx, SessionRecord{
		ID:           s.SessionID,
		AppID:        s.AppID,
		DocID:        s.DocID,
		StartedAt:    s.StartTime,
		EndedAt:      s.EndTime,
		Keystrokes:   s.Keystrokes,
		ValidWords:   s.ValidWords,
		InvalidWords: s.InvalidWords,
	})
}

// RecorderStats counts what happened to observed words.
type RecorderStats struct {
	Written int64
	Dropped int64
	Failed  int64
}

// Stats returns the recorder counters.
func (r *Recorder) Stats() RecorderStats {
	return RecorderStats{
		Written: r.written.Load(),
		Dropped: r.dropped.Load(),
		Failed:  r.failed.Load(),
	}
}

// Close stops accepting words and waits until the queued ones are written
// or ctx ends. It does not close the Store.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		stats := r.Stats()
		r.logger.Debug("journal closed", "written", stats.Written, "dropped", stats.Dropped, "failed", stats.Failed)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
