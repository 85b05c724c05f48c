package metrics

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsString(t *testing.T) {
	assert.Equal(t, "", Labels(nil).String())
	assert.Equal(t, `{a="1",b="2"}`, Labels{"b": "2", "a": "1"}.String())
}

func TestRegistryReturnsSameSeries(t *testing.T) {
	r := NewRegistry("test")

	c1 := r.Counter("hits_total", "hits", Labels{"kind": "a"})
	c2 := r.Counter("hits_total", "hits", Labels{"kind": "a"})
	c3 := r.Counter("hits_total", "hits", Labels{"kind": "b"})
	assert.Same(t, c1, c2)
	assert.NotSame(t, c1, c3)

	c1.Inc()
	c2.Add(2)
	assert.Equal(t, uint64(3), c1.Value())
	assert.Zero(t, c3.Value())
}

func TestGauge(t *testing.T) {
	g := NewRegistry("").Gauge("open", "open things", nil)
	g.Inc()
	g.Inc()
	g.Dec()
	assert.Equal(t, int64(1), g.Value())
	g.Set(7)
	assert.Equal(t, int64(7), g.Value())
}

func TestHistogramBuckets(t *testing.T) {
	h := NewRegistry("").Histogram("size", "sizes", nil, []float64{10, 1, 5})

	for _, v := range []float64{0.5, 1, 3, 5, 7, 20} {
		h.Observe(v)
	}

	assert.Equal(t, uint64(6), h.Count())
	assert.InDelta(t, 36.5/6, h.Mean(), 1e-9)
	// le=1, le=5, le=10, +Inf
	assert.Equal(t, []uint64{2, 4, 5, 6}, h.Cumulative())
}

func TestHistogramEmptyMean(t *testing.T) {
	h := NewRegistry("").Histogram("latency", "latency", nil, nil)
	assert.Zero(t, h.Mean())
	assert.Len(t, h.Cumulative(), len(LatencyBuckets)+1)
}

func TestWritePrometheus(t *testing.T) {
	r := NewRegistry("viettype")
	r.Counter("words_total", "Words", Labels{"outcome": "valid"}).Add(3)
	r.Counter("words_total", "Words", Labels{"outcome": "invalid"}).Inc()
	r.Gauge("sessions_active", "Sessions", nil).Set(2)
	r.Histogram("key_seconds", "Key time", nil, []float64{0.001, 0.01}).ObserveDuration(2 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.WritePrometheus(&buf))

	want := `# HELP viettype_words_total Words
# TYPE viettype_words_total counter
viettype_words_total{outcome="invalid"} 1
viettype_words_total{outcome="valid"} 3
# HELP viettype_sessions_active Sessions
# TYPE viettype_sessions_active gauge
viettype_sessions_active 2
# HELP viettype_key_seconds Key time
# TYPE viettype_key_seconds histogram
viettype_key_seconds_bucket{le="0.001"} 0
viettype_key_seconds_bucket{le="0.01"} 1
viettype_key_seconds_bucket{le="+Inf"} 1
viettype_key_seconds_sum 0.002
viettype_key_seconds_count 1
`
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePrometheusReportsError(t *testing.T) {
	r := NewRegistry("x")
	r.Counter("a", "a", nil).Inc()
	assert.EqualError(t, r.WritePrometheus(failingWriter{}), "disk full")
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry("v")
	r.Counter("c", "c", Labels{"k": "x"}).Add(2)
	r.Gauge("g", "g", nil).Set(-1)
	r.Histogram("h", "h", nil, nil).Observe(0.5)

	snap := r.Snapshot()
	assert.Equal(t, uint64(2), snap[`v_c{k="x"}`])
	assert.Equal(t, int64(-1), snap["v_g"])
	assert.Equal(t, uint64(1), snap["v_h_count"])
	assert.Equal(t, 0.5, snap["v_h_mean"])
}

func TestIMENilIsNoop(t *testing.T) {
	var m *IME
	assert.NotPanics(t, func() {
		m.RecordKey(time.Millisecond)
		m.RecordWord(true)
		m.RecordBackconvert()
		m.RecordRecovery()
		m.SessionOpened()
		m.SessionClosed()
	})
	assert.Nil(t, m.Registry())
}

func TestIMEConcurrent(t *testing.T) {
	m := NewIME(nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SessionOpened()
			for i := 0; i < 100; i++ {
				m.RecordKey(time.Microsecond)
				m.RecordWord(i%4 != 0)
			}
			m.SessionClosed()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), m.Keystrokes.Value())
	assert.Equal(t, uint64(600), m.ValidWords.Value())
	assert.Equal(t, uint64(200), m.InvalidWords.Value())
	assert.Equal(t, uint64(8), m.SessionsOpened.Value())
	assert.Zero(t, m.ActiveSessions.Value())
	assert.Equal(t, uint64(800), m.KeyLatency.Count())

	var buf bytes.Buffer
	require.NoError(t, m.Registry().WritePrometheus(&buf))
	assert.True(t, strings.Contains(buf.String(), `viettype_words_committed_total{outcome="valid"} 600`))
}
