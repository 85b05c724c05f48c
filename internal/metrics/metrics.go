// Package metrics provides Prometheus-compatible counters, gauges and
// histograms for viettype. Metrics live in a Registry and are written in the
// Prometheus text format or as a flat snapshot.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Labels represents metric labels.
type Labels map[string]string

// String renders labels in Prometheus syntax, keys sorted.
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}

	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(l))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, l[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels Labels
	value  atomic.Uint64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds the given value to the counter.
func (c *Counter) Add(v uint64) {
	c.value.Add(v)
}

// Value returns the current value.
func (c *Counter) Value() uint64 {
	return c.value.Load()
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name   string
	help   string
	labels Labels
	value  atomic.Int64
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v int64) {
	g.value.Store(v)
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Value returns the current value.
func (g *Gauge) Value() int64 {
	return g.value.Load()
}

// Histogram tracks the distribution of values.
type Histogram struct {
	name    string
	help    string
	labels  Labels
	buckets []float64

	mu sync.Mutex
	// counts[i] holds observations in (buckets[i-1], buckets[i]]; the last
	// slot is the +Inf bucket.
	counts []uint64
	sum    float64
	count  uint64
}

// LatencyBuckets are buckets in seconds for work done on the typing path,
// from a microsecond to 50ms.
var LatencyBuckets = []float64{
	0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05,
}

func newHistogram(name, help string, labels Labels, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = LatencyBuckets
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)

	return &Histogram{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: sorted,
		counts:  make([]uint64, len(sorted)+1),
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += v
	h.count++
	// First bucket whose upper bound is >= v.
	h.counts[sort.SearchFloat64s(h.buckets, v)]++
}

// ObserveDuration records a duration in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Count returns the count of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Mean returns the mean of observed values.
func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	return h.sum / float64(h.count)
}

// Cumulative returns the Prometheus bucket counts: for each upper bound,
// the observations less than or equal to it, ending with +Inf.
func (h *Histogram) Cumulative() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint64, len(h.counts))
	var total uint64
	for i, c := range h.counts {
		total += c
		out[i] = total
	}
	return out
}

// Registry holds all registered metrics.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram

	namespace string
}

// NewRegistry creates a registry whose metric names are prefixed with
// namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
		namespace:  namespace,
	}
}

// key identifies a series: the full name plus its labels.
func (r *Registry) key(name string, labels Labels) string {
	return r.fullName(name) + labels.String()
}

func (r *Registry) fullName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

// Counter returns the counter for name and labels, registering it on first
// use.
func (r *Registry) Counter(name, help string, labels Labels) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := r.key(name, labels)
	if c, ok := r.counters[k]; ok {
		return c
	}
	c := &Counter{name: r.fullName(name), help: help, labels: labels}
	r.counters[k] = c
	return c
}

// Gauge returns the gauge for name and labels, registering it on first use.
func (r *Registry) Gauge(name, help string, labels Labels) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := r.key(name, labels)
	if g, ok := r.gauges[k]; ok {
		return g
	}
	g := &Gauge{name: r.fullName(name), help: help, labels: labels}
	r.gauges[k] = g
	return g
}

// Histogram returns the histogram for name and labels, registering it on
// first use. nil buckets select LatencyBuckets.
func (r *Registry) Histogram(name, help string, labels Labels, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := r.key(name, labels)
	if h, ok := r.histograms[k]; ok {
		return h
	}
	h := newHistogram(r.fullName(name), help, labels, buckets)
	r.histograms[k] = h
	return h
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WritePrometheus writes metrics in Prometheus text format, sorted by
// series. HELP and TYPE lines are written once per metric name.
func (r *Registry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bw := &errWriter{w: w}
	seen := map[string]bool{}
	header := func(name, help, typ string) {
		if seen[name] {
			return
		}
		seen[name] = true
		bw.printf("# HELP %s %s\n", name, help)
		bw.printf("# TYPE %s %s\n", name, typ)
	}

	for _, k := range sortedKeys(r.counters) {
		c := r.counters[k]
		header(c.name, c.help, "counter")
		bw.printf("%s%s %d\n", c.name, c.labels.String(), c.Value())
	}

	for _, k := range sortedKeys(r.gauges) {
		g := r.gauges[k]
		header(g.name, g.help, "gauge")
		bw.printf("%s%s %d\n", g.name, g.labels.String(), g.Value())
	}

	for _, k := range sortedKeys(r.histograms) {
		h := r.histograms[k]
		header(h.name, h.help, "histogram")

		labelStr := h.labels.String()
		if labelStr == "" {
			labelStr = "{"
		} else {
			labelStr = labelStr[:len(labelStr)-1] + ","
		}

		cumulative := h.Cumulative()
		for i, bound := range h.buckets {
			bw.printf("%s_bucket%sle=\"%g\"} %d\n", h.name, labelStr, bound, cumulative[i])
		}
		bw.printf("%s_bucket%sle=\"+Inf\"} %d\n", h.name, labelStr, cumulative[len(h.buckets)])

		h.mu.Lock()
		sum, count := h.sum, h.count
		h.mu.Unlock()
		bw.printf("%s_sum%s %g\n", h.name, h.labels.String(), sum)
		bw.printf("%s_count%s %d\n", h.name, h.labels.String(), count)
	}

	return bw.err
}

// Snapshot returns every series' current value keyed by series name.
// Histograms contribute _count and _mean entries.
func (r *Registry) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]any)
	for k, c := range r.counters {
		snapshot[k] = c.Value()
	}
	for k, g := range r.gauges {
		snapshot[k] = g.Value()
	}
	for _, h := range r.histograms {
		labels := h.labels.String()
		snapshot[h.name+"_count"+labels] = h.Count()
		snapshot[h.name+"_mean"+labels] = h.Mean()
	}
	return snapshot
}

// errWriter keeps the first write error so a long exposition can be
// written without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
