package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"time"
)

// CrashReport describes a recovered panic.
type CrashReport struct {
	Timestamp  time.Time `json:"timestamp"`
	Op         string    `json:"op"`
	GOOS       string    `json:"goos"`
	GOARCH     string    `json:"goarch"`
	PanicValue string    `json:"panic_value"`
	StackTrace string    `json:"stack_trace"`
}

// CrashHandler turns panics into log entries and, when Dir is set, JSON
// crash reports. An input method must keep the keyboard alive, so callers
// recover and carry on rather than exit.
type CrashHandler struct {
	Logger *Logger
	Dir    string
}

// Recover must be deferred directly:
//
//	defer h.Recover("handle key", func(CrashReport) { s.engine.Reset() })
func (h *CrashHandler) Recover(op string, onPanic func(CrashReport)) {
	v := recover()
	if v == nil {
		return
	}
	report := CrashReport{
		Timestamp:  time.Now().UTC(),
		Op:         op,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		PanicValue: fmt.Sprint(v),
		StackTrace: string(debug.Stack()),
	}

	log := h.Logger
	if log == nil {
		log = Default()
	}
	log.Error("recovered panic", "op", op, "panic", report.PanicValue)

	if h.Dir != "" {
		if err := h.write(report); err != nil {
			log.Warn("write crash report", "error", err)
		}
	}
	if onPanic != nil {
		onPanic(report)
	}
}

func (h *CrashHandler) write(report CrashReport) error {
	if err := os.MkdirAll(h.Dir, 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal crash report: %w", err)
	}
	name := fmt.Sprintf("crash-%s.json", report.Timestamp.Format("20060102-150405.000000000"))
	return os.WriteFile(filepath.Join(h.Dir, name), data, 0o640)
}

// Reports reads the crash reports in Dir, oldest first.
func (h *CrashHandler) Reports() ([]CrashReport, error) {
	matches, err := filepath.Glob(filepath.Join(h.Dir, "crash-*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	reports := make([]CrashReport, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		var r CrashReport
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}
