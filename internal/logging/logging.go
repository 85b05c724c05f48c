// Package logging provides structured logging with slog for viettype.
//
// Features:
//   - JSON and text output formats
//   - Log levels (debug, info, warn, error)
//   - Per-component and per-session child loggers
//   - Redaction of typed text unless explicitly enabled
//   - Size-based log rotation
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or JSON).
	Format Format

	// Output specifies where logs are written.
	// Can be "stdout", "stderr", "file", "both" or "discard".
	Output string

	// FilePath is the path to the log file when Output includes "file".
	FilePath string

	// MaxSize is the maximum size of a log file in megabytes before rotation.
	MaxSize int64

	// MaxBackups is the maximum number of rotated log files to keep.
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool

	// AddSource adds source file and line to log entries.
	AddSource bool

	// LogText disables redaction of typed text (raw keystrokes, composed
	// words, preedit). Only meant for debugging the rule table.
	LogText bool

	// Component is the name of the component using this logger.
	Component string
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     "stderr",
		FilePath:   defaultLogPath(),
		MaxSize:    10,
		MaxBackups: 3,
		Compress:   true,
		Component:  "viettype",
	}
}

func defaultLogPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Logs", "viettype", "viettype.log")
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			dir = os.Getenv("APPDATA")
		}
		return filepath.Join(dir, "viettype", "logs", "viettype.log")
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			home, _ := os.UserHomeDir()
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "viettype", "viettype.log")
	}
}

// Logger wraps slog.Logger and owns the file it writes to, if any.
type Logger struct {
	*slog.Logger
	config  *Config
	rotator *FileRotator
	mu      sync.Mutex
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Default returns the process-wide logger, creating a stderr logger on
// first use.
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		var err error
		defaultLogger, err = New(DefaultConfig())
		if err != nil {
			defaultLogger = &Logger{Logger: slog.Default(), config: DefaultConfig()}
		}
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger and slog's default.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		config: &Config{Output: "discard"},
	}
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Logger{config: cfg}

	w, err := l.openOutput()
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}
	return l.withWriter(w), nil
}

// NewWithWriter builds a logger that writes to w, ignoring cfg.Output.
func NewWithWriter(cfg *Config, w io.Writer) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Logger{config: cfg}
	return l.withWriter(w)
}

func (l *Logger) withWriter(w io.Writer) *Logger {
	cfg := l.config
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch {
			case isCredential(a.Key):
				a.Value = slog.StringValue("[REDACTED]")
			case !cfg.LogText && isTypedText(a.Key):
				a.Value = slog.StringValue(fmt.Sprintf("[%d runes]", len([]rune(a.Value.String()))))
			}
			return a
		},
	}

	var h slog.Handler
	switch cfg.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	if cfg.Component != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("component", cfg.Component)})
	}
	l.Logger = slog.New(h)
	return l
}

func (l *Logger) openOutput() (io.Writer, error) {
	switch strings.ToLower(l.config.Output) {
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	case "file", "both":
		r, err := NewFileRotator(l.config)
		if err != nil {
			return nil, err
		}
		l.rotator = r
		if strings.EqualFold(l.config.Output, "both") {
			return io.MultiWriter(os.Stderr, r), nil
		}
		return r, nil
	default:
		return os.Stderr, nil
	}
}

var credentialKeys = []string{"password", "secret", "token", "credential", "cookie", "api_key", "apikey"}

// typedTextKeys carry what the user typed; an input method must not leak
// them into log files by default.
var typedTextKeys = map[string]bool{
	"raw": true, "composed": true, "preedit": true, "text": true, "word": true, "commit": true,
}

func isCredential(key string) bool {
	k := strings.ToLower(key)
	for _, s := range credentialKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func isTypedText(key string) bool {
	return typedTextKeys[strings.ToLower(key)]
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.child(slog.String("component", name))
}

// WithSession returns a child logger tagged with an input session ID.
func (l *Logger) WithSession(id string) *Logger {
	return l.child(slog.String("session_id", id))
}

func (l *Logger) child(attr slog.Attr) *Logger {
	return &Logger{
		Logger:  l.Logger.With(attr),
		config:  l.config,
		rotator: l.rotator,
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// ParseLevel parses a string into a log level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// LevelString returns the string representation of a log level.
func LevelString(level Level) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", s)
	}
}
