package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/groutoutlook/VietType-powershell/internal/logging"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any validation failure.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields lists the offending fields in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateTables(&c.Telex.Tables)...)
	errs = append(errs, validateInput(&c.Input)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateJournal(&c.Journal)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Spellings are limited to what a syllable can hold: three onset letters,
// two coda letters.
const (
	maxOnsetLen = 3
	maxCodaLen  = 2
)

func validateTables(t *TablesConfig) ValidationErrors {
	var errs ValidationErrors
	check := func(field string, list []string, max int) {
		for i, s := range list {
			if msg := spellingProblem(s, max); msg != "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: msg,
				})
			}
		}
	}
	check("telex.tables.extra_onsets", t.ExtraOnsets, maxOnsetLen)
	check("telex.tables.extra_codas", t.ExtraCodas, maxCodaLen)
	return errs
}

func spellingProblem(s string, max int) string {
	if s == "" {
		return "spelling cannot be empty"
	}
	if len(s) > max {
		return fmt.Sprintf("spelling %q is longer than %d letters", s, max)
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return fmt.Sprintf("spelling %q must be plain ASCII letters", s)
		}
		if strings.ContainsRune("aeiouy", unicode.ToLower(r)) {
			return fmt.Sprintf("spelling %q contains a vowel", s)
		}
	}
	return ""
}

func validateInput(in *InputConfig) ValidationErrors {
	var errs ValidationErrors
	for _, r := range in.Boundaries {
		if unicode.IsLetter(r) {
			errs = append(errs, ValidationError{
				Field:   "input.boundaries",
				Message: fmt.Sprintf("letter %q cannot end a word", r),
			})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
		// Valid formats
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr", "discard":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %q (valid: stdout, stderr, file, both, discard)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}

	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}

	return errs
}

func validateJournal(j *JournalConfig) ValidationErrors {
	var errs ValidationErrors

	if j.BufferSize < 0 || j.BufferSize > 65536 {
		errs = append(errs, ValidationError{
			Field:   "journal.buffer_size",
			Message: "value must be between 0 and 65536",
		})
	}

	if !j.Enabled {
		return errs
	}
	if j.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "path is required when the journal is enabled",
		})
	}
	return errs
}
