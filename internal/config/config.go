// Package config handles configuration loading, validation, and management for viettype.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/groutoutlook/VietType-powershell/internal/ime"
	"github.com/groutoutlook/VietType-powershell/internal/logging"
	"github.com/groutoutlook/VietType-powershell/internal/telex"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete viettype configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Telex holds the transliteration engine options.
	Telex TelexConfig `toml:"telex" json:"telex" yaml:"telex"`

	// Input holds the session behaviour around the engine.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Journal configuration for the committed word journal.
	Journal JournalConfig `toml:"journal" json:"journal" yaml:"journal"`
}

// TelexConfig holds the engine options.
type TelexConfig struct {
	// AlternateOaUyTonePlacement marks "hoà", "thuý" instead of "hòa", "thúy".
	AlternateOaUyTonePlacement bool `toml:"alternate_oa_uy_tone_placement" json:"alternate_oa_uy_tone_placement" yaml:"alternate_oa_uy_tone_placement"`

	// AcceptDAnywhere lets a later d turn the leading d into đ.
	AcceptDAnywhere bool `toml:"accept_d_anywhere" json:"accept_d_anywhere" yaml:"accept_d_anywhere"`

	// BackspacedInvalidStaysInvalid keeps an invalid word invalid while it
	// is backspaced.
	BackspacedInvalidStaysInvalid bool `toml:"backspaced_invalid_stays_invalid" json:"backspaced_invalid_stays_invalid" yaml:"backspaced_invalid_stays_invalid"`

	// Tables extends the phonotactic tables.
	Tables TablesConfig `toml:"tables" json:"tables" yaml:"tables"`
}

// TablesConfig lists spellings accepted on top of the standard orthography,
// for loanwords and dialect spellings.
type TablesConfig struct {
	// ExtraOnsets are additional initial consonant spellings ("kl").
	ExtraOnsets []string `toml:"extra_onsets,omitempty" json:"extra_onsets,omitempty" yaml:"extra_onsets,omitempty"`

	// ExtraCodas are additional final consonant spellings.
	ExtraCodas []string `toml:"extra_codas,omitempty" json:"extra_codas,omitempty" yaml:"extra_codas,omitempty"`
}

// InputConfig holds the session options.
type InputConfig struct {
	// BackconvertOnBackspace reopens the previous word when backspace is
	// pressed with nothing in composition.
	BackconvertOnBackspace bool `toml:"backconvert_on_backspace" json:"backconvert_on_backspace" yaml:"backconvert_on_backspace"`

	// Boundaries lists extra characters that end a word, besides
	// whitespace, punctuation and symbols.
	Boundaries string `toml:"boundaries" json:"boundaries" yaml:"boundaries"`

	// DefaultEnabled is whether new sessions start with Telex on.
	DefaultEnabled bool `toml:"default_enabled" json:"default_enabled" yaml:"default_enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file", "both" or "discard".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file" or "both").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`

	// LogText writes typed text into debug logs instead of its length.
	LogText bool `toml:"log_text" json:"log_text" yaml:"log_text"`
}

// JournalConfig holds the word journal configuration.
type JournalConfig struct {
	// Enabled turns on recording of committed words.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// BufferSize is how many words may wait for the writer before new
	// ones are dropped.
	BufferSize int `toml:"buffer_size" json:"buffer_size" yaml:"buffer_size"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	engine := telex.DefaultConfig()
	log := logging.DefaultConfig()

	return &Config{
		Version: Version,
		Telex: TelexConfig{
			AlternateOaUyTonePlacement:    engine.AlternateOaUyTonePlacement,
			AcceptDAnywhere:               engine.AcceptDAnywhere,
			BackspacedInvalidStaysInvalid: engine.BackspacedInvalidStaysInvalid,
		},
		Input: InputConfig{
			BackconvertOnBackspace: true,
			DefaultEnabled:         true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   log.FilePath,
			MaxSizeMB:  int(log.MaxSize),
			MaxBackups: log.MaxBackups,
			Compress:   log.Compress,
		},
		Journal: JournalConfig{
			Enabled:    false,
			Path:       filepath.Join(DataDir(), "journal.db"),
			BufferSize: 256,
		},
	}
}

// ConfigPath returns the configuration file path: VIETTYPE_CONFIG when set,
// otherwise config.toml in the platform config directory.
func ConfigPath() string {
	if v := os.Getenv("VIETTYPE_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// DataDir returns the base viettype data directory.
// Uses platform-specific paths or VIETTYPE_DATA_DIR environment override.
func DataDir() string {
	if envDir := os.Getenv("VIETTYPE_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with VIETTYPE_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	// Logging overrides
	if v := os.Getenv("VIETTYPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VIETTYPE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("VIETTYPE_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}

	// Journal overrides
	if v := os.Getenv("VIETTYPE_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if b, ok := envBool("VIETTYPE_JOURNAL_ENABLED"); ok {
		c.Journal.Enabled = b
	}

	// Engine and input overrides
	if b, ok := envBool("VIETTYPE_ALTERNATE_TONE_PLACEMENT"); ok {
		c.Telex.AlternateOaUyTonePlacement = b
	}
	if b, ok := envBool("VIETTYPE_BACKCONVERT"); ok {
		c.Input.BackconvertOnBackspace = b
	}
	if b, ok := envBool("VIETTYPE_ENABLED"); ok {
		c.Input.DefaultEnabled = b
	}
}

func envBool(key string) (value, ok bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Telex.Tables.ExtraOnsets = append([]string(nil), c.Telex.Tables.ExtraOnsets...)
	clone.Telex.Tables.ExtraCodas = append([]string(nil), c.Telex.Tables.ExtraCodas...)
	return &clone
}

// EnsureDirectories creates the directories the log file and journal live in.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Logging.Output == "file" || c.Logging.Output == "both" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	if c.Journal.Enabled {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EngineConfig returns the options for telex.New.
func (t TelexConfig) EngineConfig() telex.Config {
	return telex.Config{
		AlternateOaUyTonePlacement:    t.AlternateOaUyTonePlacement,
		AcceptDAnywhere:               t.AcceptDAnywhere,
		BackspacedInvalidStaysInvalid: t.BackspacedInvalidStaysInvalid,
	}
}

// EngineOptions returns the construction options for telex.New: the
// extended tables when any extra spelling is configured, none otherwise.
func (t TelexConfig) EngineOptions() []telex.Option {
	if len(t.Tables.ExtraOnsets) == 0 && len(t.Tables.ExtraCodas) == 0 {
		return nil
	}
	return []telex.Option{telex.WithTables(t.Tables.Build())}
}

// Build returns the default tables extended with the extra spellings.
func (t TablesConfig) Build() *telex.Tables {
	tables := telex.DefaultTables().Clone()
	for _, o := range t.ExtraOnsets {
		tables.Onsets = append(tables.Onsets, strings.ToLower(o))
	}
	for _, c := range t.ExtraCodas {
		tables.Codas = append(tables.Codas, strings.ToLower(c))
	}
	return tables
}

// InputOptions returns the session options for ime.
func (i InputConfig) InputOptions() ime.InputOptions {
	return ime.InputOptions{
		BackconvertOnBackspace: i.BackconvertOnBackspace,
		Boundaries:             i.Boundaries,
		DefaultEnabled:         i.DefaultEnabled,
	}
}

// LoggerConfig converts the section into a logging.Config.
func (l LoggingConfig) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.Format)
	if err != nil {
		return nil, err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = l.Output
	if l.FilePath != "" {
		cfg.FilePath = l.FilePath
	}
	cfg.MaxSize = int64(l.MaxSizeMB)
	cfg.MaxBackups = l.MaxBackups
	cfg.Compress = l.Compress
	cfg.LogText = l.LogText
	return cfg, nil
}
