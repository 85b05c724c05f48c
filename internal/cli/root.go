// Package cli implements the viettype command line.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/config"
	"github.com/groutoutlook/VietType-powershell/internal/ime"
	"github.com/groutoutlook/VietType-powershell/internal/logging"
	"github.com/groutoutlook/VietType-powershell/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// and logger built from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *logging.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the viettype CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "viettype",
		Short: "viettype - Telex input for Vietnamese",
		Long: `Compose Vietnamese text from Telex keystrokes.

Words that are not valid Vietnamese syllables are left exactly as typed,
so English and code pass through untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Logger != nil {
				return opts.Logger.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: $VIETTYPE_CONFIG, ./viettype.*, then the user config dir)")

	cmd.AddCommand(NewComposeCommand(opts))
	cmd.AddCommand(NewStreamCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	formatter := o.formatter(cmd)

	if o.ConfigPath == "" {
		o.ConfigPath = config.FindConfigFile()
	}
	if o.ConfigPath == "" {
		o.ConfigPath = config.ConfigPath()
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "load config "+o.ConfigPath, err)
	}
	o.Config = cfg

	logCfg, err := cfg.Logging.LoggerConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "logging config", err)
	}
	if o.Verbose {
		logCfg.Level = logging.LevelDebug
	}
	if logCfg.Output == "stderr" {
		// Keep diagnostics on the command's stderr so callers can capture it.
		o.Logger = logging.NewWithWriter(logCfg, cmd.ErrOrStderr())
	} else if o.Logger, err = logging.New(logCfg); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "open log", err)
	}

	formatter.VerboseLog("config: %s", o.ConfigPath)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newManager builds a session manager from the loaded configuration.
func (o *RootOptions) newManager(extra ...ime.ManagerOption) *ime.Manager {
	cfg := o.Config
	opts := []ime.ManagerOption{
		ime.WithLogger(o.Logger),
		ime.WithEngineOptions(cfg.Telex.EngineOptions()...),
	}
	return ime.NewManager(cfg.Telex.EngineConfig(), cfg.Input.InputOptions(), append(opts, extra...)...)
}

// journal is an open word journal and the recorder feeding it.
type journal struct {
	store    *store.Store
	recorder *store.Recorder
}

func (o *RootOptions) openJournal(path string) (*journal, error) {
	if path == "" {
		path = o.Config.Journal.Path
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("journal opened", "path", path)
	return &journal{
		store:    st,
		recorder: store.NewRecorder(st, o.Config.Journal.BufferSize, o.Logger),
	}, nil
}

// finish flushes the queued words and stores the session summary.
func (j *journal) finish(ctx context.Context, summary *ime.SessionSummary) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := j.recorder.Close(ctx); err != nil {
		return err
	}
	return j.recorder.RecordSummary(ctx, summary)
}
