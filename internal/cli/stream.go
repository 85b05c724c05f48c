package cli

import (
	"bufio"
	"io"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/config"
	"github.com/groutoutlook/VietType-powershell/internal/ime"
	"github.com/groutoutlook/VietType-powershell/internal/metrics"
)

// StreamOptions holds flags for the stream command.
type StreamOptions struct {
	AppID   string
	Watch   bool
	Journal bool
	Metrics bool
}

// NewStreamCommand creates the stream command.
func NewStreamCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StreamOptions{}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Compose stdin line by line",
		Long: `Read stdin line by line, printing each composed line as soon as it is
typed. All lines share one input session.

With --watch the config file is watched and a changed configuration is
applied from the next word on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AppID, "app", "viettype-cli", "application ID recorded for the session")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "reload the config file when it changes")
	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record committed words in the journal")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write session metrics to stderr in Prometheus format on exit")

	return cmd
}

func runStream(rootOpts *RootOptions, opts *StreamOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	var j *journal
	var managerOpts []ime.ManagerOption
	if opts.Journal || rootOpts.Config.Journal.Enabled {
		var err error
		if j, err = rootOpts.openJournal(""); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
		}
		defer j.store.Close()
		managerOpts = append(managerOpts, ime.WithCommitHook(j.recorder.Observe))
	}
	var mt *metrics.IME
	if opts.Metrics {
		mt = metrics.NewIME(nil)
		managerOpts = append(managerOpts, ime.WithMetrics(mt))
	}
	manager := rootOpts.newManager(managerOpts...)

	if opts.Watch {
		loader := config.NewLoader(rootOpts.ConfigPath, config.WithLoaderLogger(rootOpts.Logger))
		if _, err := loader.Load(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, "load config", err)
		}
		loader.OnChange(func(_, cfg *config.Config) {
			manager.ApplyConfig(cfg.Telex.EngineConfig(), cfg.Input.InputOptions())
		})
		if err := loader.Watch(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, "watch config", err)
		}
		defer loader.Close()
		formatter.VerboseLog("watching %s", loader.Path())
	}

	session, err := manager.Open(ime.SessionOptions{AppID: opts.AppID, DocID: "stdin"})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "open session", err)
	}

	h := &host{session: session}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if err := h.typeText(scanner.Text() + "\n"); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInput, "compose", err)
		}
		if _, err := io.WriteString(formatter.Writer, h.text()); err != nil {
			return err
		}
		h.doc = h.doc[:0]
	}
	if err := scanner.Err(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "read stdin", err)
	}

	summary, err := manager.Close(session.ID)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "close session", err)
	}
	if j != nil {
		if err := j.finish(cmd.Context(), summary); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "write journal", err)
		}
	}
	formatter.VerboseLog("%d keystrokes, %d valid words, %d invalid words",
		summary.Keystrokes, summary.ValidWords, summary.InvalidWords)
	if mt != nil {
		return mt.Registry().WritePrometheus(formatter.GetErrWriter())
	}
	return nil
}
