package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/ime"
	"github.com/groutoutlook/VietType-powershell/internal/metrics"
)

// ComposeOptions holds flags for the compose command.
type ComposeOptions struct {
	AppID       string
	Journal     bool
	JournalPath string
	Metrics     bool
}

// ComposeResult is the JSON payload of compose.
type ComposeResult struct {
	Text    string              `json:"text"`
	Session *ime.SessionSummary `json:"session"`
}

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComposeOptions{}

	cmd := &cobra.Command{
		Use:   "compose [text...]",
		Short: "Type text through the Telex engine",
		Long: `Feed text through an input session one keystroke at a time and print
the document an application would end up with.

Arguments are joined with spaces; without arguments the text is read from
stdin. A backspace (0x08 or 0x7f) or escape (0x1b) in the input acts as
that key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.AppID, "app", "viettype-cli", "application ID recorded for the session")
	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record committed words in the journal")
	cmd.Flags().StringVar(&opts.JournalPath, "journal-path", "", "journal database (default from config)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write session metrics to stderr in Prometheus format")

	return cmd
}

func runCompose(rootOpts *RootOptions, opts *ComposeOptions, cmd *cobra.Command, args []string) error {
	formatter := rootOpts.formatter(cmd)

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, "read stdin", err)
		}
		text = string(data)
	}

	var j *journal
	var managerOpts []ime.ManagerOption
	if opts.Journal || rootOpts.Config.Journal.Enabled {
		var err error
		if j, err = rootOpts.openJournal(opts.JournalPath); err != nil {
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
	session, err := manager.Open(ime.SessionOptions{AppID: opts.AppID, DocID: "stdin"})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "open session", err)
	}

	h := &host{session: session}
	if err := h.typeText(text); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "compose", err)
	}
	summary, err := manager.Close(session.ID)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "close session", err)
	}
	h.insert(summary.FinalCommit)

	if j != nil {
		if err := j.finish(cmd.Context(), summary); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "write journal", err)
		}
		stats := j.recorder.Stats()
		formatter.VerboseLog("journal: %d written, %d dropped, %d failed", stats.Written, stats.Dropped, stats.Failed)
	}

	formatter.VerboseLog("%d keystrokes, %d valid words, %d invalid words",
		summary.Keystrokes, summary.ValidWords, summary.InvalidWords)
	if mt != nil {
		if err := mt.Registry().WritePrometheus(formatter.GetErrWriter()); err != nil {
			return err
		}
	}

	if formatter.JSON() {
		return formatter.Success(ComposeResult{Text: h.text(), Session: summary})
	}
	_, err = io.WriteString(formatter.Writer, ensureNewline(h.text()))
	return err
}

// host plays the application side of a session: it applies each Result to
// the document the way a text field would.
type host struct {
	session *ime.Session
	doc     []rune
}

func (h *host) typeText(text string) error {
	for _, r := range text {
		key := keyFor(r)
		res, err := h.session.HandleKey(key)
		if err != nil {
			return err
		}
		h.apply(key, res)
	}
	return nil
}

func keyFor(r rune) ime.Key {
	switch r {
	case '\b', 0x7f:
		return ime.NewSpecialKey(ime.KeyBackspace)
	case 0x1b:
		return ime.NewSpecialKey(ime.KeyEscape)
	}
	return ime.NewKey(r)
}

func (h *host) apply(key ime.Key, res ime.Result) {
	h.delete(res.Delete)
	h.insert(res.Commit)
	if res.Handled {
		return
	}
	switch key.Kind {
	case ime.KeyBackspace:
		h.delete(1)
	case ime.KeyChar:
		h.insert(string(key.Char))
	}
}

func (h *host) insert(s string) {
	h.doc = append(h.doc, []rune(s)...)
}

func (h *host) delete(n int) {
	h.doc = h.doc[:len(h.doc)-min(n, len(h.doc))]
}

// text is the document with the composition still on display.
func (h *host) text() string {
	return string(h.doc)
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
