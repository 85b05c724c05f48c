package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/telex"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	Strict bool
}

// CheckResult is the outcome of typing one word.
type CheckResult struct {
	Raw      string `json:"raw"`
	State    string `json:"state"`
	Composed string `json:"composed,omitempty"`
	Output   string `json:"output"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <keys>...",
		Short: "Show how the engine judges each keystroke sequence",
		Long: `Type each argument as one word and report the engine state, the
composed text for valid words and what would be committed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with status 1 if any word is invalid")

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *CheckOptions, cmd *cobra.Command, args []string) error {
	formatter := rootOpts.formatter(cmd)
	cfg := rootOpts.Config.Telex
	engine := telex.New(cfg.EngineConfig(), cfg.EngineOptions()...)

	results := make([]CheckResult, 0, len(args))
	invalid := 0
	for _, word := range args {
		r := checkWord(engine, word)
		if r.State != telex.CommittedValid.String() {
			invalid++
		}
		formatter.VerboseLog("%s: %s", word, r.State)
		results = append(results, r)
	}

	if formatter.JSON() {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(formatter.Writer, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "RAW\tSTATE\tOUTPUT")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Raw, r.State, r.Output)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if opts.Strict && invalid > 0 {
		msg := fmt.Sprintf("%d of %d words invalid", invalid, len(results))
		fmt.Fprintln(formatter.GetErrWriter(), msg)
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

// checkWord types word into a fresh composition and commits it.
func checkWord(e *telex.Engine, word string) CheckResult {
	e.Reset()
	for _, c := range word {
		e.PushChar(c)
	}
	r := CheckResult{Raw: word}
	switch e.Commit() {
	case telex.CommittedValid:
		r.Composed = e.Retrieve()
		r.Output = r.Composed
	default:
		r.Output = e.RetrieveRaw()
	}
	r.State = e.State().String()
	return r
}
