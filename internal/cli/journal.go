package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/groutoutlook/VietType-powershell/internal/store"
)

// JournalOptions holds flags shared by the journal subcommands.
type JournalOptions struct {
	Path string
}

// NewJournalCommand creates the journal command and its subcommands.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the word journal",
		Long: `Read the journal of committed words. The most frequent invalid
keystroke sequences show which spellings the engine rejects in practice.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Path, "db", "", "journal database (default from config)")

	cmd.AddCommand(newJournalStatsCommand(rootOpts, opts))
	cmd.AddCommand(newJournalRecentCommand(rootOpts, opts))
	cmd.AddCommand(newJournalPruneCommand(rootOpts, opts))

	return cmd
}

// openStore opens an existing journal; it never creates one.
func (o *JournalOptions) openStore(rootOpts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	path := o.Path
	if path == "" {
		path = rootOpts.Config.Journal.Path
	}
	if _, err := os.Stat(path); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeJournal, "journal not found: "+path, err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
	}
	formatter.VerboseLog("journal: %s", path)
	return st, nil
}

// JournalStats is the JSON payload of journal stats.
type JournalStats struct {
	*store.Stats
	ValidRatio float64 `json:"valid_ratio"`
}

func newJournalStatsCommand(rootOpts *RootOptions, opts *JournalOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			st, err := opts.openStore(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context(), top)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeJournal, "read journal", err)
			}
			if formatter.JSON() {
				return formatter.Success(JournalStats{Stats: stats, ValidRatio: stats.ValidRatio()})
			}

			w := formatter.Writer
			fmt.Fprintf(w, "words:    %d (%d valid, %d invalid, %.1f%% valid)\n",
				stats.Words, stats.Valid, stats.Invalid, 100*stats.ValidRatio())
			fmt.Fprintf(w, "sessions: %d\n", stats.Sessions)
			if stats.Words > 0 {
				fmt.Fprintf(w, "from:     %s\n", stats.First.Format(time.RFC3339))
				fmt.Fprintf(w, "to:       %s\n", stats.Last.Format(time.RFC3339))
			}
			if len(stats.TopInvalid) > 0 {
				fmt.Fprintln(w, "top invalid:")
				tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
				for _, rc := range stats.TopInvalid {
					fmt.Fprintf(tw, "  %s\t%d\n", rc.Raw, rc.Count)
				}
				return tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of invalid sequences to list")
	return cmd
}

func newJournalRecentCommand(rootOpts *RootOptions, opts *JournalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently committed words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			st, err := opts.openStore(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.Recent(cmd.Context(), limit)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeJournal, "read journal", err)
			}
			if formatter.JSON() {
				if entries == nil {
					entries = []store.Entry{}
				}
				return formatter.Success(entries)
			}

			tw := tabwriter.NewWriter(formatter.Writer, 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRAW\tCOMPOSED")
			for _, e := range entries {
				composed := e.Composed
				if !e.Valid {
					composed = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CommittedAt.Format(time.DateTime), e.Raw, composed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of words to list")
	return cmd
}

func newJournalPruneCommand(rootOpts *RootOptions, opts *JournalOptions) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old words from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if olderThan <= 0 {
				return formatter.Fail(ExitCommandError, ErrCodeInput, "--older-than must be positive", nil)
			}
			st, err := opts.openStore(rootOpts, formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeJournal, "prune journal", err)
			}
			rootOpts.Logger.Info("journal pruned", "deleted", n, "older_than", olderThan.String())
			if formatter.JSON() {
				return formatter.Success(map[string]int64{"deleted": n})
			}
			return formatter.Success(fmt.Sprintf("deleted %d words", n))
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "delete words committed longer ago than this")
	return cmd
}
