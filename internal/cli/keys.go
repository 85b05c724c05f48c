package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/groutoutlook/VietType-powershell/internal/telex"
)

// KeysResult pairs a word with the keystrokes that type it.
type KeysResult struct {
	Word string `json:"word"`
	Keys string `json:"keys"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys <text>...",
		Short: "Convert Vietnamese text back to Telex keystrokes",
		Long: `Print the Telex keystrokes that compose each word of the given text.
Characters Telex cannot produce are copied unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runKeys(rootOpts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := rootOpts.formatter(cmd)

	// Decomposed input would hand TelexKeys bare combining marks.
	text := norm.NFC.String(strings.Join(args, " "))

	var results []KeysResult
	for _, word := range strings.Fields(text) {
		results = append(results, KeysResult{Word: word, Keys: telex.TelexKeys(word)})
	}

	if formatter.JSON() {
		return formatter.Success(results)
	}
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.Keys
	}
	_, err := fmt.Fprintln(formatter.Writer, strings.Join(keys, " "))
	return err
}
