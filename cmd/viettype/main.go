// viettype composes Vietnamese text from Telex keystrokes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/groutoutlook/VietType-powershell/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors have already been reported by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
