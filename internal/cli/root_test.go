package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against a config file that does not exist, so every
// command sees the defaults.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.toml")
	return executeWithConfig(t, configPath, stdin, args...)
}

func executeWithConfig(t *testing.T, configPath, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "viettype", cmd.Use)
	assert.Contains(t, cmd.Long, "Telex")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"compose"}, {"stream"}, {"check"}, {"keys"},
		{"journal", "stats"}, {"journal", "recent"}, {"journal", "prune"},
		{"config", "path"}, {"config", "show"}, {"config", "init"}, {"config", "schema"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, "_"), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestJournalCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	stats, _, err := cmd.Find([]string{"journal", "stats"})
	require.NoError(t, err)
	top := stats.Flags().Lookup("top")
	require.NotNil(t, top)
	assert.Equal(t, "10", top.DefValue)

	recent, _, err := cmd.Find([]string{"journal", "recent"})
	require.NoError(t, err)
	limit := recent.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "20", limit.DefValue)

	db := recent.InheritedFlags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "", db.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--format", "xml", "keys", "việt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[bogus]\nkey = 1\n")

	stdout, _, err := executeWithConfig(t, path, "", "keys", "việt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]")
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "", "-v", "keys", "việt")
	require.NoError(t, err)
	assert.Equal(t, "vieetj\n", stdout)
	assert.Contains(t, stderr, "config: ")
}
