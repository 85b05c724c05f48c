package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped exit error", WrapExitError(ExitFailure, "outer", errors.New("inner")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "open journal", inner)

	assert.Equal(t, "open journal: inner", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}

func TestOutputFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"word": "việt"}))

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "việt", resp.Data["word"])
}

func TestOutputFormatterSuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("done"))
	assert.Equal(t, "done\n", buf.String())
}

func TestOutputFormatterFail(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	err := f.Fail(ExitCommandError, ErrCodeJournal, "open journal", errors.New("no such file"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeJournal, resp.Error.Code)
	assert.Equal(t, "open journal", resp.Error.Message)
	assert.Equal(t, "no such file", resp.Error.Details)
}

func TestOutputFormatterErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeConfig, "load config", "bad key"))
	assert.Equal(t, "Error [E001]: load config\nDetails: bad key\n", buf.String())
}

func TestVerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String())
}
