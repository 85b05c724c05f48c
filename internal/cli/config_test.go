package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groutoutlook/VietType-powershell/internal/config"
)

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viettype.yaml")
	stdout, _, err := executeWithConfig(t, path, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", stdout)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := executeWithConfig(t, path, "", "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "created "+path+"\n", stdout)
	assert.FileExists(t, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Telex, cfg.Telex)

	stdout, _, err = executeWithConfig(t, path, "", "--format", "json", "config", "init")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			Path    string `json:"path"`
			Created bool   `json:"created"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, path, resp.Data.Path)
	assert.False(t, resp.Data.Created)
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[input]\nboundaries = \"-\"\n")

	stdout, _, err := executeWithConfig(t, path, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# viettype configuration")
	assert.Contains(t, stdout, "[telex]")
	assert.Contains(t, stdout, `boundaries = "-"`)

	stdout, _, err = executeWithConfig(t, path, "", "config", "show", "--as", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alternate_oa_uy_tone_placement: true")

	stdout, _, err = executeWithConfig(t, path, "", "--format", "json", "config", "show")
	require.NoError(t, err)
	var resp struct {
		Data config.Config `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "-", resp.Data.Input.Boundaries)
	assert.True(t, resp.Data.Telex.AlternateOaUyTonePlacement)
}

func TestConfigShowUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "", "config", "show", "--as", "ini")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigShowAppliesEnvironment(t *testing.T) {
	t.Setenv("VIETTYPE_ALTERNATE_TONE_PLACEMENT", "false")

	stdout, _, err := execute(t, "", "config", "show", "--as", "json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.False(t, cfg.Telex.AlternateOaUyTonePlacement)
}

func TestConfigSchema(t *testing.T) {
	stdout, _, err := execute(t, "", "config", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Contains(t, schema, "$schema")
	assert.Contains(t, schema, "properties")
}
