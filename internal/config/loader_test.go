package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groutoutlook/VietType-powershell/internal/logging"
)

func newTestLoader(t *testing.T, path string) *Loader {
	t.Helper()
	l := NewLoader(path,
		WithDebounce(20*time.Millisecond),
		WithLoaderLogger(logging.Discard()),
	)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("VIETTYPE_DATA_DIR", t.TempDir())

	for _, ext := range []string{".toml", ".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Telex.AcceptDAnywhere = true
			cfg.Telex.Tables.ExtraOnsets = []string{"kl"}
			cfg.Telex.Tables.ExtraCodas = []string{"k"}
			cfg.Input.Boundaries = "0123456789"
			cfg.Logging.LogText = true
			cfg.Journal.Enabled = true
			cfg.Journal.BufferSize = 32

			path := filepath.Join(t.TempDir(), "nested", "config"+ext)
			require.NoError(t, SaveConfig(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestEncodeTOMLHeader(t *testing.T) {
	data, err := Encode(DefaultConfig(), ".toml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# viettype configuration"))
	assert.Contains(t, string(data), "[telex]")
	assert.NotContains(t, string(data), "extra_onsets")
}

func TestSchemaCompiles(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)
	require.NotNil(t, s)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(SchemaJSON(), &doc))
	assert.Contains(t, doc["properties"], "telex")

	// Everything Encode writes must satisfy the schema.
	data, err := Encode(DefaultConfig(), ".json")
	require.NoError(t, err)
	var instance any
	require.NoError(t, json.Unmarshal(data, &instance))
	assert.NoError(t, checkSchema(instance))
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cfg, again)
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, "config.toml", "[telex]\naccept_d_anywhere = true\n")
	l := newTestLoader(t, path)
	assert.Nil(t, l.Config())
	assert.Equal(t, path, l.Path())

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Telex.AcceptDAnywhere)
	assert.Same(t, cfg, l.Config())
}

func TestLoaderWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	l := newTestLoader(t, path)
	initial, err := l.Load()
	require.NoError(t, err)

	type change struct{ old, new *Config }
	changes := make(chan change, 4)
	l.OnChange(func(old, new *Config) { changes <- change{old, new} })
	require.NoError(t, l.Watch())

	updated := DefaultConfig()
	updated.Telex.AlternateOaUyTonePlacement = false
	require.NoError(t, SaveConfig(updated, path))

	select {
	case c := <-changes:
		assert.Same(t, initial, c.old)
		assert.False(t, c.new.Telex.AlternateOaUyTonePlacement)
		assert.Same(t, c.new, l.Config())
	case err := <-l.Errors():
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the config file changed")
	}
}

func TestLoaderWatchKeepsConfigOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	l := newTestLoader(t, path)
	initial, err := l.Load()
	require.NoError(t, err)

	called := make(chan struct{}, 1)
	l.OnChange(func(_, _ *Config) { called <- struct{}{} })
	require.NoError(t, l.Watch())

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0600))

	select {
	case err := <-l.Errors():
		assert.Contains(t, err.Error(), "reload config")
	case <-called:
		t.Fatal("a rejected file must not reach OnChange")
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported for the broken config")
	}
	assert.Same(t, initial, l.Config())
}

func TestLoaderWatchMissingDirectory(t *testing.T) {
	l := newTestLoader(t, filepath.Join(t.TempDir(), "missing", "config.toml"))
	assert.Error(t, l.Watch())
}
