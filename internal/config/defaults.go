package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "viettype"

// dirs are the per-user directories viettype keeps its files in.
type dirs struct {
	config string
	data   string
}

// platformDirs resolves the user directories for the running OS:
//
//   - macOS:   ~/Library/Application Support/viettype for both
//   - Linux:   $XDG_CONFIG_HOME/viettype and $XDG_DATA_HOME/viettype
//   - Windows: %APPDATA%\viettype for both
//   - other:   ~/.viettype for both
func platformDirs() dirs {
	home := homeDir()
	switch runtime.GOOS {
	case "darwin":
		d := filepath.Join(home, "Library", "Application Support", appName)
		return dirs{config: d, data: d}
	case "linux":
		return dirs{
			config: xdgDir("XDG_CONFIG_HOME", home, ".config"),
			data:   xdgDir("XDG_DATA_HOME", home, ".local", "share"),
		}
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		d := filepath.Join(base, appName)
		return dirs{config: d, data: d}
	default:
		d := filepath.Join(home, "."+appName)
		return dirs{config: d, data: d}
	}
}

// PlatformDataDir returns the directory the journal and log file default to.
func PlatformDataDir() string {
	return platformDirs().data
}

// PlatformConfigDir returns the directory searched for config.<ext>.
func PlatformConfigDir() string {
	return platformDirs().config
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}

// xdgDir returns $env/viettype, or home/<fallback...>/viettype when env is
// unset.
func xdgDir(env, home string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

// SupportedConfigFormats returns the config file extensions Load understands,
// in lookup order.
func SupportedConfigFormats() []string {
	return []string{"toml", "json", "yaml", "yml"}
}

// FindConfigFile returns the config file to use, or "" when there is none.
// VIETTYPE_CONFIG wins; otherwise viettype.<ext> in the working directory,
// then config.<ext> in the platform config directory.
func FindConfigFile() string {
	if v := os.Getenv("VIETTYPE_CONFIG"); v != "" {
		return v
	}

	candidates := []struct{ dir, stem string }{
		{".", appName},
		{PlatformConfigDir(), "config"},
	}
	for _, c := range candidates {
		for _, ext := range SupportedConfigFormats() {
			path := filepath.Join(c.dir, c.stem+"."+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
