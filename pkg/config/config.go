// Package config loads the command line tool's user preferences from the
// XDG config directory. Style schemes themselves live in codestyle; this
// file only points at them.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/ideafmt/ideafmt/pkg/errors"
)

// Config holds user preferences for the CLI.
type Config struct {
	// StylePath is the default style configuration applied when no
	// --style flag is given. Empty means built-in defaults.
	StylePath string `toml:"style_path"`

	// Verbosity is the default log verbosity, equivalent to repeating -v.
	Verbosity int `toml:"verbosity"`
}

// Default returns the built-in preferences.
func Default() Config {
	return Config{}
}

// Path returns the preferences file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "ideafmt", "ideafmt.toml")
}

// Load reads the preferences file. A missing file is not an error and
// yields the defaults.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads preferences from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrConfigNotFound, "failed to read preferences at %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, errors.ErrConfigParse, "failed to parse preferences at %s", path)
	}
	return cfg, nil
}
