// Package config loads the optional tarrestore configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional tarrestore configuration file. Pointer
// fields distinguish "unset" from zero values so command-line flags can
// override only what the file leaves open.
type Config struct {
	Restore RestoreConfig `toml:"restore"`
	Log     LogConfig     `toml:"log"`
	Theme   ThemeConfig   `toml:"theme"`
}

// RestoreConfig holds defaults for the unpack commands.
type RestoreConfig struct {
	Owner      *uint32 `toml:"owner"`
	ChunkSize  *string `toml:"chunk_size"`
	BWLimit    *string `toml:"bwlimit"`
	KeepSource *bool   `toml:"keep_source"`
	FilterFile *string `toml:"filter_file"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// ThemeConfig holds optional color overrides for the terminal presenter.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Red    *string `toml:"red"`
	Blue   *string `toml:"blue"`
	Teal   *string `toml:"teal"`
	Muted  *string `toml:"muted"`
	Dim    *string `toml:"dim"`
	Bright *string `toml:"bright"`
}

// Path returns the default config location under $XDG_CONFIG_HOME, or
// ~/.config when that is unset.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tarrestore", "config.toml")
}

// Load reads the config file at the default path. A missing file yields a
// zero Config and no error.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadFile reads the config file at path. Unlike Load, a missing file is an
// error. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
