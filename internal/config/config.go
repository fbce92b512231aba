// Package config loads the bridge settings: defaults, then a TOML file,
// then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"go-monaco-bridge/internal/render"
)

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Editor EditorConfig `toml:"editor"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig controls the page server.
type ServerConfig struct {
	Addr       string `toml:"addr" env:"GO_MONACO_ADDR"`
	MonacoBase string `toml:"monaco_base" env:"GO_MONACO_BASE"`
}

// EditorConfig holds the editor defaults applied to new sessions.
type EditorConfig struct {
	Language       string `toml:"language" env:"GO_MONACO_LANGUAGE"`
	Theme          string `toml:"theme" env:"GO_MONACO_THEME"`
	HighContrast   bool   `toml:"high_contrast" env:"GO_MONACO_HIGH_CONTRAST"`
	ReadOnly       bool   `toml:"read_only" env:"GO_MONACO_READ_ONLY"`
	GlyphMargin    bool   `toml:"glyph_margin" env:"GO_MONACO_GLYPH_MARGIN"`
	FontSize       int    `toml:"font_size" env:"GO_MONACO_FONT_SIZE"`
	HighlightStyle string `toml:"highlight_style" env:"GO_MONACO_HIGHLIGHT_STYLE"`
}

// LogConfig configures commonlog. Verbosity 0 is errors only; 2 and up
// includes the bridge's dropped-operation diagnostics.
type LogConfig struct {
	Verbosity int    `toml:"verbosity" env:"GO_MONACO_LOG_VERBOSITY"`
	File      string `toml:"file" env:"GO_MONACO_LOG_FILE"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       "127.0.0.1:7778",
			MonacoBase: render.DefaultMonacoBase,
		},
		Editor: EditorConfig{
			Language:       "plaintext",
			Theme:          "Default",
			GlyphMargin:    true,
			FontSize:       14,
			HighlightStyle: "github",
		},
		Log: LogConfig{
			Verbosity: 1,
		},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "go-monaco-bridge.toml"
	}
	return filepath.Join(dir, "go-monaco-bridge", "config.toml")
}

// LoadConfig reads path over the defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Editor.Theme {
	case "Default", "Light", "Dark":
	default:
		return fmt.Errorf("editor.theme: unknown theme %q", c.Editor.Theme)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr: must not be empty")
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity: %d is negative", c.Log.Verbosity)
	}
	return nil
}
