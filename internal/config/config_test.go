package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-monaco-bridge/internal/render"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[server]
addr = "127.0.0.1:9000"

[editor]
language = "go"
theme = "Dark"

[log]
verbosity = 2
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Editor.Language != "go" || cfg.Editor.Theme != "Dark" || cfg.Log.Verbosity != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Editor.FontSize != 14 || cfg.Server.MonacoBase != render.DefaultMonacoBase {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, `
[editor]
language = "go"
`)
	t.Setenv("GO_MONACO_LANGUAGE", "rust")
	t.Setenv("GO_MONACO_READ_ONLY", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.Language != "rust" || !cfg.Editor.ReadOnly {
		t.Fatalf("cfg = %+v", cfg.Editor)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "malformed toml", content: "[server\naddr = 1"},
		{name: "unknown theme", content: "[editor]\ntheme = \"Solarized\""},
		{name: "empty addr", content: "[server]\naddr = \"\""},
		{name: "bad env int", content: "", env: map[string]string{"GO_MONACO_FONT_SIZE": "big"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(writeFile(t, tt.content)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
