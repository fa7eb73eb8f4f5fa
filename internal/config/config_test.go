package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(`
[viewport]
max_scale = 500.0

[grid]
target_spacing = 80.0
show_labels = false

[style]
points = "#ff0000"

[log]
level = "debug"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Viewport.MaxScale != 500 || cfg.Viewport.MinScale != Default().Viewport.MinScale {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Grid.TargetSpacing != 80 || cfg.Grid.ShowLabels || !cfg.Grid.ShowMinor {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Style.Points != "#ff0000" || cfg.Style.Lines != Default().Style.Lines {
		t.Errorf("style = %+v", cfg.Style)
	}
	if lvl, _ := cfg.Log.ParseLevel(); lvl != log.DebugLevel {
		t.Errorf("ParseLevel() = %v, want debug", lvl)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min scale", func(c *Config) { c.Viewport.MinScale = 0 }},
		{"negative min scale", func(c *Config) { c.Viewport.MinScale = -1 }},
		{"min above max", func(c *Config) { c.Viewport.MinScale, c.Viewport.MaxScale = 10, 1 }},
		{"zero initial scale", func(c *Config) { c.Viewport.InitialScale = 0 }},
		{"negative margin", func(c *Config) { c.Viewport.FitMargin = -1 }},
		{"zero target spacing", func(c *Config) { c.Grid.TargetSpacing = 0 }},
		{"pan fraction", func(c *Config) { c.Input.PanFraction = 1.5 }},
		{"key zoom", func(c *Config) { c.Input.KeyZoom = 1 }},
		{"wheel base", func(c *Config) { c.Input.WheelBase = 0.5 }},
		{"bad colour", func(c *Config) { c.Style.Ruler = "orange" }},
		{"short colour", func(c *Config) { c.Style.Background = "#fff" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse("[grid]\nspacing = 3.0\n")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Parse() = %v, want ErrInvalid", err)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("[grid\n"); err == nil {
		t.Error("Parse() accepted malformed TOML")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridplot.toml")
	if err := os.WriteFile(path, []byte("[input]\nkey_zoom = 2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Input.KeyZoom != 2 {
		t.Errorf("KeyZoom = %v, want 2", cfg.Input.KeyZoom)
	}

	missing := filepath.Join(dir, "nope.toml")
	if _, err := Load(missing, true); err == nil {
		t.Error("Load() of a missing explicit file succeeded")
	}
	cfg, err = Load(missing, false)
	if err != nil || cfg != Default() {
		t.Errorf("Load() of a missing default file = %+v, %v, want defaults", cfg, err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[viewport]\nmin_scale = -1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad, true); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() of an invalid file = %v, want ErrInvalid", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := DefaultPath(), filepath.Join("/tmp/xdg", "gridplot", "gridplot.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
