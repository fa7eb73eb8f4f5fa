// Package config loads gridplot settings from a TOML file. Every field has a
// default, so a file only needs the keys it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Grid     GridConfig     `toml:"grid"`
	Input    InputConfig    `toml:"input"`
	Style    StyleConfig    `toml:"style"`
	Log      LogConfig      `toml:"log"`
}

type ViewportConfig struct {
	MinScale     float64 `toml:"min_scale"`
	MaxScale     float64 `toml:"max_scale"`
	InitialScale float64 `toml:"initial_scale"`
	// FitMargin is the pixel margin kept around data when fitting the view.
	FitMargin float64 `toml:"fit_margin"`
}

type GridConfig struct {
	// TargetSpacing is the desired pixel distance between major lines.
	TargetSpacing float64 `toml:"target_spacing"`
	ShowLabels    bool    `toml:"show_labels"`
	ShowMinor     bool    `toml:"show_minor"`
}

type InputConfig struct {
	PanFraction float64 `toml:"pan_fraction"`
	KeyZoom     float64 `toml:"key_zoom"`
	WheelBase   float64 `toml:"wheel_base"`
}

// StyleConfig holds "#rrggbb" colours.
type StyleConfig struct {
	Background  string `toml:"background"`
	GridMajor   string `toml:"grid_major"`
	GridMinor   string `toml:"grid_minor"`
	Axis        string `toml:"axis"`
	Label       string `toml:"label"`
	Points      string `toml:"points"`
	Lines       string `toml:"lines"`
	Polygons    string `toml:"polygons"`
	Annotations string `toml:"annotations"`
	Ruler       string `toml:"ruler"`
}

type LogConfig struct {
	// File receives log output in interactive mode; empty discards it.
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{
			MinScale:     1e-6,
			MaxScale:     1e6,
			InitialScale: 1,
			FitMargin:    8,
		},
		Grid: GridConfig{
			TargetSpacing: 100,
			ShowLabels:    true,
			ShowMinor:     true,
		},
		Input: InputConfig{
			PanFraction: 0.2,
			KeyZoom:     1.2,
			WheelBase:   1.2,
		},
		Style: StyleConfig{
			Background:  "#101418",
			GridMajor:   "#3a4450",
			GridMinor:   "#1f262e",
			Axis:        "#7a8796",
			Label:       "#9aa5b1",
			Points:      "#f2c14e",
			Lines:       "#5fb3f9",
			Polygons:    "#74c69d",
			Annotations: "#ff8fab",
			Ruler:       "#ffa500",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gridplot/gridplot.toml, falling back
// to the user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "gridplot", "gridplot.toml")
}

// Load reads path on top of the defaults. A missing file at the default
// location is not an error; an explicit path must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document on top of the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(names, ", "))
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	v := c.Viewport
	switch {
	case v.MinScale <= 0:
		return fmt.Errorf("%w: viewport.min_scale must be positive, got %g", ErrInvalid, v.MinScale)
	case v.MinScale > v.MaxScale:
		return fmt.Errorf("%w: viewport.min_scale %g exceeds max_scale %g", ErrInvalid, v.MinScale, v.MaxScale)
	case v.InitialScale <= 0:
		return fmt.Errorf("%w: viewport.initial_scale must be positive, got %g", ErrInvalid, v.InitialScale)
	case v.FitMargin < 0:
		return fmt.Errorf("%w: viewport.fit_margin must not be negative", ErrInvalid)
	case c.Grid.TargetSpacing <= 0:
		return fmt.Errorf("%w: grid.target_spacing must be positive, got %g", ErrInvalid, c.Grid.TargetSpacing)
	case c.Input.PanFraction <= 0 || c.Input.PanFraction > 1:
		return fmt.Errorf("%w: input.pan_fraction must be in (0,1], got %g", ErrInvalid, c.Input.PanFraction)
	case c.Input.KeyZoom <= 1:
		return fmt.Errorf("%w: input.key_zoom must exceed 1, got %g", ErrInvalid, c.Input.KeyZoom)
	case c.Input.WheelBase <= 1:
		return fmt.Errorf("%w: input.wheel_base must exceed 1, got %g", ErrInvalid, c.Input.WheelBase)
	}
	for name, col := range c.Style.colours() {
		if !isHexColour(col) {
			return fmt.Errorf("%w: style.%s %q is not a #rrggbb colour", ErrInvalid, name, col)
		}
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// ParseLevel converts Level to a charm log level.
func (l LogConfig) ParseLevel() (log.Level, error) {
	if l.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(l.Level)
}

func (s StyleConfig) colours() map[string]string {
	return map[string]string{
		"background":  s.Background,
		"grid_major":  s.GridMajor,
		"grid_minor":  s.GridMinor,
		"axis":        s.Axis,
		"label":       s.Label,
		"points":      s.Points,
		"lines":       s.Lines,
		"polygons":    s.Polygons,
		"annotations": s.Annotations,
		"ruler":       s.Ruler,
	}
}

func isHexColour(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
