package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridplot/internal/config"
	"gridplot/internal/geom"
)

const sites = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "id": "well", "geometry": {"type": "Point", "coordinates": [1, 1]}},
  {"type": "Feature", "id": "field",
   "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}}
]}`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// execute runs the CLI with an empty config home and returns its log output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sites.geojson", sites)
	out := filepath.Join(dir, "out.png")

	logs, err := execute(t, "export", in, "-o", out, "--width", "200", "--height", "100",
		"--annotate", "POINT (5 5)", "-v")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, logs)
	}
	if !strings.Contains(logs, "exported") || !strings.Contains(logs, "dataset loaded") {
		t.Errorf("logs = %q", logs)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 200 || img.Height != 100 {
		t.Errorf("image = %dx%d, want 200x100", img.Width, img.Height)
	}
}

func TestExportDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sites.geojson", sites)
	if _, err := execute(t, "export", in, "--width", "64", "--height", "64", "--no-grid"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sites.png")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sites.geojson", sites)
	badConfig := writeFile(t, dir, "bad.toml", "[grid]\ntarget_spacing = -1.0\n")
	unknown := writeFile(t, dir, "notes.txt", "x")

	tests := []struct {
		name string
		args []string
		want error
		msg  string
	}{
		{"unsupported", []string{"export", unknown}, geom.ErrUnsupported, ""},
		{"bad config", []string{"export", in, "--config", badConfig}, config.ErrInvalid, ""},
		{"missing config", []string{"export", in, "--config", filepath.Join(dir, "none.toml")}, os.ErrNotExist, ""},
		{"bad wkt", []string{"export", in, "--annotate", "POINT (", "-o", filepath.Join(dir, "x.png")}, geom.ErrWKT, "annotation 1"},
		{"bad size", []string{"export", in, "--width", "0"}, nil, "invalid size"},
		{"no file", []string{"export"}, nil, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("execute() = nil, want an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("execute() = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("execute() = %v, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() with no file = %v", err)
	}
	if cfg.Grid.TargetSpacing != config.Default().Grid.TargetSpacing {
		t.Errorf("defaults not applied: %+v", cfg.Grid)
	}

	dir := t.TempDir()
	p := writeFile(t, dir, "gridplot.toml", "[grid]\ntarget_spacing = 50.0\n")
	if cfg, err = loadConfig(p); err != nil || cfg.Grid.TargetSpacing != 50 {
		t.Errorf("loadConfig(%q) = %v, %v", p, cfg.Grid, err)
	}
}
