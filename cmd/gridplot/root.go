package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"gridplot/internal/config"
	"gridplot/internal/tui"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	root := &cobra.Command{
		Use:          "gridplot [file]",
		Short:        "Pan, zoom and measure geospatial data in the terminal",
		Long:         `gridplot draws GeoJSON, WKT, CSV and KML files on an adaptive coordinate grid. Drag to pan, scroll to zoom, right-drag to measure.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			level, err := cfg.Log.ParseLevel()
			if err != nil {
				return err
			}
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runView(cmd, path)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newExportCmd())
	return root
}

// loadConfig reads an explicit config file, or the default one if it exists.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path, true)
	}
	return config.Load(config.DefaultPath(), false)
}

// runView runs the terminal host. The terminal belongs to the UI, so logs go
// to the configured file or nowhere.
func runView(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg := configFromContext(ctx)

	var w io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w, loggerFromContext(ctx).GetLevel())

	var m tui.Model
	if path != "" {
		m = tui.NewWithPath(cfg, path, tui.WithLogger(logger))
	} else {
		m = tui.New(cfg, tui.WithLogger(logger))
	}
	logger.Info("starting", "file", path)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
