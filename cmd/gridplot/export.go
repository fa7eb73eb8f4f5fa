package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gridplot/internal/geom"
	"gridplot/internal/layers"
	"gridplot/internal/plot"
	"gridplot/internal/raster"
)

type exportOptions struct {
	output   string
	width    int
	height   int
	noGrid   bool
	annotate []string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a file to PNG, framed to its extent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return export(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG (default: input name with .png)")
	cmd.Flags().IntVar(&opts.width, "width", 1200, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 800, "image height in pixels")
	cmd.Flags().BoolVar(&opts.noGrid, "no-grid", false, "omit the coordinate grid")
	cmd.Flags().StringArrayVar(&opts.annotate, "annotate", nil, "WKT geometry drawn as an annotation (repeatable)")
	return cmd
}

func export(ctx context.Context, path string, opts exportOptions) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	start := time.Now()

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}

	d, err := geom.Load(path)
	if err != nil {
		return err
	}
	c, err := raster.New(opts.width, opts.height)
	if err != nil {
		return err
	}
	defer c.Close()

	p := plot.FromConfig(cfg, logger)
	set := layers.New(p.Root(), cfg.Style, layers.WithLogger(logger))
	defer set.Close()
	set.Load(d)
	for i, w := range opts.annotate {
		if _, err := set.AnnotateWKT(fmt.Sprintf("#%d", i+1), w); err != nil {
			return fmt.Errorf("annotation %d: %w", i+1, err)
		}
	}

	bounds := c.Bounds()
	p.Controller().Resize(bounds)
	p.Fit(d.BBox.Rect(), cfg.Viewport.FitMargin)
	p.SetGridVisible(!opts.noGrid)
	p.Render(bounds, c)
	if err := c.Err(); err != nil {
		return err
	}
	if err := c.SavePNG(out); err != nil {
		return fmt.Errorf("export %s: %w", out, err)
	}
	logger.Info("exported", "file", out, "features", len(d.Features),
		"scale", p.Viewport().Scale(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
