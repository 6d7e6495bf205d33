package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/milk9111/sonicstage/config"
	"github.com/milk9111/sonicstage/format"
	"github.com/milk9111/sonicstage/lint"
	"github.com/milk9111/sonicstage/render"
	"github.com/milk9111/sonicstage/tiled"
)

type exporter struct {
	cfg    *config.Config
	format format.MapFormat
	rules  []byte
	sheet  image.Image
}

func newExporter(cfg *config.Config, reg *format.Registry) (*exporter, error) {
	f, err := reg.Lookup(cfg.Format)
	if err != nil {
		return nil, err
	}

	e := &exporter{cfg: cfg, format: f, rules: lint.Default()}
	if cfg.Lint.Script != "" {
		e.rules, err = os.ReadFile(cfg.Lint.Script)
		if err != nil {
			return nil, fmt.Errorf("read lint script: %w", err)
		}
	}
	if cfg.Preview.Enabled && cfg.Preview.Sheet != "" {
		e.sheet, err = render.LoadSheet(cfg.Preview.Sheet)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *exporter) exportFile(ctx context.Context, path string) error {
	m, err := tiled.Load(path)
	if err != nil {
		return err
	}
	return e.export(ctx, m, path)
}

// export lints m, writes it in the configured format next to input (or into
// the output directory) and optionally renders a preview.
func (e *exporter) export(ctx context.Context, m *tiled.Map, input string) error {
	if e.cfg.Lint.Enabled {
		if err := lint.Check(ctx, m, e.rules); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	}

	out := e.cfg.OutputPath(input, e.format.Extension)
	if err := e.format.Write(m, out); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	log.Printf("stagec: wrote %s", out)

	if !e.cfg.Preview.Enabled {
		return nil
	}
	img, err := render.Stage(m, render.Options{
		Sheet:     e.sheet,
		Scale:     e.cfg.Preview.Scale,
		Collision: e.cfg.Preview.Collision,
		Objects:   e.cfg.Preview.Objects,
	})
	if err != nil {
		return fmt.Errorf("%s: preview: %w", input, err)
	}
	previewPath := e.cfg.OutputPath(input, "png")
	f, err := format.CreateBinaryFile(previewPath)
	if err != nil {
		return err
	}
	defer f.Discard()
	if err := render.WritePNG(f, img); err != nil {
		return err
	}
	if err := f.Commit(); err != nil {
		return err
	}
	log.Printf("stagec: wrote %s", previewPath)
	return nil
}
