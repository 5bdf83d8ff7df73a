package container

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/graphics/ggbackend"
	"htmlbox/pkg/resource"
)

// NewFromConfig creates a session on the raster backend. base resolves
// relative references; empty falls back to fetch.base_dir.
func NewFromConfig(cfg *config.Config, base string, reporter events.Reporter, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if base == "" {
		base = cfg.Fetch.BaseDir
	}
	fetcher, err := resource.NewFetcher(resource.Options{
		BaseURL:   base,
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		RateLimit: cfg.Fetch.RateLimit,
	}, logger)
	if err != nil {
		return nil, err
	}

	backend := ggbackend.New()
	adapter := graphics.NewAdapter(backend, cfg.Render.FontFamily, logger)
	if cfg.Render.FontDir != "" {
		if err := RegisterFontDir(backend, adapter, cfg.Render.FontDir); err != nil {
			return nil, err
		}
	}

	return New(adapter, Options{
		Media:               cfg.Render.Media,
		MasterCSS:           cfg.Render.MasterCSS,
		Reporter:            reporter,
		Fetcher:             fetcher,
		MaxConcurrentImages: cfg.Fetch.MaxConcurrent,
		Logger:              logger,
	})
}

// styleSuffixes maps file name suffixes to the face they provide, longest
// first so "-BoldItalic" wins over "-Italic".
var styleSuffixes = []struct {
	suffix string
	set    func(*ggbackend.FontFiles, string)
}{
	{"-BoldItalic", func(f *ggbackend.FontFiles, p string) { f.BoldItalic = p }},
	{"-Regular", func(f *ggbackend.FontFiles, p string) { f.Regular = p }},
	{"-Italic", func(f *ggbackend.FontFiles, p string) { f.Italic = p }},
	{"-Bold", func(f *ggbackend.FontFiles, p string) { f.Bold = p }},
}

// RegisterFontDir registers the .ttf files in dir. Files named
// Family-Bold.ttf, Family-Italic.ttf and Family-BoldItalic.ttf supply the
// styled faces of Family; any other name is a regular face.
func RegisterFontDir(backend *ggbackend.Backend, adapter *graphics.Adapter, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading font dir: %w", err)
	}
	families := map[string]*ggbackend.FontFiles{}
	var order []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".ttf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		set := func(f *ggbackend.FontFiles, p string) { f.Regular = p }
		for _, s := range styleSuffixes {
			if stem, ok := strings.CutSuffix(name, s.suffix); ok && stem != "" {
				name, set = stem, s.set
				break
			}
		}
		files, ok := families[name]
		if !ok {
			files = &ggbackend.FontFiles{}
			families[name] = files
			order = append(order, name)
		}
		set(files, path)
	}
	for _, name := range order {
		if err := backend.LoadFontFiles(name, *families[name]); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
		adapter.AddFontFamily(name)
	}
	return nil
}
