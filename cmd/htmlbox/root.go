package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/container"
	"htmlbox/pkg/observability"
	"htmlbox/pkg/resource"
)

// app carries the loaded configuration into the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "htmlbox",
		Short:         "Render HTML with CSS to images and inspect box trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Sync()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file")
	flags.IntP("width", "w", 0, "viewport width in pixels")
	flags.String("media", "", "media type for @media rules")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRenderCmd(a), newTreeCmd(a), newCSSCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"render.width": "width",
		"render.media": "media",
		"logger.level": "log-level",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}
	a.cfg, err = config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	observability.InitializeLogger(a.cfg.Logger)
	a.logger = observability.GetLogger()
	return nil
}

// open loads the document at input, a path or an http(s) URL, into a new
// session and waits for its images.
func (a *app) open(ctx context.Context, input string) (*container.Container, error) {
	base := input
	if !resource.IsNetworkURL(input) {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", input, err)
		}
		input, base = abs, filepath.Dir(abs)
	}
	c, err := container.NewFromConfig(a.cfg, base, nil, a.logger)
	if err != nil {
		return nil, err
	}
	doc, err := c.Fetcher().LoadDocument(ctx, input)
	if err != nil {
		c.Dispose()
		return nil, fmt.Errorf("loading %s: %w", input, err)
	}
	c.SetHTML(doc)

	wait, cancel := context.WithTimeout(ctx, a.cfg.Fetch.Timeout)
	defer cancel()
	if err := c.WaitForImages(wait); err != nil {
		a.logger.Warn("images still loading", zap.Int("pending", c.PendingImages()), zap.Error(err))
	}
	a.logger.Debug("document loaded", zap.String("input", input))
	return c, nil
}
