package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	var height int
	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a document to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer c.Dispose()

			if !cmd.Flags().Changed("height") {
				height = a.cfg.Render.Height
			}
			surface := c.RenderImage(a.cfg.Render.Width, height, a.cfg.BackgroundColor())
			if err := surface.SavePNG(output); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			bounds := surface.Image().Bounds()
			a.logger.Info("rendered",
				zap.String("output", output),
				zap.Int("width", bounds.Dx()),
				zap.Int("height", bounds.Dy()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %dx%d\n", output, bounds.Dx(), bounds.Dy())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG file")
	cmd.Flags().IntVar(&height, "height", 0, "image height; 0 fits the document")
	return cmd
}
