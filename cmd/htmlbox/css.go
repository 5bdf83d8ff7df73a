package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"htmlbox/pkg/css"
	"htmlbox/pkg/resource"
)

func newCSSCmd(a *app) *cobra.Command {
	var withDefaults bool
	cmd := &cobra.Command{
		Use:   "css <file>",
		Short: "Print the parsed rules of a stylesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resource.NewFetcher(resource.Options{Timeout: a.cfg.Fetch.Timeout}, a.logger)
			if err != nil {
				return err
			}
			text, err := f.FetchText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if withDefaults {
				text = css.DefaultStyleSheet + "\n" + text
			}
			return writeStylesheet(cmd.OutOrStdout(), css.NewParser(nil).Parse(text))
		},
	}
	cmd.Flags().BoolVar(&withDefaults, "defaults", false, "include the built-in default stylesheet")
	return cmd
}

// writeStylesheet prints the blocks of every media bucket, "all" unwrapped.
func writeStylesheet(w io.Writer, data *css.StylesheetData) error {
	for _, media := range data.Media() {
		keys := data.Keys(media)
		if len(keys) == 0 {
			continue
		}
		indent := ""
		if media != css.MediaAll {
			if _, err := fmt.Fprintf(w, "@media %s {\n", media); err != nil {
				return err
			}
			indent = "  "
		}
		for _, key := range keys {
			for _, b := range data.Blocks(media, key) {
				if _, err := fmt.Fprintln(w, indent+b.String()); err != nil {
					return err
				}
			}
		}
		if media != css.MediaAll {
			if _, err := fmt.Fprintln(w, "}"); err != nil {
				return err
			}
		}
	}
	return nil
}
