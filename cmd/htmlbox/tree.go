package main

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"htmlbox/pkg/html"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTreeCmd(a *app) *cobra.Command {
	var asJSON, noLayout bool
	cmd := &cobra.Command{
		Use:   "tree <input>",
		Short: "Print the corrected box tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer c.Dispose()

			if !noLayout {
				c.Layout(float64(a.cfg.Render.Width))
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(html.Snapshot(c.Root()))
			}
			return html.DumpTree(out, c.Root())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().BoolVar(&noLayout, "no-layout", false, "skip layout, omitting geometry")
	return cmd
}
