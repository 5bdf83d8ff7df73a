// Command htmlview shows rendered documents in a window. Links can be
// followed by clicking them and :hover rules follow the pointer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"htmlbox/pkg/config"
	"htmlbox/pkg/observability"
)

func main() {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "htmlview [input]",
		Short: "Show a rendered HTML or Markdown document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			observability.InitializeLogger(cfg.Logger)
			defer observability.Sync()

			b := newBrowser(cfg, observability.GetLogger())
			if len(args) == 1 {
				b.open(args[0])
			}
			b.run()
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
