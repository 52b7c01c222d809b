package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dyndll/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the sources, rebuild the artifact and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Serve(cmd.Context(), app.ServeOptions{
				Force:  c.config.GetBool("force"),
				Listen: c.config.GetString("listen"),
			})
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Address to serve the artifact on (env DYNDLL_LISTEN)")
	_ = c.config.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}
