package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dyndll/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Scan the sources once and build the artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), app.BuildOptions{
				Force: c.config.GetBool("force"),
			})
		},
	}
}
