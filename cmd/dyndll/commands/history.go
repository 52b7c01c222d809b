package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/dyndll/internal/app"
)

func (c *CLI) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return c.app.History(cmd.Context(), limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntP("limit", "n", app.DefaultHistoryLimit, "Number of builds to list")
	return cmd
}
