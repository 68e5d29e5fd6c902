package notifications

import (
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := startEngine(cmd.Context(), cmdutil.EngineOptions{})
		if err != nil {
			return err
		}
		defer engine.Close()

		return renderSnapshot(cmd.OutOrStdout(), engine.Snapshot())
	},
}
