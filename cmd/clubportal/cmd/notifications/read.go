package notifications

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
)

var readAll bool

var readCmd = &cobra.Command{
	Use:   "read [id...]",
	Short: "Mark notifications as read",
	Long: `Marks the given notifications as read, or every unread one with --all.
Local state only changes once the portal confirms.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !readAll && len(args) == 0 {
			return fmt.Errorf("specify notification ids or --all")
		}

		engine, err := startEngine(cmd.Context(), cmdutil.EngineOptions{})
		if err != nil {
			return err
		}
		defer engine.Close()

		if readAll {
			if err := engine.MarkAllRead(cmd.Context()); err != nil {
				return fmt.Errorf("failed to mark all read: %w", err)
			}
		} else {
			for _, id := range args {
				if err := engine.MarkRead(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to mark %s read: %w", id, err)
				}
			}
		}

		pterm.Success.Printf("%d unread remaining\n", engine.UnreadCount())
		return nil
	},
}

func init() {
	readCmd.Flags().BoolVar(&readAll, "all", false, "Mark every unread notification read")
}
