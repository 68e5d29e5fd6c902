package session

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	"github.com/easymake/clubportal/cmd/clubportal/internal/localstore"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the session from local storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		store, err := localstore.Open(cmd.Context(), cfg.LocalStorageDSN)
		if err != nil {
			return fmt.Errorf("open local storage: %w", err)
		}
		defer store.Close()

		if err := store.ClearSession(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		pterm.Success.Println("Logged out")
		return nil
	},
}
