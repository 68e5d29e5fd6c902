package session

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	"github.com/easymake/clubportal/cmd/clubportal/internal/localstore"
)

var loginCmd = &cobra.Command{
	Use:   "login <token>",
	Short: "Store a session token in local storage",
	Long: `Mirrors a session token issued by the portal into local storage so that
client commands can authenticate with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		store, err := localstore.Open(cmd.Context(), cfg.LocalStorageDSN)
		if err != nil {
			return fmt.Errorf("open local storage: %w", err)
		}
		defer store.Close()

		if err := store.SaveSession(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		pterm.Success.Println("Session stored")
		return nil
	},
}
