package session

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the locally stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		session, err := cmdutil.LocalSession(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Session")
		if !session.Authenticated() {
			pterm.Info.Printf("Not signed in (role: %s)\n", session.Role)
			return nil
		}

		pterm.Info.Printf("Subject: %s\n", session.Subject)
		pterm.Info.Printf("Role: %s\n", session.Role)
		if session.ClubID != "" {
			pterm.Info.Printf("Club: %s\n", session.ClubID)
		}
		if !session.ExpiresAt.IsZero() {
			pterm.Info.Printf("Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
		}
		return nil
	},
}
