package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
)

var (
	mintSubject string
	mintRole    string
	mintClubID  string
	mintTTL     time.Duration
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Sign a session token",
	Long: `Signs a session token with the configured secret. Sign-in belongs to the
identity provider; this is for development and for testing the gate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if err := cfg.RequireSecret(); err != nil {
			return err
		}

		role, ok := auth.ParseRole(mintRole)
		if !ok || role == auth.RoleAnonymous {
			return fmt.Errorf("invalid role %q: must be one of member, club-leader, co-leader, super-admin", mintRole)
		}

		subject := mintSubject
		if subject == "" {
			subject = uuid.NewString()
		}
		ttl := mintTTL
		if ttl <= 0 {
			ttl = cfg.Session.TTL
		}

		token, err := auth.IssueSessionToken([]byte(cfg.Session.Secret), auth.Session{
			Subject: subject,
			Role:    role,
			ClubID:  mintClubID,
		}, time.Now(), ttl)
		if err != nil {
			return fmt.Errorf("failed to mint session token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintSubject, "subject", "", "Subject identifier (default: random UUID)")
	mintCmd.Flags().StringVar(&mintRole, "role", string(auth.RoleMember), "Session role")
	mintCmd.Flags().StringVar(&mintClubID, "club", "", "Club affiliation identifier")
	mintCmd.Flags().DurationVar(&mintTTL, "ttl", 0, "Token lifetime (default: session TTL from config)")
}
