package session

import "github.com/spf13/cobra"

// SessionCmd is the parent command for session operations
var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage portal sessions",
	Long: `Commands for minting session tokens and for the session mirrored into
local storage, which client commands use to authenticate.`,
}

func init() {
	SessionCmd.AddCommand(mintCmd)
	SessionCmd.AddCommand(loginCmd)
	SessionCmd.AddCommand(logoutCmd)
	SessionCmd.AddCommand(showCmd)
}
