package gate

import "github.com/spf13/cobra"

var roleInput string

// GateCmd is the parent command for route authorization tooling
var GateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Inspect route authorization",
	Long:  `Commands for evaluating the admin console route gate without running the server.`,
}

func init() {
	GateCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&roleInput, "role", "", "Evaluate for a single role (default: every role)")
}
