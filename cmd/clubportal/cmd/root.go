package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/gate"
	"github.com/easymake/clubportal/cmd/clubportal/cmd/notifications"
	"github.com/easymake/clubportal/cmd/clubportal/cmd/session"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "clubportal",
	Short: "Club portal server and client tools",
	Long: `clubportal serves the university club portal with its role-gated admin
console, and provides client commands for sessions and live notifications.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if debug {
			cfg.Debug = true
		}

		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (env: CLUBPORTAL_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (env: CLUBPORTAL_DEBUG)")

	rootCmd.AddCommand(gate.GateCmd)
	rootCmd.AddCommand(session.SessionCmd)
	rootCmd.AddCommand(notifications.NotificationsCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
