package notifications

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow notifications live",
	Long: `Loads your notifications and keeps the list open to new ones pushed by the
portal until interrupted. Send SIGHUP to fetch the full list again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		redraw := func(snap notify.Snapshot) {
			pterm.Print("\033[H\033[2J")
			if err := renderSnapshot(out, snap); err != nil {
				log.Printf("render notifications: %v", err)
			}
		}

		engine, err := startEngine(cmd.Context(), cmdutil.EngineOptions{Live: true, OnChange: redraw})
		if err != nil {
			return err
		}
		defer engine.Close()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)
		defer signal.Stop(reload)

		for {
			select {
			case <-reload:
				if err := engine.Reload(cmd.Context()); err != nil {
					log.Printf("reload notifications: %v", err)
				}
			case <-shutdown:
				return nil
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}
