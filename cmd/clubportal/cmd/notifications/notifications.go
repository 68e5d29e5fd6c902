package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

const loadTimeout = 15 * time.Second

// NotificationsCmd is the parent command for notification operations
var NotificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Read and follow your notifications",
	Long: `Commands that load the signed-in subject's notifications from the portal,
follow new ones live, and mark them read.`,
}

func init() {
	NotificationsCmd.AddCommand(listCmd)
	NotificationsCmd.AddCommand(watchCmd)
	NotificationsCmd.AddCommand(readCmd)
}

// startEngine loads config and the local session, then starts an engine and
// waits for its initial load.
func startEngine(ctx context.Context, opts cmdutil.EngineOptions) (*notify.Engine, error) {
	cfg := config.MustFromContext(ctx)

	session, err := cmdutil.LocalSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !session.Authenticated() {
		return nil, fmt.Errorf("not signed in (run 'clubportal session login <token>')")
	}

	engine, err := cmdutil.NewEngine(cfg, session, opts)
	if err != nil {
		return nil, err
	}
	if err := engine.Start(); err != nil {
		engine.Close()
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := engine.WaitLoaded(waitCtx); err != nil {
		engine.Close()
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return engine, nil
}
