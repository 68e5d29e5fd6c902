package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/easymake/clubportal/cmd/clubportal/cmd/cmdutil"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	"github.com/easymake/clubportal/cmd/clubportal/internal/server"
	"github.com/easymake/clubportal/cmd/clubportal/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the club portal server",
	Long:  `Starts the HTTP server. Every admin console request passes the route gate before any page is served.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if err := cfg.RequireSecret(); err != nil {
			return err
		}

		resolver, err := cmdutil.NewResolver(cfg)
		if err != nil {
			return err
		}
		g, err := cmdutil.NewGate(cfg)
		if err != nil {
			return err
		}
		metrics, err := telemetry.NewPortalMetrics()
		if err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}

		corsOpts := server.DefaultCORSOptions()
		corsOpts.AllowedOrigins = cfg.AllowedOrigins

		handler := server.NewH2CHandler(server.RouterOptions{
			Resolver:    resolver,
			Gate:        g,
			Metrics:     metrics,
			CORSOptions: &corsOpts,
			Debug:       cfg.Debug,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
