package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cpd server",
	Long: `Starts the HTTP server resolving keys for the sites bound in the configuration file.
Admin endpoints are only available if an admin signing key is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		identityService, auditor, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close auditor")
			}
		}()

		log.Info().
			Str("sites", strings.Join(siteCodes(identityService.Sites()), ",")).
			Msg("Sites bound")

		adminKey := cfg.Admin.Key()
		if len(adminKey) == 0 {
			log.Info().Msg("No admin signing key configured, admin endpoints are disabled")
		}

		srv := api.NewServer(identityService, auditor)

		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(adminKey),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server crashed: %w", err)
			}
			return nil
		case <-quit:
		}
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addConfigFlag(serveCmd.Flags())
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}
