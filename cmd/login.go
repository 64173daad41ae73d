package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/cliconfig"
	"github.com/darmiel/cpd/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login <token>",
	Short: "Save an admin token for a cpd server",
	Long: `Checks the admin token against the audit endpoint of the server (--server)
and saves it for future admin requests like 'cpd audit log'.
The token is an HS256 JWT signed with the server's admin signing key and
carrying the "admin" role.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(args[0])
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}
		server, err := serverAddr()
		if err != nil {
			return err
		}

		log.Info().Msgf("Checking token against %s...", server)
		cli := client.New(server, client.WithAuthToken(token))
		_, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{Limit: 1})
		switch {
		case errors.Is(err, client.ErrInvalidSession):
			return logError(err, correlation, "token is invalid or expired")
		case err != nil:
			return logError(err, correlation, "token was not accepted")
		}

		err = updateCredentials(func(cfg *cliconfig.CLIConfig) error {
			return cfg.SetCredential(server, token)
		})
		if err != nil {
			return err
		}
		logSuccess("saved admin token for %s", bold(server))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved admin token of a cpd server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := serverAddr()
		if err != nil {
			return err
		}
		var removed bool
		err = updateCredentials(func(cfg *cliconfig.CLIConfig) (err error) {
			removed, err = cfg.RemoveCredential(server)
			return err
		})
		if err != nil {
			return err
		}
		if !removed {
			log.Info().Msgf("no token saved for %s", server)
			return nil
		}
		logSuccess("removed admin token for %s", bold(server))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func updateCredentials(fn func(cfg *cliconfig.CLIConfig) error) error {
	store, err := cliconfig.DefaultStore()
	if err != nil {
		return err
	}
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := store.Save(cfg); err != nil {
		return logError(err, "", "could not save credentials to "+store.Path())
	}
	return nil
}
