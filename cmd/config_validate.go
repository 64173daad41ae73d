package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/service"
	"github.com/darmiel/cpd/internal/sites"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Parses the configuration file, builds every site verifier and compiles
every accept expression without starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return logError(err, "", "configuration is invalid")
		}
		if _, err := sites.BuildResolver(cfg.Sites); err != nil {
			return logError(err, "", "site configuration is invalid")
		}
		if _, err := service.NewAcceptPolicy(cfg.Sites); err != nil {
			return logError(err, "", "accept expression is invalid")
		}
		if len(cfg.Admin.Key()) == 0 {
			log.Warn().Msg("no admin signing key configured, admin endpoints will be disabled")
		}
		logSuccess("configuration %s is valid (%d sites)", bold(configPath()), len(cfg.Sites))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)

	addConfigFlag(configValidateCmd.Flags())
}
