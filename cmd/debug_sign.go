package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/sites"
)

// signer is implemented by verifiers that can produce payloads for testing.
type signer interface {
	Sign(first, second string) (string, error)
}

var debugSignSecret string

var debugSignCmd = &cobra.Command{
	Use:   "sign <site> <field> <field>",
	Short: "Create a signed key for a site",
	Long: `Creates a key as the site would issue it. The fields depend on the site:

  mm: <vid> <params>
  ok: <logged_user_id> <session_key>
  vk: <api_id> <viewer_id>

The secret is taken from --secret or from the site entry in the configuration file (-f).`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		siteCfg, err := signSiteConfig(args[0])
		if err != nil {
			return err
		}

		code, verifier, err := sites.NewVerifier(siteCfg)
		if err != nil {
			return err
		}
		s, ok := verifier.(signer)
		if !ok {
			return fmt.Errorf("site '%s' does not sign its keys", code.Prefix())
		}

		payload, err := s.Sign(args[1], args[2])
		if err != nil {
			return err
		}
		log.Debug().Str("site", code.Prefix()).Msg("Signed payload")
		fmt.Println(code.Prefix() + payload)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugSignCmd)

	addConfigFlag(debugSignCmd.Flags())
	debugSignCmd.Flags().StringVar(&debugSignSecret, "secret", "", "Secret of the site (overrides the configuration file)")
}

func signSiteConfig(prefix string) (config.SiteConfig, error) {
	var code core.SiteCode
	if err := code.UnmarshalText([]byte(prefix)); err != nil {
		return config.SiteConfig{}, err
	}
	if debugSignSecret != "" {
		return config.SiteConfig{
			Site:   code.Prefix(),
			Config: map[string]any{"secret": debugSignSecret},
		}, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return config.SiteConfig{}, fmt.Errorf("no --secret given: %w", err)
	}
	for _, s := range cfg.Sites {
		if c, err := s.Code(); err == nil && c == code {
			return s, nil
		}
	}
	return config.SiteConfig{}, fmt.Errorf("site '%s' is not configured in '%s'", code.Prefix(), configPath())
}
