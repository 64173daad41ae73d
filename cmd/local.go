package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
	"github.com/darmiel/cpd/internal/sites"
)

const defaultConfigFile = "cpd.yaml"

// cfgFile is the server configuration used by serve and the local modes of other commands.
var cfgFile string

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&cfgFile, "config", "f", "", "Server configuration file (default is ./"+defaultConfigFile+")")
}

func configPath() string {
	if cfgFile == "" {
		return defaultConfigFile
	}
	return cfgFile
}

func loadConfig() (*config.Config, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config '%s': %w", path, err)
	}
	return cfg, nil
}

// buildService wires resolver, accept policy and auditor from the configuration.
func buildService(cfg *config.Config) (*service.IdentityService, core.Auditor, error) {
	log.Debug().Int("sites", len(cfg.Sites)).Msg("Initializing site verifiers...")
	resolver, err := sites.BuildResolver(cfg.Sites)
	if err != nil {
		return nil, nil, fmt.Errorf("building resolver: %w", err)
	}

	policy, err := service.NewAcceptPolicy(cfg.Sites)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling accept policy: %w", err)
	}

	auditor, err := audit.New(cfg.Audit)
	if err != nil {
		return nil, nil, fmt.Errorf("creating auditor: %w", err)
	}

	return service.NewIdentityService(resolver, policy, auditor), auditor, nil
}

func siteCodes(codes []core.SiteCode) []string {
	res := make([]string, 0, len(codes))
	for _, code := range codes {
		res = append(res, code.Prefix())
	}
	return res
}
