package sites

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/reception"
)

// secretOptions are the options shared by all signed sites.
type secretOptions struct {
	Secret    string `mapstructure:"secret"`
	SecretEnv string `mapstructure:"secret_env"`
}

func (o secretOptions) resolve() (string, error) {
	if o.SecretEnv != "" {
		if v, ok := os.LookupEnv(o.SecretEnv); ok && v != "" {
			return v, nil
		}
		if o.Secret == "" {
			return "", fmt.Errorf("environment variable '%s' is not set", o.SecretEnv)
		}
	}
	if o.Secret == "" {
		return "", fmt.Errorf("missing 'secret' or 'secret_env'")
	}
	return o.Secret, nil
}

func decodeSecret(raw map[string]any) (string, error) {
	var opts secretOptions
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return "", fmt.Errorf("decoding site options: %w", err)
	}
	return opts.resolve()
}

// NewVerifier creates the verifier for a configured site.
func NewVerifier(cfg config.SiteConfig) (core.SiteCode, core.SiteVerifier, error) {
	site, err := cfg.Code()
	if err != nil {
		return 0, nil, err
	}

	switch site {
	case core.SiteNO:
		return site, Device{}, nil
	case core.SiteOK, core.SiteVK, core.SiteMM:
		secret, err := decodeSecret(cfg.Config)
		if err != nil {
			return 0, nil, err
		}
		var v core.SiteVerifier
		switch site {
		case core.SiteOK:
			v, err = NewOdnoklassniki(secret)
		case core.SiteVK:
			v, err = NewVKontakte(secret)
		default:
			v, err = NewMailRu(secret)
		}
		if err != nil {
			return 0, nil, err
		}
		return site, v, nil
	default:
		return 0, nil, fmt.Errorf("no verification scheme available for site '%s'", site.Prefix())
	}
}

// BuildResolver binds a verifier for every configured site.
func BuildResolver(cfgs []config.SiteConfig) (*reception.Resolver, error) {
	builder := reception.NewBuilder()
	for idx, cfg := range cfgs {
		site, verifier, err := NewVerifier(cfg)
		if err != nil {
			return nil, fmt.Errorf("building verifier for site #%d ('%s'): %w", idx, cfg.Site, err)
		}
		builder.Bind(site, verifier)
	}
	return builder.Build(), nil
}
