package service

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
)

// AcceptPolicy holds the compiled per-site accept expressions.
// Sites without an expression accept every verified identity.
type AcceptPolicy struct {
	programs map[core.SiteCode]*vm.Program
}

func acceptEnv(identity core.ClientIdentity) map[string]any {
	return map[string]any{
		"site":        identity.Site.Prefix(),
		"external_id": identity.ExternalID,
	}
}

// NewAcceptPolicy compiles the accept expressions of all configured sites.
func NewAcceptPolicy(cfgs []config.SiteConfig) (*AcceptPolicy, error) {
	programs := make(map[core.SiteCode]*vm.Program)
	for _, cfg := range cfgs {
		if cfg.Accept == "" {
			continue
		}
		site, err := cfg.Code()
		if err != nil {
			return nil, err
		}
		program, err := expr.Compile(cfg.Accept,
			expr.Env(acceptEnv(core.ClientIdentity{})),
			expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling accept expression for site '%s': %w", site.Prefix(), err)
		}
		programs[site] = program
	}
	return &AcceptPolicy{programs: programs}, nil
}

// Accepts evaluates the expression bound to the identity's site.
func (p *AcceptPolicy) Accepts(identity core.ClientIdentity) (bool, error) {
	if p == nil {
		return true, nil
	}
	program, ok := p.programs[identity.Site]
	if !ok {
		return true, nil
	}
	out, err := expr.Run(program, acceptEnv(identity))
	if err != nil {
		return false, fmt.Errorf("evaluating accept expression: %w", err)
	}
	accepted, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("accept expression returned %T, expected bool", out)
	}
	return accepted, nil
}
