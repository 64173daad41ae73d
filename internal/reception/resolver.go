// Package reception resolves client keys into verified site identities.
package reception

import (
	"fmt"
	"maps"
	"slices"

	"github.com/darmiel/cpd/internal/core"
)

// minKeyLength is a site prefix plus at least one payload character.
const minKeyLength = core.PrefixLength + 1

// Builder collects verifier bindings during setup.
// It is not safe for concurrent use; call Build once setup is complete.
type Builder struct {
	verifiers map[core.SiteCode]core.SiteVerifier
}

func NewBuilder() *Builder {
	return &Builder{
		verifiers: make(map[core.SiteCode]core.SiteVerifier),
	}
}

// Bind registers the verifier for a site, replacing any previous binding.
// Binding nil removes the site.
func (b *Builder) Bind(site core.SiteCode, verifier core.SiteVerifier) *Builder {
	if verifier == nil {
		delete(b.verifiers, site)
		return b
	}
	b.verifiers[site] = verifier
	return b
}

// Build returns a Resolver over a snapshot of the current bindings.
// Later calls to Bind do not affect resolvers that were already built.
func (b *Builder) Build() *Resolver {
	return &Resolver{
		verifiers: maps.Clone(b.verifiers),
	}
}

// Resolver turns keys into client identities. It is immutable and safe for concurrent use.
type Resolver struct {
	verifiers map[core.SiteCode]core.SiteVerifier
}

// Identify resolves the key into a ClientIdentity.
// Every failure is returned as *core.InvalidKeyError and matches core.ErrInvalidKey.
func (r *Resolver) Identify(key string) (core.ClientIdentity, error) {
	identity, err := r.identify(key)
	if err != nil {
		return core.ClientIdentity{}, &core.InvalidKeyError{Key: key, Cause: err}
	}
	return identity, nil
}

func (r *Resolver) identify(key string) (core.ClientIdentity, error) {
	prefix, payload, ok := core.SplitKey(key)
	if !ok {
		return core.ClientIdentity{}, fmt.Errorf("%w: expected at least %d characters", core.ErrMalformedKey, minKeyLength)
	}

	site, err := core.ParseSite(prefix)
	if err != nil {
		return core.ClientIdentity{}, err
	}

	verifier, bound := r.verifiers[site]
	if !bound {
		return core.ClientIdentity{}, fmt.Errorf("%w: '%s'", core.ErrUnregisteredSite, site)
	}

	externalID, err := verifier.Identify(payload)
	if err != nil {
		return core.ClientIdentity{}, fmt.Errorf("site '%s': %w", site, err)
	}

	return core.ClientIdentity{
		Site:       site,
		ExternalID: externalID,
	}, nil
}

// Bound reports whether a verifier is registered for the site.
func (r *Resolver) Bound(site core.SiteCode) bool {
	_, ok := r.verifiers[site]
	return ok
}

// Sites returns the sites with a registered verifier in ascending order.
func (r *Resolver) Sites() []core.SiteCode {
	sites := make([]core.SiteCode, 0, len(r.verifiers))
	for site := range r.verifiers {
		sites = append(sites, site)
	}
	slices.Sort(sites)
	return sites
}
