package audit

import (
	"fmt"
	"strings"

	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
)

// maxExternalIDLength bounds the external id kept per entry. Not every scheme signs it.
const maxExternalIDLength = 128

// TrimIdentity returns a copy of identity fit for storage.
func TrimIdentity(identity core.ClientIdentity) *core.ClientIdentity {
	if len(identity.ExternalID) > maxExternalIDLength {
		identity.ExternalID = strings.ToValidUTF8(identity.ExternalID[:maxExternalIDLength], "") + "..."
	}
	return &identity
}

// New creates the auditor described by cfg.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "memory", "":
		return NewInMemoryAuditor(), nil
	case "file":
		return NewFileAuditor(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}
