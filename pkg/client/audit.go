package client

import (
	"context"

	"github.com/darmiel/cpd/internal/api"
	"github.com/darmiel/cpd/internal/core"
)

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Site          string
	ExternalID    string
}

// ListAudits retrieves the latest audit entries from the server. Requires an admin token.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Site != "" {
		ub = ub.addQueryParam("site", opts.Site)
	}
	if opts.ExternalID != "" {
		ub = ub.addQueryParam("external_id", opts.ExternalID)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}
