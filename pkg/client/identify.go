package client

import (
	"context"

	"github.com/darmiel/cpd/internal/api"
	"github.com/darmiel/cpd/internal/core"
)

// Identify asks the server to resolve key into a client identity.
func (c *Client) Identify(ctx context.Context, key string) (*core.ClientIdentity, string, error) {
	var identity core.ClientIdentity
	correlation, err := c.post(ctx, c.url().
		setPath(api.IdentifyRoute).
		build(), api.IdentifyPayload{Key: key}, &identity)
	if err != nil {
		return nil, correlation, err
	}
	return &identity, correlation, nil
}

// Sites lists the sites the server resolves keys for.
func (c *Client) Sites(ctx context.Context) ([]core.SiteCode, string, error) {
	var resp api.SitesResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.SitesRoute).
		build(), &resp)
	return resp.Sites, correlation, err
}
