package client

import (
	"context"

	"github.com/darmiel/cpd/internal/api"
)

// Info returns the build information of the server and the sites it resolves keys for.
func (c *Client) Info(ctx context.Context) (*api.AboutResponse, string, error) {
	var about api.AboutResponse
	correlation, err := c.get(ctx, c.url().
		setPath(api.AboutRoute).
		build(), &about)
	if err != nil {
		return nil, correlation, err
	}
	return &about, correlation, nil
}
