package client

import (
	"context"

	"github.com/venlin/kern/internal/api"
	"github.com/venlin/kern/internal/buildinfo"
)

// Version retrieves build information from the server.
func (c *Client) Version(ctx context.Context) (*buildinfo.Info, error) {
	var info buildinfo.Info
	err := c.get(ctx, c.url().
		setPath(api.VersionRoute).
		build(), &info)
	return &info, err
}
