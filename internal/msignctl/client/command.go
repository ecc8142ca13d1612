package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

// EnqueueCommand creates a new command for a device
func (c *Client) EnqueueCommand(ctx context.Context, deviceID string, req v1.CommandEnqueueRequest) (*v1.Command, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/devices/"+deviceID+"/commands", nil, req)
	if err != nil {
		return nil, err
	}

	var cmd v1.Command
	if err := decodeResponse(resp, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// ListCommands retrieves a device's recent commands, newest first
func (c *Client) ListCommands(ctx context.Context, deviceID string, limit int) ([]v1.Command, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/devices/"+deviceID+"/commands", query, nil)
	if err != nil {
		return nil, err
	}

	var commands []v1.Command
	if err := decodeResponse(resp, &commands); err != nil {
		return nil, err
	}
	return commands, nil
}

// CancelCommand withdraws one pending command
func (c *Client) CancelCommand(ctx context.Context, deviceID, commandID string) (int, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		"/api/v1/devices/"+deviceID+"/commands/"+commandID, nil, nil)
	if err != nil {
		return 0, err
	}

	var out v1.CommandCancelResponse
	if err := decodeResponse(resp, &out); err != nil {
		return 0, err
	}
	return out.Cancelled, nil
}

// ExpireCommands fails executing commands fleet-wide that outlived their
// timeout
func (c *Client) ExpireCommands(ctx context.Context) (int, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/commands/expire", nil, nil)
	if err != nil {
		return 0, err
	}

	var out v1.CommandExpireResponse
	if err := decodeResponse(resp, &out); err != nil {
		return 0, err
	}
	return out.Expired, nil
}

// CancelAllCommands withdraws every pending command for a device
func (c *Client) CancelAllCommands(ctx context.Context, deviceID string) (int, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		"/api/v1/devices/"+deviceID+"/commands", nil, nil)
	if err != nil {
		return 0, err
	}

	var out v1.CommandCancelResponse
	if err := decodeResponse(resp, &out); err != nil {
		return 0, err
	}
	return out.Cancelled, nil
}
