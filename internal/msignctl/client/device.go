package client

import (
	"context"
	"net/http"
	"net/url"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

// ScreenFilter narrows a screen listing
type ScreenFilter struct {
	OrganizationID string
	Status         string
	DeviceType     string
}

// ListScreens retrieves screens matching the filter
func (c *Client) ListScreens(ctx context.Context, filter ScreenFilter) ([]v1.Screen, error) {
	query := url.Values{}
	if filter.OrganizationID != "" {
		query.Set("organization_id", filter.OrganizationID)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.DeviceType != "" {
		query.Set("device_type", filter.DeviceType)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/devices", query, nil)
	if err != nil {
		return nil, err
	}

	var screens []v1.Screen
	if err := decodeResponse(resp, &screens); err != nil {
		return nil, err
	}
	return screens, nil
}

// GetScreen retrieves one screen by record id or device id
func (c *Client) GetScreen(ctx context.Context, id string) (*v1.Screen, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/devices/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	var screen v1.Screen
	if err := decodeResponse(resp, &screen); err != nil {
		return nil, err
	}
	return &screen, nil
}

// ActivatePairing claims a device's pairing code, registering the screen
func (c *Client) ActivatePairing(ctx context.Context, req v1.PairingActivateRequest) (*v1.Screen, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/devices/pairing/activate", nil, req)
	if err != nil {
		return nil, err
	}

	var screen v1.Screen
	if err := decodeResponse(resp, &screen); err != nil {
		return nil, err
	}
	return &screen, nil
}
