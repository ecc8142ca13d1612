package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

// RunSweep triggers one health sweep and returns its summary. A positive
// offlineThresholdMinutes overrides the server's configured silence threshold
// for this run.
func (c *Client) RunSweep(ctx context.Context, triggerAlerts bool, offlineThresholdMinutes int) (*v1.SweepResponse, error) {
	query := url.Values{}
	if !triggerAlerts {
		query.Set("alerts", "false")
	}
	if offlineThresholdMinutes > 0 {
		query.Set("offline_threshold_minutes", strconv.Itoa(offlineThresholdMinutes))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/monitor/sweep", query, nil)
	if err != nil {
		return nil, err
	}

	var out v1.SweepResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAlerts retrieves recent alerts, newest first
func (c *Client) ListAlerts(ctx context.Context, limit int) ([]v1.Alert, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/monitor/alerts", query, nil)
	if err != nil {
		return nil, err
	}

	var alerts []v1.Alert
	if err := decodeResponse(resp, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListPollingPeriods retrieves an organization's polling periods
func (c *Client) ListPollingPeriods(ctx context.Context, organizationID string) ([]v1.PollingPeriod, error) {
	query := url.Values{"organization_id": {organizationID}}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/polling-periods", query, nil)
	if err != nil {
		return nil, err
	}

	var periods []v1.PollingPeriod
	if err := decodeResponse(resp, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

// SavePollingPeriod creates or updates a polling period
func (c *Client) SavePollingPeriod(ctx context.Context, period v1.PollingPeriod) (*v1.PollingPeriod, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/polling-periods", nil, period)
	if err != nil {
		return nil, err
	}

	var out v1.PollingPeriod
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePollingPeriod removes a polling period
func (c *Client) DeletePollingPeriod(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/polling-periods/"+id, nil, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}

// CurrentPollingInterval answers which cadence is in force for an
// organization right now
func (c *Client) CurrentPollingInterval(ctx context.Context, organizationID string) (*v1.PollingIntervalResponse, error) {
	query := url.Values{"organization_id": {organizationID}}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/polling-periods/current", query, nil)
	if err != nil {
		return nil, err
	}

	var out v1.PollingIntervalResponse
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
