package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
)

// CreateSchedule validates and persists a new schedule
func (c *Client) CreateSchedule(ctx context.Context, req v1.Schedule) (*v1.Schedule, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/schedules", nil, req)
	if err != nil {
		return nil, err
	}

	var out v1.Schedule
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSchedules retrieves an organization's schedules
func (c *Client) ListSchedules(ctx context.Context, organizationID string) ([]v1.Schedule, error) {
	query := url.Values{"organization_id": {organizationID}}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/schedules", query, nil)
	if err != nil {
		return nil, err
	}

	var schedules []v1.Schedule
	if err := decodeResponse(resp, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ResolveSchedule answers what a screen should be showing at an instant.
// A zero at means now.
func (c *Client) ResolveSchedule(ctx context.Context, deviceID string, at time.Time) (*v1.ScheduleResolution, error) {
	query := url.Values{"device_id": {deviceID}}
	if !at.IsZero() {
		query.Set("at", at.Format(time.RFC3339))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/schedules/resolve", query, nil)
	if err != nil {
		return nil, err
	}

	var out v1.ScheduleResolution
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckScheduleConflicts runs the advisory conflict check on a candidate
func (c *Client) CheckScheduleConflicts(ctx context.Context, candidate v1.Schedule) (*v1.ScheduleConflictReport, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/schedules/conflicts", nil, candidate)
	if err != nil {
		return nil, err
	}

	var out v1.ScheduleConflictReport
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateSchedule retires a schedule
func (c *Client) DeactivateSchedule(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/schedules/"+id, nil, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, nil)
}
