package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/device"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
	"github.com/mesophy/mesophy-signage/internal/msignd/httputil"
)

// exchangePollSeconds is how often an unclaimed device should retry the
// exchange endpoint
const exchangePollSeconds = 5

// RequestPairingCode hands an unpaired device a code to show on screen
func (h *Handler) RequestPairingCode(w http.ResponseWriter, r *http.Request) {
	var req v1.PairingCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "RequestPairingCode", errors.ErrInvalidInput))
		return
	}

	code, err := h.auth.RequestCode(r.Context(), req.DeviceInfo)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	httputil.Respond(w, http.StatusCreated, v1.PairingCodeResponse{
		Code:         code.Code,
		ExpiresIn:    int(time.Until(code.ExpiresAt).Seconds()),
		PollInterval: exchangePollSeconds,
	})
}

// ExchangePairingCode delivers the bearer token once the code is activated.
// Until an operator claims the code this answers not_found, which the device
// treats as "keep polling".
func (h *Handler) ExchangePairingCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"pairing code is required", "ExchangePairingCode", errors.ErrInvalidInput))
		return
	}

	token, screenID, err := h.auth.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	resp := v1.PairingExchangeResponse{
		Token:     token,
		ScreenID:  screenID.String(),
		TokenType: "Bearer",
	}
	if screen, err := h.service.Get(r.Context(), screenID); err == nil {
		resp.DeviceID = screen.DeviceID
	}
	httputil.Respond(w, http.StatusOK, resp)
}

// ActivatePairingCode lets an operator claim a device code, creating the
// screen record and preparing its credential
func (h *Handler) ActivatePairingCode(w http.ResponseWriter, r *http.Request) {
	var req v1.PairingActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid request body", "ActivatePairingCode", errors.ErrInvalidInput))
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			"invalid organization id", "ActivatePairingCode", errors.ErrInvalidInput))
		return
	}

	// The server assigns the stable device identifier at pairing time; the
	// device learns it alongside its token on exchange.
	screen, err := device.NewScreen("scr-"+uuid.New().String(), req.Name, orgID)
	if err != nil {
		httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
			err.Error(), "ActivatePairingCode", errors.ErrInvalidInput))
		return
	}
	screen.DeviceType = req.DeviceType
	if req.LocationID != "" {
		locID, err := uuid.Parse(req.LocationID)
		if err != nil {
			httputil.Error(w, r, h.logger, errors.NewError("INVALID_INPUT",
				"invalid location id", "ActivatePairingCode", errors.ErrInvalidInput))
			return
		}
		screen.LocationID = &locID
	}

	if err := h.service.Register(r.Context(), screen); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	if err := h.auth.ActivateCode(r.Context(), req.Code, screen.ID); err != nil {
		httputil.Error(w, r, h.logger, err)
		return
	}

	httputil.Respond(w, http.StatusOK, toAPIScreen(screen))
}

func toAPIScreen(s *device.Screen) v1.Screen {
	out := v1.Screen{
		ID:             s.ID.String(),
		DeviceID:       s.DeviceID,
		OrganizationID: s.OrganizationID.String(),
		Name:           s.Name,
		DeviceType:     s.DeviceType,
		Status:         string(s.Status),
		LastSeen:       s.LastSeen,
		LastHeartbeat:  s.LastHeartbeat,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.LocationID != nil {
		out.LocationID = s.LocationID.String()
	}
	return out
}
