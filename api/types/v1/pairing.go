// Package v1 contains the wire types for the Mesophy signage API.
package v1

// PairingCodeRequest asks the server for a new pairing code
type PairingCodeRequest struct {
	// DeviceInfo carries free-form facts about the device (model, hostname)
	DeviceInfo map[string]interface{} `json:"device_info,omitempty"`
}

// PairingCodeResponse is the server's answer to a pairing code request
type PairingCodeResponse struct {
	// Code is shown on the device so an operator can claim it
	Code string `json:"code"`
	// ExpiresIn is seconds until the code dies
	ExpiresIn int `json:"expires_in"`
	// PollInterval is how often the device should try to exchange the code
	PollInterval int `json:"poll_interval"`
}

// PairingActivateRequest claims a pairing code for a new screen
type PairingActivateRequest struct {
	Code           string `json:"code"`
	OrganizationID string `json:"organization_id"`
	LocationID     string `json:"location_id,omitempty"`
	Name           string `json:"name"`
	DeviceType     string `json:"device_type,omitempty"`
}

// PairingExchangeResponse delivers the device credential exactly once
type PairingExchangeResponse struct {
	Token     string `json:"token"`
	ScreenID  string `json:"screen_id"`
	DeviceID  string `json:"device_id,omitempty"`
	TokenType string `json:"token_type"`
}
