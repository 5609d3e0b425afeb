// Package yolink is the vendor adapter for the YoLink sensor cloud.
//
// It wraps YoLink's UAC token flow and BUDP-style API: every call posts a
// method envelope to a single endpoint. The adapter returns vendor-shaped
// structs at its boundary; type and state normalization happen downstream.
package yolink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/argus-security/argus-core/internal/connector"
)

// DefaultBaseURL is the YoLink cloud API endpoint.
const DefaultBaseURL = "https://api.yosmart.com"

// Adapter errors.
var (
	// ErrAuth is returned when the token request is rejected.
	ErrAuth = errors.New("yolink: authentication failed")

	// ErrAPI is returned when the API reports a non-success code.
	ErrAPI = errors.New("yolink: api error")
)

// Device is one device as the YoLink API reports it.
type Device struct {
	DeviceID   string `json:"deviceId"`
	DeviceUDID string `json:"deviceUDID"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Token      string `json:"token"`
	ModelName  string `json:"modelName"`
}

// tokenResponse is the UAC token grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// apiEnvelope is the common BUDP response wrapper.
type apiEnvelope struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

// deviceListResponse wraps Home.getDeviceList.
type deviceListResponse struct {
	apiEnvelope
	Data struct {
		Devices []Device `json:"devices"`
	} `json:"data"`
}

// deviceStateResponse wraps {Type}.getState. State shapes vary per device
// class; the fields here cover the stateful classes the sync cares about.
type deviceStateResponse struct {
	apiEnvelope
	Data struct {
		State stateField `json:"state"`
	} `json:"data"`
}

// stateField tolerates both a bare token ("open") and an object with a
// nested power/state field, which is how switches and outlets report.
type stateField struct {
	raw string
}

func (s *stateField) UnmarshalJSON(data []byte) error {
	// Bare string token.
	if len(data) > 0 && data[0] == '"' {
		s.raw = string(data[1 : len(data)-1])
		return nil
	}
	// Object form: {"state":"on", ...} or {"power":"on", ...}.
	var obj struct {
		State string `json:"state"`
		Power string `json:"power"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.State != "" {
		s.raw = obj.State
	} else {
		s.raw = obj.Power
	}
	return nil
}

// Client talks to the YoLink cloud for one connector.
type Client struct {
	http  *resty.Client
	cfg   *connector.YoLinkConfig
	token string
}

// NewClient creates a YoLink adapter from a validated connector config.
func NewClient(cfg *connector.YoLinkConfig, timeout time.Duration) *Client {
	r := resty.New()
	r.SetBaseURL(DefaultBaseURL)
	r.SetTimeout(timeout)
	r.SetHeader("Content-Type", "application/json")

	return &Client{http: r, cfg: cfg}
}

// Authenticate obtains a UAC access token using the client-credentials
// grant. Must be called before ListDevices or GetDeviceState.
func (c *Client) Authenticate(ctx context.Context) error {
	var result tokenResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.cfg.UAID,
			"client_secret": c.cfg.ClientSecret,
		}).
		SetResult(&result).
		Post("/open/yolink/token")
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode())
	}

	c.token = result.AccessToken
	return nil
}

// ListDevices fetches the full device inventory for the account.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var result deviceListResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(map[string]string{"method": "Home.getDeviceList"}).
		SetResult(&result).
		Post("/open/yolink/v2/api")
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode())
	}
	if result.Code != "000000" {
		return nil, fmt.Errorf("%w: code %s (%s)", ErrAPI, result.Code, result.Desc)
	}

	return result.Data.Devices, nil
}

// GetDeviceState fetches the live raw state token for one device.
// The returned token is vendor vocabulary ("open", "on", ...); callers
// run it through the state canonicalizer.
func (c *Client) GetDeviceState(ctx context.Context, dev Device) (string, error) {
	var result deviceStateResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(map[string]string{
			"method":       dev.Type + ".getState",
			"targetDevice": dev.DeviceID,
			"token":        dev.Token,
		}).
		SetResult(&result).
		Post("/open/yolink/v2/api")
	if err != nil {
		return "", fmt.Errorf("fetching device state: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode())
	}
	if result.Code != "000000" {
		return "", fmt.Errorf("%w: code %s (%s)", ErrAPI, result.Code, result.Desc)
	}

	return result.Data.State.raw, nil
}

// IsStateful reports whether a raw device type carries live state worth
// fetching during sync (switches, outlets, multi-outlets).
func IsStateful(rawType string) bool {
	switch rawType {
	case "Switch", "Outlet", "MultiOutlet":
		return true
	}
	return false
}
