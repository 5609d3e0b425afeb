// Package piko is the vendor adapter for Piko video-management systems.
//
// A Piko connector runs in one of two modes: cloud (relayed through
// the vendor's proxy, addressed by system id) or local (direct to an
// on-prem server). Both expose the same REST surface; local servers
// typically present self-signed certificates, so local mode skips TLS
// verification the way the VMS's own tooling does.
package piko

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/argus-security/argus-core/internal/connector"
)

// CloudRelayDomain is the suffix for cloud-relayed system hosts.
const CloudRelayDomain = "relay.vmsproxy.com"

// Adapter errors.
var (
	// ErrAuth is returned when the session login is rejected.
	ErrAuth = errors.New("piko: authentication failed")

	// ErrAPI is returned when the API reports an error status.
	ErrAPI = errors.New("piko: api error")
)

// Server is one VMS server as the Piko API reports it.
type Server struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
	URL    string     `json:"url"`
	OSInfo ServerOS   `json:"osInfo"`
	Info   ServerInfo `json:"parameters"`
}

type ServerOS struct {
	Platform string `json:"platform"`
}

type ServerInfo struct {
	Version string `json:"version"`
}

// Device is one camera (or other endpoint) as the Piko API reports it.
type Device struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DeviceType string `json:"deviceType"`
	Status     string `json:"status"`
	Model      string `json:"model"`
	Vendor     string `json:"vendor"`
	URL        string `json:"url"`
	ServerID   string `json:"serverId"`
}

// loginPayload is the session bearer-token request body.
type loginPayload struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	SetCookie bool   `json:"setCookie"`
}

// loginResponse carries the session token.
type loginResponse struct {
	Token string `json:"token"`
}

// Client talks to one Piko system, cloud or local.
type Client struct {
	http  *resty.Client
	cfg   *connector.PikoConfig
	local bool
}

// NewClient creates a Piko adapter from a validated connector config.
// Cloud configs resolve the base URL from the selected system id; local
// configs use host:port directly and accept self-signed certificates.
func NewClient(cfg *connector.PikoConfig, timeout time.Duration) *Client {
	r := resty.New()
	r.SetTimeout(timeout)
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")

	local := cfg.IsLocal()
	if local {
		r.SetBaseURL(fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port))
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	} else {
		r.SetBaseURL(fmt.Sprintf("https://%s.%s", cfg.SelectedSystem, CloudRelayDomain))
	}

	return &Client{http: r, cfg: cfg, local: local}
}

// IsLocal reports whether the client targets an on-prem server.
// Local systems have no cloud server inventory to sync.
func (c *Client) IsLocal() bool {
	return c.local
}

// Authenticate opens a session and installs the bearer token on all
// subsequent requests.
func (c *Client) Authenticate(ctx context.Context) error {
	var result loginResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(loginPayload{
			Username: c.cfg.Username,
			Password: c.cfg.Password,
		}).
		SetResult(&result).
		Post("/rest/v2/login/sessions")
	if err != nil {
		return fmt.Errorf("requesting session: %w", err)
	}
	if resp.IsError() || result.Token == "" {
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode())
	}

	c.http.SetAuthToken(result.Token)
	return nil
}

// ListServers fetches the server inventory. Only meaningful for cloud
// systems; callers skip it when IsLocal reports true.
func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var result []Server

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/rest/v2/servers")
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode())
	}

	return result, nil
}

// ListDevices fetches the camera/device inventory.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var result []Device

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/rest/v2/devices")
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode())
	}

	return result, nil
}
