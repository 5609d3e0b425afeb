// Package genea is the vendor adapter for the Genea access-control cloud.
//
// Genea exposes door hardware through a customer-scoped REST API. Doors
// carry an optional is_online flag rather than a status string; the sync
// layer derives a synthetic status from it.
package genea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/argus-security/argus-core/internal/connector"
)

// DefaultBaseURL is the Genea cloud API endpoint.
const DefaultBaseURL = "https://api.sequr.io"

// ErrAPI is returned when the API reports an error status.
var ErrAPI = errors.New("genea: api error")

// Door is one access-controlled door as the Genea API reports it.
// IsOnline is a pointer because the API omits the field for doors whose
// controller has never reported in.
type Door struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Model    string `json:"model"`
	IsOnline *bool  `json:"is_online"`
}

// doorsResponse wraps the paged door list.
type doorsResponse struct {
	Data []Door `json:"data"`
	Meta struct {
		Total int `json:"total"`
		Page  int `json:"current_page"`
		Last  int `json:"last_page"`
	} `json:"meta"`
}

// Client talks to the Genea cloud for one connector.
type Client struct {
	http *resty.Client
	cfg  *connector.GeneaConfig
}

// NewClient creates a Genea adapter from a validated connector config.
func NewClient(cfg *connector.GeneaConfig, timeout time.Duration) *Client {
	r := resty.New()
	r.SetBaseURL(DefaultBaseURL)
	r.SetTimeout(timeout)
	r.SetHeader("Accept", "application/json")
	r.SetAuthToken(cfg.APIKey)

	return &Client{http: r, cfg: cfg}
}

// ListDoors fetches every door for the customer, following pagination
// until the API reports the last page.
func (c *Client) ListDoors(ctx context.Context) ([]Door, error) {
	var doors []Door

	page := 1
	for {
		var result doorsResponse

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"page":  fmt.Sprintf("%d", page),
				"limit": "100",
			}).
			SetResult(&result).
			Get(fmt.Sprintf("/v2/customer/%s/door", c.cfg.CustomerUUID))
		if err != nil {
			return nil, fmt.Errorf("listing doors: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode())
		}

		doors = append(doors, result.Data...)

		if result.Meta.Last == 0 || page >= result.Meta.Last {
			break
		}
		page++
	}

	return doors, nil
}
