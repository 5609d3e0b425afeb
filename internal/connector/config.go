package connector

import (
	"encoding/json"
	"fmt"
)

// Piko connection types.
const (
	PikoConnectionCloud = "cloud"
	PikoConnectionLocal = "local"
)

// Config is a parsed, category-specific connector configuration.
//
// Each vendor blob deserialises into its own struct; Validate reports the
// category-specific required fields that are missing.
type Config interface {
	// Validate checks that all required fields for the category are present.
	// Returns an error wrapping ErrConfigIncomplete on any missing field.
	Validate() error
}

// YoLinkConfig holds YoLink UAC credentials.
type YoLinkConfig struct {
	UAID         string `json:"uaid"`
	ClientSecret string `json:"clientSecret"`
}

// Validate checks for the required YoLink credential fields.
func (c *YoLinkConfig) Validate() error {
	if c.UAID == "" {
		return fmt.Errorf("%w: missing uaid", ErrConfigIncomplete)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: missing clientSecret", ErrConfigIncomplete)
	}
	return nil
}

// PikoConfig holds Piko VMS credentials for either a cloud or local
// deployment. Type selects the connection mode: cloud connectors need a
// SelectedSystem, local connectors need Host and Port.
type PikoConfig struct {
	Type           string `json:"type"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	SelectedSystem string `json:"selectedSystem,omitempty"`
	Host           string `json:"host,omitempty"`
	Port           int    `json:"port,omitempty"`
}

// IsLocal reports whether the connector targets a local Piko deployment.
func (c *PikoConfig) IsLocal() bool {
	return c.Type == PikoConnectionLocal
}

// Validate checks for the required Piko credential fields. Cloud and
// local modes have different required endpoint fields.
func (c *PikoConfig) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: missing username", ErrConfigIncomplete)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: missing password", ErrConfigIncomplete)
	}
	switch c.Type {
	case PikoConnectionLocal:
		if c.Host == "" {
			return fmt.Errorf("%w: missing host", ErrConfigIncomplete)
		}
		if c.Port == 0 {
			return fmt.Errorf("%w: missing port", ErrConfigIncomplete)
		}
	default:
		// Cloud is the default when type is absent.
		if c.SelectedSystem == "" {
			return fmt.Errorf("%w: missing selectedSystem", ErrConfigIncomplete)
		}
	}
	return nil
}

// GeneaConfig holds Genea access-control API credentials.
type GeneaConfig struct {
	APIKey       string `json:"apiKey"`
	CustomerUUID string `json:"customerUuid"`
}

// Validate checks for the required Genea credential fields.
func (c *GeneaConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: missing apiKey", ErrConfigIncomplete)
	}
	if c.CustomerUUID == "" {
		return fmt.Errorf("%w: missing customerUuid", ErrConfigIncomplete)
	}
	return nil
}

// ParseConfig deserialises a stored config blob into its category-specific
// struct. Returns an error wrapping ErrConfigParse when the blob is not
// valid JSON, or ErrInvalidCategory for an unrecognised category.
//
// The returned config has NOT been validated; callers decide whether to
// require completeness via Validate.
func ParseConfig(category Category, raw string) (Config, error) {
	var cfg Config
	switch category {
	case CategoryYoLink:
		cfg = &YoLinkConfig{}
	case CategoryPiko:
		cfg = &PikoConfig{}
	case CategoryGenea:
		cfg = &GeneaConfig{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}
