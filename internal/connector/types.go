package connector

import "time"

// Category identifies the vendor a connector integrates with.
type Category string

// Supported vendor categories.
const (
	CategoryYoLink Category = "yolink"
	CategoryPiko   Category = "piko"
	CategoryGenea  Category = "genea"
)

// ValidCategories lists all recognised connector categories.
var ValidCategories = []Category{
	CategoryYoLink,
	CategoryPiko,
	CategoryGenea,
}

// IsValid reports whether the category is a recognised vendor.
func (c Category) IsValid() bool {
	for _, valid := range ValidCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// Connector is a configured integration instance for one vendor.
//
// RawConfig holds the vendor-specific JSON blob as stored (API keys,
// host/port, cloud system selector). It is parsed and validated lazily
// by the sync orchestrator via ParseConfig; a connector row can exist
// with a config that no longer validates.
type Connector struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Name      string    `json:"name"`
	RawConfig string    `json:"config"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
