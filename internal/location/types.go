package location

import "time"

// Site represents a physical property managed by Argus. Deployments
// typically have one site but the model does not enforce that.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Space represents a physical area within a site (lobby, server room,
// loading dock).
type Space struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"siteId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
