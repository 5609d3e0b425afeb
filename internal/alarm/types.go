// Package alarm provides alarm zones: named groups of devices within a
// site that can be armed, disarmed, and triggered.
//
// A zone trips when a live device state resolves to an alert-worthy
// display value while the zone is armed. Trigger evaluation runs off the
// in-memory state store's subscription feed, so both live events and
// sync refreshes are evaluated.
package alarm

import "time"

// ArmedState is the lifecycle state of an alarm zone.
type ArmedState string

// Armed states.
const (
	ArmedStateDisarmed  ArmedState = "disarmed"
	ArmedStateArmed     ArmedState = "armed"
	ArmedStateTriggered ArmedState = "triggered"
)

// ValidArmedState checks whether the given string is a valid armed state.
func ValidArmedState(s string) bool {
	switch ArmedState(s) {
	case ArmedStateDisarmed, ArmedStateArmed, ArmedStateTriggered:
		return true
	}
	return false
}

// Zone represents an alarm zone within a site.
type Zone struct {
	ID          string     `json:"id"`
	SiteID      string     `json:"siteId"`
	Name        string     `json:"name"`
	ArmedState  ArmedState `json:"armedState"`
	LastArmedAt *time.Time `json:"lastArmedAt,omitempty"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
