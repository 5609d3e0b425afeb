package mqtt

import "fmt"

// Topic prefixes for the Argus MQTT hierarchy.
//
// Connector event topics use the flat scheme:
// argus/events/{category}/{connector_id}/{device_id}
const (
	// TopicPrefixEvents is the base for connector event topics.
	TopicPrefixEvents = "argus/events"

	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = "argus/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "argus/system"
)

// Topics provides builders for Argus MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.ConnectorDeviceEvent("yolink", "conn-1", "abc123")
//	// Returns: "argus/events/yolink/conn-1/abc123"
type Topics struct{}

// ConnectorDeviceEvent returns the topic a connector relay publishes
// device events on.
//
// Example: argus/events/yolink/conn-1/d88b4c0100099f2b
func (Topics) ConnectorDeviceEvent(category, connectorID, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", TopicPrefixEvents, category, connectorID, deviceID)
}

// CoreDeviceState returns the canonical device state topic.
// This is the authoritative state published by core after normalization.
//
// Example: argus/core/device/conn-1:abc123/state
func (Topics) CoreDeviceState(deviceKey string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, deviceKey)
}

// CoreZoneState returns the topic for alarm zone state changes.
//
// Example: argus/core/zone/zone-entry/state
func (Topics) CoreZoneState(zoneID string) string {
	return fmt.Sprintf("%s/zone/%s/state", TopicPrefixCore, zoneID)
}

// CoreSyncCompleted returns the topic published after a sync run finishes.
//
// Example: argus/core/sync/completed
func (Topics) CoreSyncCompleted() string {
	return fmt.Sprintf("%s/sync/completed", TopicPrefixCore)
}

// SystemStatus returns the system status topic.
//
// Example: argus/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllConnectorEvents returns a pattern matching every connector event.
//
// Pattern: argus/events/#
func (Topics) AllConnectorEvents() string {
	return TopicPrefixEvents + "/#"
}

// ConnectorEvents returns a pattern matching all events from one category.
//
// Pattern: argus/events/yolink/+/+
func (Topics) ConnectorEvents(category string) string {
	return fmt.Sprintf("%s/%s/+/+", TopicPrefixEvents, category)
}

// AllCoreDeviceStates returns a pattern matching all canonical device states.
//
// Pattern: argus/core/device/+/state
func (Topics) AllCoreDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", TopicPrefixCore)
}

// AllTopics returns a pattern matching all Argus topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: argus/#
func (Topics) AllTopics() string {
	return "argus/#"
}
