package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStateTransition records a device display-state change.
//
// This is the primary method for recording state history. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - connectorID: Owning connector identifier
//   - deviceID: Vendor device identifier (e.g., "d88b4c0100099f2b")
//   - deviceType: Standardized type (e.g., "Sensor", "Door")
//   - displayState: The new display state (e.g., "Open", "Alert")
//
// Example:
//
//	client.WriteStateTransition("conn-1", "d88b4c0100099f2b", "Sensor", "Open")
func (c *Client) WriteStateTransition(connectorID, deviceID, deviceType, displayState string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"connector_id": connectorID,
			"device_id":    deviceID,
			"device_type":  deviceType,
		},
		map[string]interface{}{
			"display_state": displayState,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSyncRun records the outcome of a device sync cycle.
//
// Parameters:
//   - syncedCount: Connectors that completed without error
//   - errorCount: Connectors that failed
//   - duration: Wall-clock time of the full run
func (c *Client) WriteSyncRun(syncedCount, errorCount int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sync_runs",
		map[string]string{},
		map[string]interface{}{
			"synced_count": syncedCount,
			"error_count":  errorCount,
			"duration_ms":  duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteZoneEvent records an alarm zone transition (armed, disarmed, triggered).
//
// Parameters:
//   - zoneID: Alarm zone identifier
//   - armedState: The new state ("armed", "disarmed", "triggered")
//   - deviceID: The device that caused the transition, or "" for operator actions
func (c *Client) WriteZoneEvent(zoneID, armedState, deviceID string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"zone_id": zoneID,
	}
	fields := map[string]interface{}{
		"armed_state": armedState,
	}
	if deviceID != "" {
		fields["device_id"] = deviceID
	}

	point := write.NewPoint("zone_events", tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., replayed events).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
