package statestore

import (
	"time"

	"github.com/argus-security/argus-core/internal/device"
)

// EventType classifies a standardized event.
type EventType string

// Standardized event types.
const (
	// EventTypeStateChanged is the canonical state-change kind; only these
	// events update LastStateEvent.
	EventTypeStateChanged EventType = "state_changed"

	// EventTypeStatusChanged reports connectivity/health changes.
	EventTypeStatusChanged EventType = "status_changed"

	// EventTypeUnknownExternal wraps a vendor event the ingestion path did
	// not recognize. Its payload may carry the original vendor event type,
	// which corrects the device's effective raw type post-hoc.
	EventTypeUnknownExternal EventType = "unknown_external"
)

// EventPayload carries the normalized fields of a standardized event.
// All fields are optional; absent fields must not reset prior state.
type EventPayload struct {
	// DisplayState is the canonical display state, when the event carries one.
	DisplayState *device.DisplayState `json:"displayState,omitempty"`

	// RawState is the vendor raw state token, when known.
	RawState string `json:"rawState,omitempty"`

	// OriginalEventType is the vendor's own event type string, set on
	// unrecognized external events.
	OriginalEventType string `json:"originalEventType,omitempty"`
}

// StandardizedEvent is one normalized vendor event, already mapped by the
// upstream ingestion path.
type StandardizedEvent struct {
	ConnectorID string       `json:"connector_id"`
	DeviceID    string       `json:"device_id"`
	EventType   EventType    `json:"event_type"`
	Timestamp   time.Time    `json:"timestamp"`
	Payload     EventPayload `json:"payload"`
}

// Key returns the composite map key for the event's device.
func (e *StandardizedEvent) Key() string {
	return e.ConnectorID + ":" + e.DeviceID
}

// DeviceStateInfo is the canonical runtime projection of one device:
// standardized type info, live display state, recent event pointers, and
// denormalized static fields for fast rendering. Exactly one entry exists
// per (connectorID, deviceID) pair.
type DeviceStateInfo struct {
	ConnectorID  string               `json:"connector_id"`
	DeviceID     string               `json:"device_id"`
	RawType      string               `json:"raw_type"`
	DeviceInfo   device.TypeInfo      `json:"device_info"`
	DisplayState *device.DisplayState `json:"display_state,omitempty"`

	LastStateEvent  *StandardizedEvent `json:"last_state_event,omitempty"`
	LastStatusEvent *StandardizedEvent `json:"last_status_event,omitempty"`
	LastSeen        time.Time          `json:"last_seen"`

	Name     string  `json:"name,omitempty"`
	Vendor   *string `json:"vendor,omitempty"`
	Model    *string `json:"model,omitempty"`
	URL      *string `json:"url,omitempty"`
	ServerID *string `json:"server_id,omitempty"`
}

// copy returns a deep copy so callers can never mutate store internals.
func (s *DeviceStateInfo) copy() DeviceStateInfo {
	out := *s
	if s.DisplayState != nil {
		ds := *s.DisplayState
		out.DisplayState = &ds
	}
	if s.LastStateEvent != nil {
		ev := *s.LastStateEvent
		out.LastStateEvent = &ev
	}
	if s.LastStatusEvent != nil {
		ev := *s.LastStatusEvent
		out.LastStatusEvent = &ev
	}
	out.Vendor = copyStringPtr(s.Vendor)
	out.Model = copyStringPtr(s.Model)
	out.URL = copyStringPtr(s.URL)
	out.ServerID = copyStringPtr(s.ServerID)
	return out
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
