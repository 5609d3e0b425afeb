package device

import (
	"time"

	"github.com/argus-security/argus-core/internal/connector"
)

// StandardizedType is the canonical device classification, independent of
// vendor vocabulary.
type StandardizedType string

// Standardized device types.
const (
	TypeSensor      StandardizedType = "Sensor"
	TypeSwitch      StandardizedType = "Switch"
	TypeOutlet      StandardizedType = "Outlet"
	TypeMultiOutlet StandardizedType = "MultiOutlet"
	TypeHub         StandardizedType = "Hub"
	TypeCamera      StandardizedType = "Camera"
	TypeServer      StandardizedType = "Server"
	TypeDoor        StandardizedType = "Door"
	TypeUnmapped    StandardizedType = "Unmapped"
)

// StandardizedSubtype refines a standardized type. Empty means the type
// has no meaningful subtype.
type StandardizedSubtype string

// Standardized device subtypes.
const (
	SubtypeContact     StandardizedSubtype = "Contact"
	SubtypeMotion      StandardizedSubtype = "Motion"
	SubtypeLeak        StandardizedSubtype = "Leak"
	SubtypeVibration   StandardizedSubtype = "Vibration"
	SubtypeTemperature StandardizedSubtype = "Temperature"
	SubtypeNone        StandardizedSubtype = ""
	SubtypeUnknown     StandardizedSubtype = "Unknown"
)

// TypeInfo is the Type Mapper output: a standardized type plus optional
// subtype.
type TypeInfo struct {
	Type    StandardizedType    `json:"type"`
	Subtype StandardizedSubtype `json:"subtype,omitempty"`
}

// Device is the canonical record of one physical or virtual device.
//
// DeviceID is the vendor-assigned identifier, unique per connector;
// (ConnectorID, DeviceID) is the upsert key. ID is owned by this system.
type Device struct {
	ID          string              `json:"id"`
	ConnectorID string              `json:"connector_id"`
	DeviceID    string              `json:"device_id"`
	Name        string              `json:"name"`
	RawType     string              `json:"raw_type"`
	Type        StandardizedType    `json:"standardized_type"`
	Subtype     StandardizedSubtype `json:"standardized_subtype,omitempty"`
	Status      *string             `json:"status,omitempty"`
	Model       *string             `json:"model,omitempty"`
	Vendor      *string             `json:"vendor,omitempty"`
	URL         *string             `json:"url,omitempty"`
	ServerID    *string             `json:"server_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Key returns the composite identity used for in-memory state maps.
func (d *Device) Key() string {
	return d.ConnectorID + ":" + d.DeviceID
}

// PikoServer is a video-management server associated with a Piko cloud
// connector. ServerID is vendor-assigned and globally unique.
type PikoServer struct {
	ServerID    string    `json:"server_id"`
	ConnectorID string    `json:"connector_id"`
	Name        string    `json:"name"`
	Status      *string   `json:"status,omitempty"`
	Version     *string   `json:"version,omitempty"`
	OSPlatform  *string   `json:"os_platform,omitempty"`
	URL         *string   `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CameraAssociation links a generic device to a Piko camera device.
// Rows are not deduplicated at the data layer; counting logic sums both
// directions per device id.
type CameraAssociation struct {
	DeviceID     string    `json:"device_id"`
	PikoCameraID string    `json:"piko_camera_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// EnrichedDevice is a device row joined with connector metadata, Piko
// server details, and its bidirectional camera-association count.
// DisplayState is merged in from the live state store, not persisted.
type EnrichedDevice struct {
	Device
	ConnectorName     string             `json:"connector_name"`
	ConnectorCategory connector.Category `json:"connector_category"`
	Server            *PikoServer        `json:"server,omitempty"`
	AssociationCount  int                `json:"association_count"`
	DisplayState      *string            `json:"display_state,omitempty"`
}
