package statestore

import (
	"testing"
	"time"

	"github.com/argus-security/argus-core/internal/connector"
	"github.com/argus-security/argus-core/internal/device"
)

func testStore() *Store {
	s := NewStore(nil)
	s.SetConnectors([]connector.Connector{
		{ID: "conn-yl", Category: connector.CategoryYoLink, Name: "Office Sensors"},
		{ID: "conn-pk", Category: connector.CategoryPiko, Name: "HQ Cameras"},
	})
	return s
}

func displayPtr(d device.DisplayState) *device.DisplayState { return &d }

func strp(s string) *string { return &s }

func syncDevice(connectorID, deviceID, name, rawType string, info device.TypeInfo) device.EnrichedDevice {
	return device.EnrichedDevice{
		Device: device.Device{
			ConnectorID: connectorID,
			DeviceID:    deviceID,
			Name:        name,
			RawType:     rawType,
			Type:        info.Type,
			Subtype:     info.Subtype,
		},
	}
}

func TestProcessEvent_CreatesEntry(t *testing.T) {
	s := testStore()
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   ts,
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayOpen)},
	})

	info, ok := s.Get("conn-yl:ext-1")
	if !ok {
		t.Fatal("Get() returned no entry after ProcessEvent")
	}
	if info.DisplayState == nil || *info.DisplayState != device.DisplayOpen {
		t.Errorf("DisplayState = %v, want Open", info.DisplayState)
	}
	if info.LastStateEvent == nil {
		t.Error("LastStateEvent not set for state_changed event")
	}
	if !info.LastSeen.Equal(ts) {
		t.Errorf("LastSeen = %v, want %v", info.LastSeen, ts)
	}
}

func TestProcessEvent_NoDisplayStatePreservesPrior(t *testing.T) {
	s := testStore()

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayClosed)},
	})

	// A status event with no display state must not reset it.
	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStatusChanged,
		Timestamp:   time.Now(),
	})

	info, _ := s.Get("conn-yl:ext-1")
	if info.DisplayState == nil || *info.DisplayState != device.DisplayClosed {
		t.Errorf("DisplayState = %v, want Closed preserved", info.DisplayState)
	}
}

func TestProcessEvent_LastStateEventOnlyForStateChanged(t *testing.T) {
	s := testStore()

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	first, _ := s.Get("conn-yl:ext-1")
	if first.LastStateEvent == nil {
		t.Fatal("LastStateEvent not set")
	}
	firstTS := first.LastStateEvent.Timestamp

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStatusChanged,
		Timestamp:   time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	})

	info, _ := s.Get("conn-yl:ext-1")
	if !info.LastStateEvent.Timestamp.Equal(firstTS) {
		t.Error("LastStateEvent changed on a status_changed event")
	}
	if info.LastStatusEvent == nil {
		t.Error("LastStatusEvent not set for status_changed event")
	}
}

func TestProcessEvent_RawTypeOverride(t *testing.T) {
	s := testStore()

	// Seed via sync with a generic raw type.
	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Mystery Device", "Hub",
			device.TypeInfo{Type: device.TypeHub}),
	})

	// Live traffic reveals the device actually emits DoorSensor events.
	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeUnknownExternal,
		Timestamp:   time.Now(),
		Payload:     EventPayload{OriginalEventType: "DoorSensor"},
	})

	info, _ := s.Get("conn-yl:ext-1")
	if info.RawType != "DoorSensor" {
		t.Errorf("RawType = %q, want DoorSensor", info.RawType)
	}
	if info.DeviceInfo.Type != device.TypeSensor || info.DeviceInfo.Subtype != device.SubtypeContact {
		t.Errorf("DeviceInfo = %+v, want Sensor/Contact", info.DeviceInfo)
	}
}

func TestProcessEvent_RawTypeCarriedAcrossEvents(t *testing.T) {
	s := testStore()

	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Front Door", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})

	// Events do not repeat the raw type; DeviceInfo is recomputed from the
	// previously known one.
	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayOpen)},
	})

	info, _ := s.Get("conn-yl:ext-1")
	if info.DeviceInfo.Type != device.TypeSensor || info.DeviceInfo.Subtype != device.SubtypeContact {
		t.Errorf("DeviceInfo = %+v, want Sensor/Contact from carried raw type", info.DeviceInfo)
	}
}

func TestSetDeviceStatesFromSync_ReplacesStaticFields(t *testing.T) {
	s := testStore()

	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Old Name", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})

	updated := syncDevice("conn-yl", "ext-1", "New Name", "DoorSensor",
		device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact})
	updated.Device.Vendor = strp("YoLink")
	s.SetDeviceStatesFromSync([]device.EnrichedDevice{updated})

	info, _ := s.Get("conn-yl:ext-1")
	if info.Name != "New Name" {
		t.Errorf("Name = %q, want New Name", info.Name)
	}
	if info.Vendor == nil || *info.Vendor != "YoLink" {
		t.Errorf("Vendor = %v, want YoLink", info.Vendor)
	}
}

func TestSetDeviceStatesFromSync_PreservesLiveState(t *testing.T) {
	s := testStore()

	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Front Door", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})

	// A live event arrives between syncs.
	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayOpen)},
	})

	// The next sync snapshot carries no display state.
	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Front Door", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})

	info, _ := s.Get("conn-yl:ext-1")
	if info.DisplayState == nil || *info.DisplayState != device.DisplayOpen {
		t.Errorf("DisplayState = %v, want Open preserved across sync", info.DisplayState)
	}
	if info.LastStateEvent == nil {
		t.Error("LastStateEvent lost across sync")
	}
}

func TestSetDeviceStatesFromSync_SnapshotStateWins(t *testing.T) {
	s := testStore()

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayOpen)},
	})

	synced := syncDevice("conn-yl", "ext-1", "Front Door", "DoorSensor",
		device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact})
	synced.DisplayState = strp(string(device.DisplayClosed))
	s.SetDeviceStatesFromSync([]device.EnrichedDevice{synced})

	info, _ := s.Get("conn-yl:ext-1")
	if info.DisplayState == nil || *info.DisplayState != device.DisplayClosed {
		t.Errorf("DisplayState = %v, want Closed from snapshot", info.DisplayState)
	}
}

func TestSetDeviceStatesFromSync_FullReplacement(t *testing.T) {
	s := testStore()

	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Door A", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
		syncDevice("conn-yl", "ext-2", "Door B", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	// Next snapshot no longer contains ext-2.
	s.SetDeviceStatesFromSync([]device.EnrichedDevice{
		syncDevice("conn-yl", "ext-1", "Door A", "DoorSensor",
			device.TypeInfo{Type: device.TypeSensor, Subtype: device.SubtypeContact}),
	})

	if s.Len() != 1 {
		t.Errorf("Len() = %d after replacement, want 1", s.Len())
	}
	if _, ok := s.Get("conn-yl:ext-2"); ok {
		t.Error("removed device still present after full-replacement sync")
	}
}

func TestSubscribe(t *testing.T) {
	s := testStore()

	var gotKeys []string
	s.Subscribe(func(key string, info DeviceStateInfo) {
		gotKeys = append(gotKeys, key)
	})

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
	})

	if len(gotKeys) != 1 || gotKeys[0] != "conn-yl:ext-1" {
		t.Errorf("subscriber keys = %v, want [conn-yl:ext-1]", gotKeys)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := testStore()

	s.ProcessEvent(StandardizedEvent{
		ConnectorID: "conn-yl",
		DeviceID:    "ext-1",
		EventType:   EventTypeStateChanged,
		Timestamp:   time.Now(),
		Payload:     EventPayload{DisplayState: displayPtr(device.DisplayOpen)},
	})

	info, _ := s.Get("conn-yl:ext-1")
	*info.DisplayState = device.DisplayOff

	again, _ := s.Get("conn-yl:ext-1")
	if *again.DisplayState != device.DisplayOpen {
		t.Error("mutating a returned copy leaked into the store")
	}
}
