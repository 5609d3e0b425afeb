package statestore

import (
	"sync"

	"github.com/argus-security/argus-core/internal/connector"
	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/infrastructure/logging"
)

// Subscriber receives a copy of a device's state after each change.
type Subscriber func(key string, info DeviceStateInfo)

// Store is the shared in-memory device state map.
//
// Writers (the sync orchestrator and the live event processor) mutate
// under the write lock; readers get copies under the read lock.
type Store struct {
	mu          sync.RWMutex
	states      map[string]*DeviceStateInfo
	connectors  map[string]connector.Connector
	subscribers []Subscriber
	logger      *logging.Logger
}

// NewStore creates an empty store.
func NewStore(logger *logging.Logger) *Store {
	return &Store{
		states:     make(map[string]*DeviceStateInfo),
		connectors: make(map[string]connector.Connector),
		logger:     logger,
	}
}

// Subscribe registers a callback invoked after every state mutation.
// Callbacks run synchronously on the mutating goroutine while no lock is
// held; slow subscribers should hand off to their own goroutine.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetConnectors replaces the in-memory connector list used to resolve a
// device's category during event processing.
func (s *Store) SetConnectors(connectors []connector.Connector) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connectors = make(map[string]connector.Connector, len(connectors))
	for _, c := range connectors {
		s.connectors[c.ID] = c
	}
}

// Get returns a copy of one device's state.
func (s *Store) Get(key string) (DeviceStateInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.states[key]
	if !ok {
		return DeviceStateInfo{}, false
	}
	return info.copy(), true
}

// List returns copies of all device states.
func (s *Store) List() []DeviceStateInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DeviceStateInfo, 0, len(s.states))
	for _, info := range s.states {
		out = append(out, info.copy())
	}
	return out
}

// Len returns the number of tracked devices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// ProcessEvent merges one standardized event into the state map.
//
// Merge rules:
//   - the entry is lazily created on first sight of a device key
//   - DeviceInfo is recomputed from the connector's category and the
//     device's previously known raw type (events do not repeat static type
//     information)
//   - DisplayState updates only when the payload carries one; an unrelated
//     event never resets a known state
//   - LastStateEvent updates only for the canonical state-changed kind;
//     LastStatusEvent only for status-changed
//   - an unrecognized external event carrying an originalEventType corrects
//     the device's effective raw type post-hoc
func (s *Store) ProcessEvent(event StandardizedEvent) {
	key := event.Key()

	s.mu.Lock()

	info, ok := s.states[key]
	if !ok {
		info = &DeviceStateInfo{
			ConnectorID: event.ConnectorID,
			DeviceID:    event.DeviceID,
		}
		s.states[key] = info
	}

	if event.EventType == EventTypeUnknownExternal && event.Payload.OriginalEventType != "" {
		info.RawType = event.Payload.OriginalEventType
	}

	category := s.categoryFor(event.ConnectorID)
	info.DeviceInfo = device.MapDeviceType(category, info.RawType)

	info.LastSeen = event.Timestamp

	if event.Payload.DisplayState != nil {
		ds := *event.Payload.DisplayState
		info.DisplayState = &ds
	}

	switch event.EventType {
	case EventTypeStateChanged:
		ev := event
		info.LastStateEvent = &ev
	case EventTypeStatusChanged:
		ev := event
		info.LastStatusEvent = &ev
	}

	snapshot := info.copy()
	subscribers := s.subscribers
	s.mu.Unlock()

	s.notify(key, snapshot, subscribers)
}

// SetDeviceStatesFromSync replaces the state map with a fresh sync
// snapshot.
//
// Static fields (name, vendor, model, url, server, type info) come from
// the snapshot unconditionally. DisplayState and event-history pointers
// fall back to the prior in-memory entry when the snapshot carries no
// fresher value - sync must not clobber state learned from live events.
func (s *Store) SetDeviceStatesFromSync(devices []device.EnrichedDevice) {
	s.mu.Lock()

	next := make(map[string]*DeviceStateInfo, len(devices))
	var changed []string

	for i := range devices {
		d := &devices[i]
		key := d.Device.Key()

		info := &DeviceStateInfo{
			ConnectorID: d.Device.ConnectorID,
			DeviceID:    d.Device.DeviceID,
			RawType:     d.Device.RawType,
			DeviceInfo:  device.TypeInfo{Type: d.Device.Type, Subtype: d.Device.Subtype},
			Name:        d.Device.Name,
			Vendor:      copyStringPtr(d.Device.Vendor),
			Model:       copyStringPtr(d.Device.Model),
			URL:         copyStringPtr(d.Device.URL),
			ServerID:    copyStringPtr(d.Device.ServerID),
		}

		if d.DisplayState != nil {
			ds := device.DisplayState(*d.DisplayState)
			info.DisplayState = &ds
		}

		if prior, ok := s.states[key]; ok {
			if info.DisplayState == nil && prior.DisplayState != nil {
				ds := *prior.DisplayState
				info.DisplayState = &ds
			}
			info.LastStateEvent = prior.LastStateEvent
			info.LastStatusEvent = prior.LastStatusEvent
			info.LastSeen = prior.LastSeen
			if info.RawType == "" {
				info.RawType = prior.RawType
			}
		}

		next[key] = info
		changed = append(changed, key)
	}

	s.states = next

	snapshots := make(map[string]DeviceStateInfo, len(changed))
	for _, key := range changed {
		snapshots[key] = next[key].copy()
	}
	subscribers := s.subscribers
	s.mu.Unlock()

	for _, key := range changed {
		s.notify(key, snapshots[key], subscribers)
	}
}

// categoryFor resolves a connector's category; the caller holds the lock.
func (s *Store) categoryFor(connectorID string) connector.Category {
	c, ok := s.connectors[connectorID]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("event for unknown connector", "connector_id", connectorID)
		}
		return connector.Category("")
	}
	return c.Category
}

func (s *Store) notify(key string, info DeviceStateInfo, subscribers []Subscriber) {
	for _, fn := range subscribers {
		fn(key, info)
	}
}
