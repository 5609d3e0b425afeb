// Package ingest connects the MQTT event bus to the in-memory state store.
//
// Connector relays publish standardized events on argus/events/#. This
// package consumes them, feeds them through the state store's processing
// rules, and republishes the resulting canonical state on
// argus/core/device/{key}/state as a retained message so late subscribers
// (dashboards, automations) always see the current state. Every display
// state transition is also recorded to the time-series database.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/argus-security/argus-core/internal/infrastructure/logging"
	"github.com/argus-security/argus-core/internal/infrastructure/mqtt"
	"github.com/argus-security/argus-core/internal/statestore"
)

// broker is the slice of the MQTT client the ingest loop needs.
type broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// transitionWriter records display state transitions to the TSDB.
type transitionWriter interface {
	WriteStateTransition(connectorID, deviceID, deviceType, displayState string)
}

// Service wires the event bus into the state store.
type Service struct {
	broker  broker
	store   *statestore.Store
	metrics transitionWriter
	logger  *logging.Logger
}

// NewService creates the ingest service. metrics may be nil when the
// time-series database is not configured.
func NewService(b broker, store *statestore.Store, metrics transitionWriter, logger *logging.Logger) *Service {
	return &Service{
		broker:  b,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Start subscribes to all connector events and registers the store
// subscriber that republishes canonical state.
//
// The subscriber is registered before the MQTT subscription so no event
// processed by the store can miss its canonical republication.
func (s *Service) Start() error {
	s.store.Subscribe(s.handleStateChange)

	topic := mqtt.Topics{}.AllConnectorEvents()
	if err := s.broker.Subscribe(topic, 1, s.handleEvent); err != nil {
		return fmt.Errorf("subscribing to connector events: %w", err)
	}

	s.logger.Info("event ingestion started", "topic", topic)
	return nil
}

// handleEvent parses one standardized event off the bus and feeds it to
// the state store. Malformed payloads are logged and dropped; a bad
// event from one connector must not break the subscription.
func (s *Service) handleEvent(topic string, payload []byte) error {
	var event statestore.StandardizedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn("dropping malformed event",
			"topic", topic,
			"error", err)
		return nil
	}

	if event.ConnectorID == "" || event.DeviceID == "" {
		s.logger.Warn("dropping event without device identity", "topic", topic)
		return nil
	}

	s.store.ProcessEvent(event)
	return nil
}

// handleStateChange republishes a device's canonical state as a retained
// message and records the transition to the TSDB.
func (s *Service) handleStateChange(key string, info statestore.DeviceStateInfo) {
	payload, err := json.Marshal(info)
	if err != nil {
		s.logger.Error("marshaling device state", "key", key, "error", err)
		return
	}

	topic := mqtt.Topics{}.CoreDeviceState(key)
	if err := s.broker.Publish(topic, payload, 1, true); err != nil {
		s.logger.Error("publishing device state", "topic", topic, "error", err)
	}

	if s.metrics != nil && info.DisplayState != nil {
		s.metrics.WriteStateTransition(
			info.ConnectorID,
			info.DeviceID,
			string(info.DeviceInfo.Type),
			string(*info.DisplayState),
		)
	}
}
