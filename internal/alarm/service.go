package alarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/infrastructure/logging"
	"github.com/argus-security/argus-core/internal/infrastructure/mqtt"
	"github.com/argus-security/argus-core/internal/statestore"
)

// evalTimeout bounds the database work done per state-store callback.
const evalTimeout = 5 * time.Second

// zoneEventWriter records zone transitions for dashboards.
type zoneEventWriter interface {
	WriteZoneEvent(zoneID, armedState, deviceID string)
}

// publisher pushes zone state onto the event bus.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Service provides arm/disarm operations and trigger evaluation.
//
// Trigger evaluation runs as a state-store subscriber: every live device
// state that resolves to an alert-worthy display value trips the armed
// zones containing that device. metrics and pub may be nil when the
// corresponding infrastructure is disabled.
type Service struct {
	zones   Repository
	devices device.Repository
	metrics zoneEventWriter
	pub     publisher
	logger  *logging.Logger
}

// NewService creates an alarm service.
func NewService(zones Repository, devices device.Repository, metrics zoneEventWriter, pub publisher, logger *logging.Logger) *Service {
	return &Service{
		zones:   zones,
		devices: devices,
		metrics: metrics,
		pub:     pub,
		logger:  logger,
	}
}

// Arm arms a zone. Arming a triggered zone re-arms it and clears the
// trigger timestamp; arming an armed zone is a no-op.
func (s *Service) Arm(ctx context.Context, zoneID string) (*Zone, error) {
	return s.transition(ctx, zoneID, ArmedStateArmed)
}

// Disarm disarms a zone from any state.
func (s *Service) Disarm(ctx context.Context, zoneID string) (*Zone, error) {
	return s.transition(ctx, zoneID, ArmedStateDisarmed)
}

func (s *Service) transition(ctx context.Context, zoneID string, state ArmedState) (*Zone, error) {
	zone, err := s.zones.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone.ArmedState == state {
		return zone, nil
	}

	if err := s.zones.SetArmedState(ctx, zoneID, state); err != nil {
		return nil, err
	}
	zone, err = s.zones.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("alarm zone state changed",
		"zone", zone.ID,
		"state", zone.ArmedState)
	if s.metrics != nil {
		s.metrics.WriteZoneEvent(zone.ID, string(zone.ArmedState), "")
	}
	s.publishState(zone)

	return zone, nil
}

// HandleDeviceState is a statestore.Subscriber. It trips armed zones
// when a member device reports an alert-worthy display state.
func (s *Service) HandleDeviceState(key string, info statestore.DeviceStateInfo) {
	if info.DisplayState == nil {
		return
	}
	if !alertWorthy(*info.DisplayState) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	dev, err := s.devices.GetByKey(ctx, info.ConnectorID, info.DeviceID)
	if err != nil {
		// Live events can arrive for devices not yet synced.
		return
	}

	zones, err := s.zones.ListArmedZonesForDevice(ctx, dev.ID)
	if err != nil {
		s.logger.Error("trigger evaluation failed",
			"device", key,
			"error", err)
		return
	}

	for i := range zones {
		zone := &zones[i]
		if err := s.zones.SetArmedState(ctx, zone.ID, ArmedStateTriggered); err != nil {
			s.logger.Error("zone trigger failed",
				"zone", zone.ID,
				"error", err)
			continue
		}

		s.logger.Warn("alarm zone triggered",
			"zone", zone.ID,
			"device", key,
			"state", *info.DisplayState)
		if s.metrics != nil {
			s.metrics.WriteZoneEvent(zone.ID, string(ArmedStateTriggered), dev.ID)
		}

		triggered, err := s.zones.GetZone(ctx, zone.ID)
		if err == nil {
			s.publishState(triggered)
		}
	}
}

// alertWorthy reports whether a display state should trip an armed zone.
// Open covers forced doors and contact sensors; Alert covers motion,
// leak, and vibration alarms.
func alertWorthy(state device.DisplayState) bool {
	return state == device.DisplayAlert || state == device.DisplayOpen
}

// publishState pushes the zone's current state to the event bus as a
// retained message so late subscribers see it.
func (s *Service) publishState(zone *Zone) {
	if s.pub == nil {
		return
	}

	payload, err := json.Marshal(zone)
	if err != nil {
		s.logger.Error("marshaling zone state", "zone", zone.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.CoreZoneState(zone.ID)
	if err := s.pub.Publish(topic, payload, 1, true); err != nil {
		s.logger.Error("publishing zone state",
			"zone", zone.ID,
			"error", fmt.Errorf("publish %s: %w", topic, err))
	}
}
