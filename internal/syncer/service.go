// Package syncer orchestrates full device synchronisation across all
// configured connectors.
//
// A sync run walks every connector, pulls the vendor's device inventory
// through its adapter, resolves standardized type and live state for each
// device, and upserts the result keyed on (connector, vendor device id).
// Failures are isolated at two levels: a connector that cannot be synced
// is reported in the run result without aborting the other connectors,
// and a single device whose state fetch or upsert fails is logged and
// skipped without aborting its connector.
//
// After all connectors complete, the run refreshes the in-memory state
// store from the freshly enriched device rows so live reads reflect the
// new inventory.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/argus-security/argus-core/internal/bridges/genea"
	"github.com/argus-security/argus-core/internal/bridges/piko"
	"github.com/argus-security/argus-core/internal/bridges/yolink"
	"github.com/argus-security/argus-core/internal/connector"
	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/infrastructure/logging"
	"github.com/argus-security/argus-core/internal/statestore"
)

// msgConfigParse is the operator-facing error for an unreadable config
// blob. The raw JSON error is logged, not surfaced.
const msgConfigParse = "Failed to parse connector configuration."

// ConnectorError reports one connector's sync failure within a run.
type ConnectorError struct {
	ConnectorName string `json:"connectorName"`
	Error         string `json:"error"`
}

// Result summarises a completed sync run. A run with Errors is still a
// completed run; SyncedCount covers the connectors that succeeded.
type Result struct {
	SyncedCount int              `json:"syncedCount"`
	Errors      []ConnectorError `json:"errors,omitempty"`
}

// Adapter surfaces the service needs from each vendor bridge. Declared
// here so tests can substitute stubs for live vendor APIs.
type yolinkClient interface {
	Authenticate(ctx context.Context) error
	ListDevices(ctx context.Context) ([]yolink.Device, error)
	GetDeviceState(ctx context.Context, dev yolink.Device) (string, error)
}

type pikoClient interface {
	Authenticate(ctx context.Context) error
	IsLocal() bool
	ListServers(ctx context.Context) ([]piko.Server, error)
	ListDevices(ctx context.Context) ([]piko.Device, error)
}

type geneaClient interface {
	ListDoors(ctx context.Context) ([]genea.Door, error)
}

// metricsWriter records sync run telemetry.
type metricsWriter interface {
	WriteSyncRun(syncedCount, errorCount int, duration time.Duration)
}

// Service runs device synchronisation.
type Service struct {
	connectors connector.Repository
	devices    device.Repository
	servers    device.ServerRepository
	store      *statestore.Store
	metrics    metricsWriter
	logger     *logging.Logger

	newYoLink func(cfg *connector.YoLinkConfig) yolinkClient
	newPiko   func(cfg *connector.PikoConfig) pikoClient
	newGenea  func(cfg *connector.GeneaConfig) geneaClient
}

// NewService creates a sync service wired to the real vendor bridges.
// httpTimeout bounds each vendor API request. metrics may be nil when
// telemetry is disabled.
func NewService(
	connectors connector.Repository,
	devices device.Repository,
	servers device.ServerRepository,
	store *statestore.Store,
	metrics metricsWriter,
	logger *logging.Logger,
	httpTimeout time.Duration,
) *Service {
	return &Service{
		connectors: connectors,
		devices:    devices,
		servers:    servers,
		store:      store,
		metrics:    metrics,
		logger:     logger,
		newYoLink: func(cfg *connector.YoLinkConfig) yolinkClient {
			return yolink.NewClient(cfg, httpTimeout)
		},
		newPiko: func(cfg *connector.PikoConfig) pikoClient {
			return piko.NewClient(cfg, httpTimeout)
		},
		newGenea: func(cfg *connector.GeneaConfig) geneaClient {
			return genea.NewClient(cfg, httpTimeout)
		},
	}
}

// SyncAll synchronises every configured connector and refreshes the
// in-memory device state from the resulting rows.
//
// Connector failures are collected into the Result rather than returned;
// the error return covers only run-level failures (listing connectors,
// reloading the enriched inventory).
func (s *Service) SyncAll(ctx context.Context) (*Result, error) {
	start := time.Now()

	connectors, err := s.connectors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing connectors: %w", err)
	}

	result := &Result{}
	for i := range connectors {
		conn := &connectors[i]

		synced, err := s.syncConnector(ctx, conn)
		result.SyncedCount += synced
		if err != nil {
			s.logger.Error("connector sync failed",
				"connector", conn.Name,
				"category", conn.Category,
				"error", err)
			result.Errors = append(result.Errors, ConnectorError{
				ConnectorName: conn.Name,
				Error:         err.Error(),
			})
			continue
		}

		s.logger.Info("connector synced",
			"connector", conn.Name,
			"category", conn.Category,
			"devices", synced)
	}

	enriched, err := s.devices.ListEnriched(ctx)
	if err != nil {
		return nil, fmt.Errorf("reloading device inventory: %w", err)
	}
	// A status column holding a canonical display value ("On", "Open")
	// seeds the live store; health strings ("Online") do not.
	for i := range enriched {
		if enriched[i].Status == nil {
			continue
		}
		if display, ok := device.ParseDisplayState(*enriched[i].Status); ok {
			v := string(display)
			enriched[i].DisplayState = &v
		}
	}
	s.store.SetConnectors(connectors)
	s.store.SetDeviceStatesFromSync(enriched)

	if s.metrics != nil {
		s.metrics.WriteSyncRun(result.SyncedCount, len(result.Errors), time.Since(start))
	}

	return result, nil
}

// syncConnector parses and validates the connector's config, then
// dispatches to the category-specific sync.
func (s *Service) syncConnector(ctx context.Context, conn *connector.Connector) (int, error) {
	cfg, err := connector.ParseConfig(conn.Category, conn.RawConfig)
	if err != nil {
		s.logger.Error("connector config unreadable",
			"connector", conn.Name,
			"error", err)
		return 0, errors.New(msgConfigParse)
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	switch typed := cfg.(type) {
	case *connector.YoLinkConfig:
		return s.syncYoLink(ctx, conn, typed)
	case *connector.PikoConfig:
		return s.syncPiko(ctx, conn, typed)
	case *connector.GeneaConfig:
		return s.syncGenea(ctx, conn, typed)
	}
	return 0, fmt.Errorf("%w: %q", connector.ErrInvalidCategory, conn.Category)
}

func (s *Service) syncYoLink(ctx context.Context, conn *connector.Connector, cfg *connector.YoLinkConfig) (int, error) {
	client := s.newYoLink(cfg)

	if err := client.Authenticate(ctx); err != nil {
		return 0, err
	}
	list, err := client.ListDevices(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, d := range list {
		info := device.MapDeviceType(connector.CategoryYoLink, d.Type)

		// Stateful classes get a live state fetch; a failure leaves
		// status unset for this run without dropping the device.
		var status *string
		if yolink.IsStateful(d.Type) {
			raw, err := client.GetDeviceState(ctx, d)
			if err != nil {
				s.logger.Warn("device state fetch failed",
					"connector", conn.Name,
					"device", d.DeviceID,
					"error", err)
			} else if display, ok := device.CanonicalizeState(raw); ok {
				v := string(display)
				status = &v
			} else {
				s.logger.Warn("unmapped raw state token",
					"connector", conn.Name,
					"device", d.DeviceID,
					"state", raw)
			}
		}

		dev := &device.Device{
			ID:          uuid.New().String(),
			ConnectorID: conn.ID,
			DeviceID:    d.DeviceID,
			Name:        d.Name,
			RawType:     d.Type,
			Type:        info.Type,
			Subtype:     info.Subtype,
			Status:      status,
			Model:       optStr(d.ModelName),
			Vendor:      optStr("YoLink"),
		}
		if err := s.devices.Upsert(ctx, dev); err != nil {
			s.logger.Error("device upsert failed",
				"connector", conn.Name,
				"device", d.DeviceID,
				"error", err)
			continue
		}
		synced++
	}

	return synced, nil
}

func (s *Service) syncPiko(ctx context.Context, conn *connector.Connector, cfg *connector.PikoConfig) (int, error) {
	client := s.newPiko(cfg)

	if err := client.Authenticate(ctx); err != nil {
		return 0, err
	}

	// Local systems expose no cloud server inventory.
	if !client.IsLocal() {
		servers, err := client.ListServers(ctx)
		if err != nil {
			return 0, err
		}
		for _, srv := range servers {
			ps := &device.PikoServer{
				ServerID:    srv.ID,
				ConnectorID: conn.ID,
				Name:        srv.Name,
				Status:      optStr(srv.Status),
				Version:     optStr(srv.Info.Version),
				OSPlatform:  optStr(srv.OSInfo.Platform),
				URL:         optStr(srv.URL),
			}
			if err := s.servers.Upsert(ctx, ps); err != nil {
				s.logger.Error("server upsert failed",
					"connector", conn.Name,
					"server", srv.ID,
					"error", err)
			}
		}
	}

	list, err := client.ListDevices(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, d := range list {
		info := device.MapDeviceType(connector.CategoryPiko, d.DeviceType)

		var serverID *string
		if !client.IsLocal() {
			serverID = optStr(d.ServerID)
		}

		dev := &device.Device{
			ID:          uuid.New().String(),
			ConnectorID: conn.ID,
			DeviceID:    d.ID,
			Name:        d.Name,
			RawType:     d.DeviceType,
			Type:        info.Type,
			Subtype:     info.Subtype,
			Status:      optStr(d.Status),
			Model:       optStr(d.Model),
			Vendor:      optStr(d.Vendor),
			URL:         optStr(d.URL),
			ServerID:    serverID,
		}
		if err := s.devices.Upsert(ctx, dev); err != nil {
			s.logger.Error("device upsert failed",
				"connector", conn.Name,
				"device", d.ID,
				"error", err)
			continue
		}
		synced++
	}

	return synced, nil
}

func (s *Service) syncGenea(ctx context.Context, conn *connector.Connector, cfg *connector.GeneaConfig) (int, error) {
	client := s.newGenea(cfg)

	doors, err := client.ListDoors(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, door := range doors {
		info := device.MapDeviceType(connector.CategoryGenea, "door")

		// is_online is tri-state: present -> Online/Offline, absent ->
		// no status at all.
		var status *string
		if door.IsOnline != nil {
			v := "Offline"
			if *door.IsOnline {
				v = "Online"
			}
			status = &v
		}

		dev := &device.Device{
			ID:          uuid.New().String(),
			ConnectorID: conn.ID,
			DeviceID:    door.UUID,
			Name:        door.Name,
			RawType:     "door",
			Type:        info.Type,
			Subtype:     info.Subtype,
			Status:      status,
			Model:       optStr(door.Model),
			Vendor:      optStr("Genea"),
		}
		if err := s.devices.Upsert(ctx, dev); err != nil {
			s.logger.Error("device upsert failed",
				"connector", conn.Name,
				"device", door.UUID,
				"error", err)
			continue
		}
		synced++
	}

	return synced, nil
}

// optStr returns a pointer to s, or nil for the empty string.
func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
