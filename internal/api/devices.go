package api

import (
	"errors"
	"net/http"

	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/syncer"
)

// syncResponse is the POST /api/devices body: the standard envelope plus
// the sync run summary. Partial failure is still a 200.
type syncResponse struct {
	Success     bool                    `json:"success"`
	Data        []device.EnrichedDevice `json:"data"`
	SyncedCount int                     `json:"syncedCount"`
	Errors      []syncer.ConnectorError `json:"errors,omitempty"`
}

// handleDevices dispatches GET /api/devices between single-device and
// full-list reads based on the deviceId query parameter.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("deviceId"); id != "" {
		s.handleGetDevice(w, r, id)
		return
	}
	s.handleListDevices(w, r)
}

// handleGetDevice returns one enriched device with its live display state.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request, id string) {
	enriched, err := s.devices.GetEnriched(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("loading device", "device", id, "error", err)
		writeInternalError(w, "failed to load device")
		return
	}

	s.mergeDisplayState(enriched)
	writeSuccess(w, enriched)
}

// handleListDevices returns the full enriched device list with live
// display states merged in.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	enriched, err := s.devices.ListEnriched(r.Context())
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	for i := range enriched {
		s.mergeDisplayState(&enriched[i])
	}
	writeSuccess(w, enriched)
}

// handleSyncDevices runs a full sync and returns the refreshed inventory.
// Per-connector failures are reported in the errors field; the response
// is still 200. Only a run-level failure produces a 500.
func (s *Server) handleSyncDevices(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncer.SyncAll(r.Context())
	if err != nil {
		s.logger.Error("sync run failed", "error", err)
		writeInternalError(w, "sync failed")
		return
	}

	enriched, err := s.devices.ListEnriched(r.Context())
	if err != nil {
		s.logger.Error("listing devices after sync", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	for i := range enriched {
		s.mergeDisplayState(&enriched[i])
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:     true,
		Data:        enriched,
		SyncedCount: result.SyncedCount,
		Errors:      result.Errors,
	})
}

// mergeDisplayState overlays the live in-memory display state onto a
// persisted enriched device row.
func (s *Server) mergeDisplayState(enriched *device.EnrichedDevice) {
	info, ok := s.store.Get(enriched.Key())
	if !ok {
		return
	}
	if info.DisplayState != nil {
		enriched.DisplayState = (*string)(info.DisplayState)
	}
}
