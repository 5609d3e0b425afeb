package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/argus-security/argus-core/internal/alarm"
)

type zoneRequest struct {
	SiteID string `json:"siteId"`
	Name   string `json:"name"`
}

type zoneDevicesRequest struct {
	DeviceIDs []string `json:"deviceIds"`
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	var (
		zones []alarm.Zone
		err   error
	)
	if siteID := r.URL.Query().Get("siteId"); siteID != "" {
		zones, err = s.zones.ListZonesBySite(r.Context(), siteID)
	} else {
		zones, err = s.zones.ListZones(r.Context())
	}
	if err != nil {
		s.logger.Error("listing zones", "error", err)
		writeInternalError(w, "failed to list zones")
		return
	}
	writeSuccess(w, zones)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := s.zones.GetZone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		s.logger.Error("loading zone", "error", err)
		writeInternalError(w, "failed to load zone")
		return
	}
	writeSuccess(w, zone)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SiteID == "" {
		writeBadRequest(w, "siteId is required")
		return
	}

	zone := &alarm.Zone{
		ID:     uuid.New().String(),
		SiteID: req.SiteID,
		Name:   req.Name,
	}
	if err := s.zones.CreateZone(r.Context(), zone); err != nil {
		if errors.Is(err, alarm.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("creating zone", "error", err)
		writeInternalError(w, "failed to create zone")
		return
	}
	writeCreated(w, zone)
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if !decodeBody(w, r, &req) {
		return
	}

	zone, err := s.zones.GetZone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		writeInternalError(w, "failed to load zone")
		return
	}

	if req.Name != "" {
		zone.Name = req.Name
	}

	if err := s.zones.UpdateZone(r.Context(), zone); err != nil {
		if errors.Is(err, alarm.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("updating zone", "error", err)
		writeInternalError(w, "failed to update zone")
		return
	}
	writeSuccess(w, zone)
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	err := s.zones.DeleteZone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		s.logger.Error("deleting zone", "error", err)
		writeInternalError(w, "failed to delete zone")
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleGetZoneDevices(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")
	if _, err := s.zones.GetZone(r.Context(), zoneID); err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		writeInternalError(w, "failed to load zone")
		return
	}

	ids, err := s.zones.GetZoneDeviceIDs(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("listing zone devices", "error", err)
		writeInternalError(w, "failed to list zone devices")
		return
	}
	writeSuccess(w, ids)
}

func (s *Server) handleSetZoneDevices(w http.ResponseWriter, r *http.Request) {
	var req zoneDevicesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	zoneID := chi.URLParam(r, "id")
	if err := s.zones.SetZoneDevices(r.Context(), zoneID, req.DeviceIDs); err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		s.logger.Error("setting zone devices", "error", err)
		writeInternalError(w, "failed to set zone devices")
		return
	}

	ids, err := s.zones.GetZoneDeviceIDs(r.Context(), zoneID)
	if err != nil {
		writeInternalError(w, "failed to list zone devices")
		return
	}
	writeSuccess(w, ids)
}

func (s *Server) handleArmZone(w http.ResponseWriter, r *http.Request) {
	zone, err := s.alarms.Arm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		s.logger.Error("arming zone", "error", err)
		writeInternalError(w, "failed to arm zone")
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(channelZoneState, zone)
	}
	writeSuccess(w, zone)
}

func (s *Server) handleDisarmZone(w http.ResponseWriter, r *http.Request) {
	zone, err := s.alarms.Disarm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alarm.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		s.logger.Error("disarming zone", "error", err)
		writeInternalError(w, "failed to disarm zone")
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(channelZoneState, zone)
	}
	writeSuccess(w, zone)
}
