package api

import (
	"net/http"

	"github.com/argus-security/argus-core/internal/device"
)

type associationRequest struct {
	DeviceID     string `json:"deviceId"`
	PikoCameraID string `json:"pikoCameraId"`
}

func (s *Server) handleListAssociations(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		writeBadRequest(w, "deviceId is required")
		return
	}

	assocs, err := s.associations.ListForDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("listing camera associations", "error", err)
		writeInternalError(w, "failed to list camera associations")
		return
	}
	writeSuccess(w, assocs)
}

func (s *Server) handleCreateAssociation(w http.ResponseWriter, r *http.Request) {
	var req associationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DeviceID == "" || req.PikoCameraID == "" {
		writeBadRequest(w, "deviceId and pikoCameraId are required")
		return
	}

	assoc := &device.CameraAssociation{
		DeviceID:     req.DeviceID,
		PikoCameraID: req.PikoCameraID,
	}
	if err := s.associations.Create(r.Context(), assoc); err != nil {
		s.logger.Error("creating camera association", "error", err)
		writeInternalError(w, "failed to create camera association")
		return
	}
	writeCreated(w, assoc)
}

func (s *Server) handleDeleteAssociation(w http.ResponseWriter, r *http.Request) {
	var req associationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DeviceID == "" || req.PikoCameraID == "" {
		writeBadRequest(w, "deviceId and pikoCameraId are required")
		return
	}

	if err := s.associations.Delete(r.Context(), req.DeviceID, req.PikoCameraID); err != nil {
		s.logger.Error("deleting camera association", "error", err)
		writeInternalError(w, "failed to delete camera association")
		return
	}
	writeSuccess(w, nil)
}
