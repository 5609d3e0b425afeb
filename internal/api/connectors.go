package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/argus-security/argus-core/internal/connector"
)

// connectorRequest is the create/update body for a connector.
type connectorRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Config   string `json:"config"`
}

// handleListConnectors returns all connectors, optionally filtered by
// the category query parameter.
func (s *Server) handleListConnectors(w http.ResponseWriter, r *http.Request) {
	var (
		connectors []connector.Connector
		err        error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		connectors, err = s.connectors.ListByCategory(r.Context(), connector.Category(category))
	} else {
		connectors, err = s.connectors.List(r.Context())
	}
	if err != nil {
		s.logger.Error("listing connectors", "error", err)
		writeInternalError(w, "failed to list connectors")
		return
	}
	writeSuccess(w, connectors)
}

// handleGetConnector returns a single connector by ID.
func (s *Server) handleGetConnector(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connectors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, connector.ErrNotFound) {
			writeNotFound(w, "connector not found")
			return
		}
		s.logger.Error("loading connector", "error", err)
		writeInternalError(w, "failed to load connector")
		return
	}
	writeSuccess(w, conn)
}

// handleCreateConnector creates a connector. The config blob must parse
// for the connector's category but is not required to be complete;
// completeness is checked at sync time.
func (s *Server) handleCreateConnector(w http.ResponseWriter, r *http.Request) {
	var req connectorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category := connector.Category(req.Category)
	if req.Config == "" {
		req.Config = "{}"
	}
	if _, err := connector.ParseConfig(category, req.Config); err != nil {
		writeBadRequest(w, "Failed to parse connector configuration.")
		return
	}

	conn := &connector.Connector{
		ID:        uuid.New().String(),
		Category:  category,
		Name:      req.Name,
		RawConfig: req.Config,
	}
	if err := s.connectors.Create(r.Context(), conn); err != nil {
		if errors.Is(err, connector.ErrInvalidCategory) || errors.Is(err, connector.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("creating connector", "error", err)
		writeInternalError(w, "failed to create connector")
		return
	}

	created, err := s.connectors.GetByID(r.Context(), conn.ID)
	if err != nil {
		writeSuccess(w, conn)
		return
	}
	writeCreated(w, created)
}

// handleUpdateConnector updates a connector's name and config.
func (s *Server) handleUpdateConnector(w http.ResponseWriter, r *http.Request) {
	var req connectorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	conn, err := s.connectors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, connector.ErrNotFound) {
			writeNotFound(w, "connector not found")
			return
		}
		s.logger.Error("loading connector", "error", err)
		writeInternalError(w, "failed to load connector")
		return
	}

	if req.Name != "" {
		conn.Name = req.Name
	}
	if req.Config != "" {
		if _, err := connector.ParseConfig(conn.Category, req.Config); err != nil {
			writeBadRequest(w, "Failed to parse connector configuration.")
			return
		}
		conn.RawConfig = req.Config
	}

	if err := s.connectors.Update(r.Context(), conn); err != nil {
		if errors.Is(err, connector.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("updating connector", "error", err)
		writeInternalError(w, "failed to update connector")
		return
	}
	writeSuccess(w, conn)
}

// handleDeleteConnector deletes a connector. Its devices are removed by
// the schema's cascade rules.
func (s *Server) handleDeleteConnector(w http.ResponseWriter, r *http.Request) {
	err := s.connectors.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, connector.ErrNotFound) {
			writeNotFound(w, "connector not found")
			return
		}
		s.logger.Error("deleting connector", "error", err)
		writeInternalError(w, "failed to delete connector")
		return
	}
	writeSuccess(w, nil)
}
