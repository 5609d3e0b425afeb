package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/argus-security/argus-core/internal/location"
)

type siteRequest struct {
	Name     string  `json:"name"`
	Address  *string `json:"address"`
	Timezone string  `json:"timezone"`
}

type spaceRequest struct {
	SiteID      string  `json:"siteId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sortOrder"`
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.locations.ListSites(r.Context())
	if err != nil {
		s.logger.Error("listing sites", "error", err)
		writeInternalError(w, "failed to list sites")
		return
	}
	writeSuccess(w, sites)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, err := s.locations.GetSite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrSiteNotFound) {
			writeNotFound(w, "site not found")
			return
		}
		s.logger.Error("loading site", "error", err)
		writeInternalError(w, "failed to load site")
		return
	}
	writeSuccess(w, site)
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	site := &location.Site{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Address:  req.Address,
		Timezone: req.Timezone,
	}
	if err := s.locations.CreateSite(r.Context(), site); err != nil {
		if errors.Is(err, location.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("creating site", "error", err)
		writeInternalError(w, "failed to create site")
		return
	}
	writeCreated(w, site)
}

func (s *Server) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	site, err := s.locations.GetSite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrSiteNotFound) {
			writeNotFound(w, "site not found")
			return
		}
		writeInternalError(w, "failed to load site")
		return
	}

	if req.Name != "" {
		site.Name = req.Name
	}
	if req.Address != nil {
		site.Address = req.Address
	}
	if req.Timezone != "" {
		site.Timezone = req.Timezone
	}

	if err := s.locations.UpdateSite(r.Context(), site); err != nil {
		if errors.Is(err, location.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("updating site", "error", err)
		writeInternalError(w, "failed to update site")
		return
	}
	writeSuccess(w, site)
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	err := s.locations.DeleteSite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrSiteNotFound) {
			writeNotFound(w, "site not found")
			return
		}
		s.logger.Error("deleting site", "error", err)
		writeInternalError(w, "failed to delete site")
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	var (
		spaces []location.Space
		err    error
	)
	if siteID := r.URL.Query().Get("siteId"); siteID != "" {
		spaces, err = s.locations.ListSpacesBySite(r.Context(), siteID)
	} else {
		spaces, err = s.locations.ListSpaces(r.Context())
	}
	if err != nil {
		s.logger.Error("listing spaces", "error", err)
		writeInternalError(w, "failed to list spaces")
		return
	}
	writeSuccess(w, spaces)
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var req spaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SiteID == "" {
		writeBadRequest(w, "siteId is required")
		return
	}

	space := &location.Space{
		ID:          uuid.New().String(),
		SiteID:      req.SiteID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := s.locations.CreateSpace(r.Context(), space); err != nil {
		if errors.Is(err, location.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("creating space", "error", err)
		writeInternalError(w, "failed to create space")
		return
	}
	writeCreated(w, space)
}

func (s *Server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	var req spaceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	space, err := s.locations.GetSpace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrSpaceNotFound) {
			writeNotFound(w, "space not found")
			return
		}
		writeInternalError(w, "failed to load space")
		return
	}

	if req.Name != "" {
		space.Name = req.Name
	}
	if req.Description != nil {
		space.Description = req.Description
	}
	if req.SortOrder != 0 {
		space.SortOrder = req.SortOrder
	}

	if err := s.locations.UpdateSpace(r.Context(), space); err != nil {
		if errors.Is(err, location.ErrInvalidName) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("updating space", "error", err)
		writeInternalError(w, "failed to update space")
		return
	}
	writeSuccess(w, space)
}

func (s *Server) handleDeleteSpace(w http.ResponseWriter, r *http.Request) {
	err := s.locations.DeleteSpace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrSpaceNotFound) {
			writeNotFound(w, "space not found")
			return
		}
		s.logger.Error("deleting space", "error", err)
		writeInternalError(w, "failed to delete space")
		return
	}
	writeSuccess(w, nil)
}
