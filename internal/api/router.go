package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi router with all routes and middleware.
//
// Route layout:
//
//	GET  /health                    (public)
//	POST /api/auth/login            (public)
//	GET  /api/devices               list devices, ?deviceId= for a single device
//	POST /api/devices               run a full sync
//	     /api/connectors            connector CRUD
//	     /api/sites                 site CRUD
//	     /api/spaces                space CRUD, ?siteId= filter
//	     /api/zones                 zone CRUD, arm/disarm, device membership
//	     /api/associations          camera association management
//	GET  /ws                        WebSocket upgrade
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/api/devices", s.handleDevices)
		r.Post("/api/devices", s.handleSyncDevices)

		r.Route("/api/connectors", func(r chi.Router) {
			r.Get("/", s.handleListConnectors)
			r.Post("/", s.handleCreateConnector)
			r.Get("/{id}", s.handleGetConnector)
			r.Put("/{id}", s.handleUpdateConnector)
			r.Delete("/{id}", s.handleDeleteConnector)
		})

		r.Route("/api/sites", func(r chi.Router) {
			r.Get("/", s.handleListSites)
			r.Post("/", s.handleCreateSite)
			r.Get("/{id}", s.handleGetSite)
			r.Put("/{id}", s.handleUpdateSite)
			r.Delete("/{id}", s.handleDeleteSite)
		})

		r.Route("/api/spaces", func(r chi.Router) {
			r.Get("/", s.handleListSpaces)
			r.Post("/", s.handleCreateSpace)
			r.Put("/{id}", s.handleUpdateSpace)
			r.Delete("/{id}", s.handleDeleteSpace)
		})

		r.Route("/api/zones", func(r chi.Router) {
			r.Get("/", s.handleListZones)
			r.Post("/", s.handleCreateZone)
			r.Get("/{id}", s.handleGetZone)
			r.Put("/{id}", s.handleUpdateZone)
			r.Delete("/{id}", s.handleDeleteZone)
			r.Get("/{id}/devices", s.handleGetZoneDevices)
			r.Put("/{id}/devices", s.handleSetZoneDevices)
			r.Post("/{id}/arm", s.handleArmZone)
			r.Post("/{id}/disarm", s.handleDisarmZone)
		})

		r.Route("/api/associations", func(r chi.Router) {
			r.Get("/", s.handleListAssociations)
			r.Post("/", s.handleCreateAssociation)
			r.Delete("/", s.handleDeleteAssociation)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth reports liveness. It is unauthenticated so load balancers
// and container orchestrators can probe it.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
