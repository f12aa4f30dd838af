// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/orvia/internal/platform/request"
	"github.com/taibuivan/orvia/internal/platform/respond"
)

// Handler serves the public, read-only catalog endpoints.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs a new [Handler] for a loaded catalog.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Routes returns a [chi.Router] with the catalog routes.
//
// # Endpoints
//   - GET /             : The full catalog.
//   - GET /{serviceID}  : One service with its plans.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{serviceID}", handler.get)

	return router
}

/*
List returns the full price catalog.

GET /api/v1/catalog

Response:
  - 200: catalog: Currency and all services with plans
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]any{
		"currency": handler.catalog.Currency,
		"services": handler.catalog.Services,
	})
}

/*
Get returns one catalog service.

GET /api/v1/catalog/{serviceID}

Response:
  - 200: service: The service and its plans
  - 404: ErrNotFound: Unknown service id
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	serviceID := requestutil.Param(request, "serviceID")

	svc, err := handler.catalog.Lookup(serviceID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"service": svc})
}
