// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/orvia/internal/platform/middleware"
	requestutil "github.com/taibuivan/orvia/internal/platform/request"
	"github.com/taibuivan/orvia/internal/platform/respond"
	"github.com/taibuivan/orvia/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for the order lifecycle.
type Handler struct {
	orderService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{orderService: service}
}

// Routes returns a [chi.Router] with the customer-facing order routes.
//
// # Endpoints
//   - POST / : Places a new order.
//   - GET  / : Lists the caller's orders.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)
	router.Post("/", handler.create)
	router.Get("/", handler.listMine)

	return router
}

// AdminRoutes returns a [chi.Router] with the administrator order routes.
//
// # Endpoints
//   - GET   /           : Lists every order.
//   - PATCH /{orderID}  : Updates an order's status and/or notes.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listAll)
	router.Patch("/{orderID}", handler.adminUpdate)

	return router
}

// # Request Payloads

type createRequest struct {
	ServiceID    string  `json:"service_id"`
	ServiceName  string  `json:"service_name"`
	PlanID       string  `json:"plan_id"`
	PlanName     string  `json:"plan_name"`
	PlanDuration string  `json:"plan_duration"`
	Price        float64 `json:"price"`
	Notes        string  `json:"notes"`
	Source       string  `json:"source"`
}

type updateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

/*
Create places a new order for the authenticated caller.

POST /api/v1/orders

Description: Validates the payload and persists a pending order snapshotting
the caller's identity.

Request:
  - Body: createRequest

Response:
  - 201: order: Created record with status "pending"
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: ErrUnauthorized: Missing or invalid session
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	record, err := handler.orderService.Create(request.Context(), principal, CreateInput{
		ServiceID:    input.ServiceID,
		ServiceName:  input.ServiceName,
		PlanID:       input.PlanID,
		PlanName:     input.PlanName,
		PlanDuration: input.PlanDuration,
		Price:        input.Price,
		Notes:        input.Notes,
		Source:       input.Source,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{FieldOrder: record})
}

/*
ListMine returns the caller's orders, newest first.

GET /api/v1/orders

Response:
  - 200: orders: The caller's orders
  - 401: ErrUnauthorized: Missing or invalid session
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orders, err := handler.orderService.ListMine(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{FieldOrders: orders})
}

/*
ListAll returns every order in the store, newest first.

GET /api/v1/admin/orders

Response:
  - 200: orders: All orders
  - 401: ErrUnauthorized: Missing or invalid session
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orders, err := handler.orderService.ListAll(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{FieldOrders: orders})
}

/*
AdminUpdate patches an order's status and/or notes.

PATCH /api/v1/admin/orders/{orderID}

Request:
  - Body: updateRequest (Status, Notes; at least one)

Response:
  - 200: order: Updated record with a bumped update timestamp
  - 400: ErrInvalidJSON: Unknown status or empty patch
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown order id
*/
func (handler *Handler) adminUpdate(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orderID := requestutil.Param(request, "orderID")
	if orderID == "" {
		respond.Error(writer, request, validate.RequiredError(FieldOrderID, "Order id is required"))
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	record, err := handler.orderService.AdminUpdate(request.Context(), principal, orderID, UpdateInput{
		Status: input.Status,
		Notes:  input.Notes,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{FieldOrder: record})
}
