// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taibuivan/orvia/internal/platform/apperr"
	"github.com/taibuivan/orvia/internal/platform/metrics"
	"github.com/taibuivan/orvia/internal/platform/sec"
	"github.com/taibuivan/orvia/internal/platform/validate"
	"github.com/taibuivan/orvia/pkg/pointer"
)

// # Service

// Service implements the order lifecycle use cases.
//
// Every operation takes the resolved caller identity; authorization decisions
// are made here, not in the transport layer.
type Service struct {
	orderRepository Repository
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(orderRepo Repository) *Service {
	return &Service{orderRepository: orderRepo}
}

// # Order Creation

// CreateInput holds the data required to place an order.
type CreateInput struct {
	ServiceID    string
	ServiceName  string
	PlanID       string
	PlanName     string
	PlanDuration string

	// Price arrives as a number from the catalog collaborator; it is
	// range-checked and floored to an integer unit here.
	Price float64

	Notes  string
	Source string
}

/*
Create places a new order for an authenticated caller.

Description: Validates the payload, snapshots the caller's email and name,
assigns a readable order id, and persists the record with a pending status.

Parameters:
  - context: context.Context
  - caller: resolved identity; must be non-nil.
  - input: CreateInput

Returns:
  - *Order: the created record.
  - err: Unauthorized (anonymous caller), ValidationError, or storage errors.
*/
func (service *Service) Create(context context.Context, caller *sec.Principal, input CreateInput) (*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	serviceID := strings.TrimSpace(input.ServiceID)
	serviceName := strings.TrimSpace(input.ServiceName)
	planID := strings.TrimSpace(input.PlanID)
	planName := strings.TrimSpace(input.PlanName)
	planDuration := strings.TrimSpace(input.PlanDuration)
	notes := strings.TrimSpace(input.Notes)

	if err := validate.New().
		Required(FieldServiceID, serviceID).
		MaxLen(FieldServiceID, serviceID, MaxServiceIDLength).
		Required(FieldServiceName, serviceName).
		MaxLen(FieldServiceName, serviceName, MaxServiceNameLength).
		MaxLen(FieldPlanID, planID, MaxPlanIDLength).
		Required(FieldPlanName, planName).
		MaxLen(FieldPlanName, planName, MaxPlanNameLength).
		MaxLen(FieldPlanDuration, planDuration, MaxPlanDuration).
		FinitePrice(FieldPrice, input.Price).
		Custom(FieldPrice, input.Price > float64(MaxPrice), "Exceeds the maximum order amount").
		MaxLen(FieldNotes, notes, MaxNotesLength).
		Err(); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = DefaultSource
	}

	now := time.Now().UTC()
	record := &Order{
		ID:           NewOrderID(serviceName),
		UserID:       caller.UserID,
		UserEmail:    caller.Email,
		UserFullName: caller.FullName,
		ServiceID:    serviceID,
		ServiceName:  serviceName,
		PlanID:       planID,
		PlanName:     planName,
		PlanDuration: planDuration,
		// Floor keeps the stored amount within [0, submitted price].
		Price:     int64(math.Floor(input.Price)),
		Status:    StatusPending,
		Notes:     notes,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := service.orderRepository.Create(context, record); err != nil {
		return nil, fmt.Errorf("order_service_create_failed: %w", err)
	}

	metrics.OrdersCreatedTotal.Inc()
	return record, nil
}

// # Listings

/*
ListMine returns every order owned by the caller, newest first.

Parameters:
  - context: context.Context
  - caller: resolved identity; must be non-nil.

Returns:
  - []*Order: the caller's orders; empty slice when none.
  - err: Unauthorized (anonymous caller) or storage errors.
*/
func (service *Service) ListMine(context context.Context, caller *sec.Principal) ([]*Order, error) {
	if caller == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return service.orderRepository.ListByUser(context, caller.UserID)
}

/*
ListAll returns every order in the store, newest first.

Parameters:
  - context: context.Context
  - caller: resolved identity; must be an administrator.

Returns:
  - []*Order: all orders; empty slice when none.
  - err: Unauthorized, Forbidden (non-admin), or storage errors.
*/
func (service *Service) ListAll(context context.Context, caller *sec.Principal) ([]*Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return service.orderRepository.ListAll(context)
}

// # Administration

// UpdateInput is an administrator's patch against an order. Nil fields are
// left untouched; at least one must be present.
type UpdateInput struct {
	Status *string
	Notes  *string
}

/*
AdminUpdate applies an administrator's patch to an order.

Description: May set a new status (any of the fixed enum values; no
transition graph is enforced) and/or replace notes. Every applied patch bumps
the update timestamp.

Parameters:
  - context: context.Context
  - caller: resolved identity; must be an administrator.
  - orderID: target order.
  - input: UpdateInput

Returns:
  - *Order: the updated record.
  - err: Unauthorized, Forbidden, ValidationError (unknown status or empty
    patch), NotFound (unknown order), or storage errors.
*/
func (service *Service) AdminUpdate(context context.Context, caller *sec.Principal, orderID string, input UpdateInput) (*Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	if input.Status == nil && input.Notes == nil {
		return nil, validate.RequiredError(FieldPatch, "At least one of status or notes must be provided")
	}

	if input.Status != nil {
		if err := validate.New().
			OneOf(FieldStatus, pointer.Val(input.Status), AllStatuses...).
			Err(); err != nil {
			return nil, err
		}
	}

	record, err := service.orderRepository.FindByID(context, orderID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		record.Status = Status(pointer.Val(input.Status))
	}
	if input.Notes != nil {
		record.Notes = strings.TrimSpace(pointer.Val(input.Notes))
	}
	record.UpdatedAt = time.Now().UTC()

	if err := service.orderRepository.Update(context, record); err != nil {
		return nil, fmt.Errorf("order_service_update_failed: %w", err)
	}

	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(record.Status)).Inc()
	return record, nil
}

// requireAdmin gates administrator-only operations on allow-list membership.
func requireAdmin(caller *sec.Principal) error {
	if caller == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !caller.IsAdmin {
		return apperr.Forbidden("Administrator access required")
	}
	return nil
}
