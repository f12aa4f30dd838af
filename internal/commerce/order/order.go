// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order implements the purchase-order lifecycle of the Orvia storefront.

Orders are created by authenticated customers with a pending status, listed by
their owner, and administered (status and notes) by allow-listed operators.
Orders are never deleted.
*/
package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/taibuivan/orvia/pkg/slug"
)

// # Order Status

// Status is the administrative disposition of an order.
//
// No transition graph is enforced; any status may follow any other.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// AllStatuses lists every valid order status, for validation and docs.
var AllStatuses = []string{
	string(StatusPending),
	string(StatusProcessing),
	string(StatusCompleted),
	string(StatusCancelled),
	string(StatusRefunded),
}

// Valid reports whether the status is one of the fixed enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// # Domain Entity

// Order represents a customer's purchase intent and its administrative disposition.
//
// The user email and full name are denormalized snapshots taken at creation
// time; later profile changes do not rewrite past orders.
type Order struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserEmail    string `json:"user_email"`
	UserFullName string `json:"user_full_name,omitempty"`

	ServiceID    string `json:"service_id"`
	ServiceName  string `json:"service_name"`
	PlanID       string `json:"plan_id,omitempty"`
	PlanName     string `json:"plan_name"`
	PlanDuration string `json:"plan_duration,omitempty"`

	// Price is a non-negative integer amount in the fixed store currency.
	Price int64 `json:"price"`

	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`

	// Source is a provenance tag for the channel the order arrived through.
	Source string `json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Identifiers

const (
	// DefaultSource tags orders placed through the web storefront.
	DefaultSource = "web"

	orderIDPrefix      = "ord"
	orderIDSuffixBytes = 4
)

/*
NewOrderID builds a human-readable order identifier from the service name
plus a random hex suffix, e.g. "ord-cgpt-pro-a1b2c3d4".

Parameters:
  - serviceName: display name of the ordered service; slugified into the id.

Returns:
  - string: the generated identifier.
*/
func NewOrderID(serviceName string) string {
	buf := make([]byte, orderIDSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("order: entropy source failed: %v", err))
	}

	s := slug.From(serviceName)
	if s == "" {
		s = "order"
	}
	return fmt.Sprintf("%s-%s-%s", orderIDPrefix, s, hex.EncodeToString(buf))
}

// # Validation Bounds

// MaxPrice caps a single order amount. Well below the int64 ceiling, so a
// floored price can never overflow into a negative stored amount.
const MaxPrice int64 = 1_000_000_000_000

const (
	MaxServiceIDLength   = 64
	MaxServiceNameLength = 160
	MaxPlanIDLength      = 64
	MaxPlanNameLength    = 160
	MaxPlanDuration      = 64
	MaxNotesLength       = 2000
)

// # Field Identifiers

// Global field names for validation and response mapping in the order domain.
const (
	FieldOrderID      = "order_id"
	FieldServiceID    = "service_id"
	FieldServiceName  = "service_name"
	FieldPlanID       = "plan_id"
	FieldPlanName     = "plan_name"
	FieldPlanDuration = "plan_duration"
	FieldPrice        = "price"
	FieldStatus       = "status"
	FieldNotes        = "notes"
	FieldOrders       = "orders"
	FieldOrder        = "order"
	FieldPatch        = "patch"
)
