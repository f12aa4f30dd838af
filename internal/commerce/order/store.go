// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import "context"

// # Repository Contract

// Repository manages Order records. The file-backed document store under
// internal/platform/store provides the production implementation.
type Repository interface {
	/*
		Create persists a new order.

		Parameters:
		  - ctx: request context.
		  - o: fully populated record; ID must be set.

		Returns:
		  - error: persistence failure.
	*/
	Create(ctx context.Context, o *Order) error

	/*
		FindByID loads an order by identifier.

		Parameters:
		  - ctx: request context.
		  - id: order identifier.

		Returns:
		  - *Order: the order, or an apperr.NotFound-coded error when absent.
		  - error: lookup failure.
	*/
	FindByID(ctx context.Context, id string) (*Order, error)

	/*
		ListByUser returns every order owned by a user, newest first by
		creation time.

		Parameters:
		  - ctx: request context.
		  - userID: owner identifier.

		Returns:
		  - []*Order: the owner's orders; empty slice when none.
		  - error: lookup failure.
	*/
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	/*
		ListAll returns every order in the store, newest first by creation time.

		Parameters:
		  - ctx: request context.

		Returns:
		  - []*Order: all orders; empty slice when none.
		  - error: lookup failure.
	*/
	ListAll(ctx context.Context) ([]*Order, error)

	/*
		Update replaces an existing order record in full.

		Parameters:
		  - ctx: request context.
		  - o: record to store; matched by ID.

		Returns:
		  - error: an apperr.NotFound-coded error when the order is absent.
	*/
	Update(ctx context.Context, o *Order) error
}
