// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"sort"

	"github.com/taibuivan/orvia/internal/commerce/order"
	"github.com/taibuivan/orvia/internal/platform/apperr"
)

// # Order Repository

// OrderStore implements order.Repository on top of the file store.
type OrderStore struct {
	fs *FileStore
}

// NewOrderStore creates a file-backed order repository.
func NewOrderStore(fs *FileStore) *OrderStore {
	return &OrderStore{fs: fs}
}

func (r *OrderStore) Create(_ context.Context, o *order.Order) error {
	return r.fs.Mutate(func(doc *Document) error {
		if _, ok := doc.Orders[o.ID]; ok {
			return apperr.Conflict("Order id already exists")
		}
		cp := *o
		doc.Orders[o.ID] = &cp
		return nil
	})
}

func (r *OrderStore) FindByID(_ context.Context, id string) (*order.Order, error) {
	var found *order.Order
	err := r.fs.View(func(doc *Document) error {
		o, ok := doc.Orders[id]
		if !ok {
			return apperr.NotFound("order")
		}
		cp := *o
		found = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *OrderStore) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	result := make([]*order.Order, 0)
	err := r.fs.View(func(doc *Document) error {
		for _, o := range doc.Orders {
			if o.UserID == userID {
				cp := *o
				result = append(result, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *OrderStore) ListAll(_ context.Context) ([]*order.Order, error) {
	result := make([]*order.Order, 0)
	err := r.fs.View(func(doc *Document) error {
		for _, o := range doc.Orders {
			cp := *o
			result = append(result, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *OrderStore) Update(_ context.Context, o *order.Order) error {
	return r.fs.Mutate(func(doc *Document) error {
		if _, ok := doc.Orders[o.ID]; !ok {
			return apperr.NotFound("order")
		}
		cp := *o
		doc.Orders[o.ID] = &cp
		return nil
	})
}

// sortNewestFirst orders by creation time descending, breaking ties by id so
// listings are stable.
func sortNewestFirst(orders []*order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
