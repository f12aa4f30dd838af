// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package store provides the durable document store of the Orvia storefront.

All domain state lives in a single in-memory Document mirrored to one JSON
file on disk. Every mutation rewrites the whole file through a
write-to-temporary-then-rename pattern, so a crash mid-write always leaves the
previous consistent version intact.

# Architecture

The FileStore owns the Document and guards it with a read-write mutex.
Repository implementations for the auth and order domains live alongside it
and run their reads and writes inside View/Mutate transactions.
*/
package store

import (
	"time"

	"github.com/taibuivan/orvia/internal/commerce/order"
	"github.com/taibuivan/orvia/internal/users/auth"
)

// # Document

// Document is the complete persisted state of the storefront.
//
// Keys: users by id, challenges by normalized email (which structurally
// enforces the single-active-challenge invariant), sessions by token hash,
// orders by id.
type Document struct {
	Users         map[string]*auth.User         `json:"users"`
	OTPChallenges map[string]*auth.OTPChallenge `json:"otp_challenges"`
	Sessions      map[string]*auth.Session      `json:"sessions"`
	Orders        map[string]*order.Order       `json:"orders"`
}

// NewDocument returns an empty document with all collections allocated.
func NewDocument() *Document {
	return &Document{
		Users:         make(map[string]*auth.User),
		OTPChallenges: make(map[string]*auth.OTPChallenge),
		Sessions:      make(map[string]*auth.Session),
		Orders:        make(map[string]*order.Order),
	}
}

// normalize allocates any collection left nil by a partial on-disk document.
func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = make(map[string]*auth.User)
	}
	if d.OTPChallenges == nil {
		d.OTPChallenges = make(map[string]*auth.OTPChallenge)
	}
	if d.Sessions == nil {
		d.Sessions = make(map[string]*auth.Session)
	}
	if d.Orders == nil {
		d.Orders = make(map[string]*order.Order)
	}
}

// reapExpired removes challenges and sessions past their expiry and reports
// how many entries were dropped.
func (d *Document) reapExpired(now time.Time) int {
	removed := 0
	for email, c := range d.OTPChallenges {
		if c.Expired(now) {
			delete(d.OTPChallenges, email)
			removed++
		}
	}
	for hash, s := range d.Sessions {
		if s.Expired(now) {
			delete(d.Sessions, hash)
			removed++
		}
	}
	return removed
}
