// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the passwordless identity layer of the Orvia storefront.

It defines the core domain entities (User, OTPChallenge, Session) and the logic
for the one-time-code authentication flow and session lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to identity.

# Persistence Shape

The JSON tags on these entities are the on-disk document shape. Session and
OTPChallenge therefore serialize their hashes; neither entity is ever returned
over HTTP — handlers expose DTOs instead.
*/
package auth

import "time"

// # Challenge Modes

// ChallengeMode declares the caller's intent when requesting a one-time code.
type ChallengeMode string

const (
	// ModeLogin requires an existing account for the email.
	ModeLogin ChallengeMode = "login"

	// ModeSignup requires the email to be unregistered and may carry a full name.
	ModeSignup ChallengeMode = "signup"
)

// Valid reports whether the mode is one of the two known intents.
func (m ChallengeMode) Valid() bool {
	return m == ModeLogin || m == ModeSignup
}

// # Domain Entities

// User represents a registered customer of the storefront.
//
// Users are created the first time an OTP verification succeeds for an email
// with no existing account, and are never deleted by any operation.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"` // normalized lower-case, globally unique

	// FullName is fillable exactly once: set at creation from the signup
	// request, or left empty until a later signup-style verification carries one.
	FullName string `json:"full_name,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// OTPChallenge is a pending proof-of-email-ownership.
//
// # Invariant
//
// At most one active challenge exists per email: issuing a new one
// unconditionally supersedes any prior one.
type OTPChallenge struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Mode  ChallengeMode `json:"mode"`

	// CodeHash is bcrypt(salt + code); the plaintext code is never stored.
	CodeHash string `json:"code_hash"`
	Salt     string `json:"salt"`

	// PendingFullName is carried through from a signup request and applied
	// to the User only on successful verification.
	PendingFullName string `json:"pending_full_name,omitempty"`

	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is past its expiry at the given instant.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session represents a live authenticated bearer grant.
//
// The raw token is never persisted — only a hash keyed by a server-held
// secret. Sessions are not renewed or extended by use.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TokenHash string `json:"token_hash"`

	// IPAddress and UserAgent are captured for audit only, never enforced.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail    = "email"
	FieldMode     = "mode"
	FieldFullName = "full_name"
	FieldCode     = "code"
	FieldMessage  = "message"
	FieldUser     = "user"
)
