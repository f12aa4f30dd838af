// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec provides cryptographic primitives and caller identity types.

It isolates security-sensitive code (token generation, keyed hashing, one-time
code handling) from the domain logic. The [Principal] type is the only identity
shape that crosses layer boundaries; domain entities never travel inside the
request context.
*/
package sec

// Principal represents the resolved identity of the current caller.
//
// # Lifecycle
//
// It is built by the session resolver on every request (no session-affinity
// cache) and injected into the request context by the Authenticate middleware.
// A nil *Principal means the caller is anonymous.
type Principal struct {
	// UserID is the unique identifier of the authenticated user.
	UserID string `json:"user_id"`

	// Email is the normalized (lower-case) address the user signed in with.
	Email string `json:"email"`

	// FullName is the user's display name. Empty if never provided.
	FullName string `json:"full_name,omitempty"`

	// SessionID identifies the session record backing this principal.
	SessionID string `json:"-"`

	// IsAdmin reports allow-list membership, evaluated at resolve time.
	IsAdmin bool `json:"is_admin"`
}
