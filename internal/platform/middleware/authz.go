// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/orvia/internal/platform/apperr"
	"github.com/taibuivan/orvia/internal/platform/constants"
	"github.com/taibuivan/orvia/internal/platform/ctxkey"
	"github.com/taibuivan/orvia/internal/platform/respond"
	"github.com/taibuivan/orvia/internal/platform/sec"
)

// SessionResolver defines the interface needed to resolve session tokens
// in middleware.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the `auth`
// service implementation, allowing us to easily inject mocks during unit
// testing.
type SessionResolver interface {
	ResolveSession(ctx context.Context, rawToken string) (*sec.Principal, error)
}

// Authenticate resolves the session cookie into a caller identity.
//
// # Flow
//  1. Check for the session cookie.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, resolve the opaque token via [SessionResolver]; an unknown
//     or expired token also degrades to anonymous rather than failing, so
//     stale cookies never lock a client out of public pages.
//  4. Inject [*sec.Principal] into the request context for downstream use.
//
// # Parameters
//   - resolver: The SessionResolver instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(constants.SessionCookieName)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Resolution ───────────────────────────────────────────
			principal, err := resolver.ResolveSession(request.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyPrincipal, principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Principal] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks requests from callers outside the administrator
// allow-list. It implies [RequireAuth], so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.Principal] exists in context (implies AuthN).
//  2. Check allow-list membership resolved at session resolution time.
//  3. If not a member, abort with HTTP 403 Forbidden.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := GetPrincipal(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Authorization Check ────────────────────────────────────────
		if !principal.IsAdmin {
			respond.Error(writer, request, apperr.Forbidden("Administrator access required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// GetPrincipal retrieves the [*sec.Principal] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.Principal] if the caller is authenticated.
//   - nil if the caller is anonymous.
func GetPrincipal(ctx context.Context) *sec.Principal {
	principal, ok := ctx.Value(ctxkey.KeyPrincipal).(*sec.Principal)
	if !ok {
		return nil
	}
	return principal
}
