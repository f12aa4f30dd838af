// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/orvia/internal/platform/constants"
	"github.com/taibuivan/orvia/internal/platform/middleware"
	requestutil "github.com/taibuivan/orvia/internal/platform/request"
	"github.com/taibuivan/orvia/internal/platform/respond"
	"github.com/taibuivan/orvia/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for passwordless authentication.
//
// # Scope
//
// Code request and redemption, session introspection, and logout. This layer
// is strictly responsible for transport concerns (status codes, cookies, JSON).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /request-code : Issues a one-time code to an email.
//   - POST /verify-code  : Redeems a code and sets the session cookie.
//   - GET  /session      : Returns the authenticated caller's profile.
//   - POST /logout       : Revokes the session and clears the cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/request-code", handler.requestCode)
	router.Post("/verify-code", handler.verifyCode)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/session", handler.session)
	})

	return router
}

// # Request Payloads

type requestCodeRequest struct {
	Email    string `json:"email"`
	Mode     string `json:"mode"`
	FullName string `json:"full_name"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// # Response Payloads

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func newUserResponse(user *User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

/*
RequestCode starts a verification challenge for an email address.

POST /api/v1/auth/request-code

Description: Validates the declared intent, issues a fresh one-time code, and
hands it to the mail collaborator. The acknowledgment is deliberately generic
and never reveals delivery details to the recipient.

Request:
  - Body: requestCodeRequest (Email, Mode, FullName)

Response:
  - 200: message: Generic "code sent" acknowledgment
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 404: ErrNotFound: Login requested for an unregistered email
  - 409: ErrConflict: Signup requested for a registered email
  - 429: ErrRateLimited: Resend cooldown still active
*/
func (handler *Handler) requestCode(writer http.ResponseWriter, request *http.Request) {
	var input requestCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err := handler.authService.RequestCode(request.Context(), RequestCodeInput{
		Email:    input.Email,
		Mode:     ChallengeMode(input.Mode),
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "A verification code has been sent to your email",
	})
}

/*
VerifyCode redeems a one-time code and establishes a session.

POST /api/v1/auth/verify-code

Description: Verifies the submitted code against the active challenge,
finds or creates the account, and injects the session cookie.

Request:
  - Body: verifyCodeRequest (Email, Code)

Response:
  - 200: user: Authenticated profile, session cookie set
  - 401: ErrUnauthorized: Incorrect code
  - 404: ErrNotFound: No active challenge for the email
  - 410: ErrGone: Challenge expired
*/
func (handler *Handler) verifyCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, rawToken, err := handler.authService.VerifyCode(request.Context(), VerifyCodeInput{
		Email:     input.Email,
		Code:      input.Code,
		IPAddress: getClientIP(request),
		UserAgent: request.UserAgent(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    rawToken,
		Path:     constants.SessionCookiePath,
		Expires:  time.Now().UTC().Add(handler.authService.config.SessionTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.OK(writer, map[string]any{
		FieldUser: newUserResponse(user),
	})
}

/*
Session returns the authenticated caller's profile.

GET /api/v1/auth/session

Description: Resolves the session cookie (done by middleware) and loads the
account record behind it.

Response:
  - 200: user: Authenticated profile plus admin membership
  - 401: ErrUnauthorized: Missing or invalid session
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldUser:  newUserResponse(user),
		"is_admin": principal.IsAdmin,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Revokes the session behind the cookie (if present) and clears
the cookie from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.SessionCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

// # Helpers

// getClientIP extracts the best-effort client address for session audit.
func getClientIP(request *http.Request) string {

	ip := request.Header.Get("X-Real-IP")
	if ip == "" {
		ip = request.Header.Get("X-Forwarded-For")
	}

	if ip == "" {
		ip = request.RemoteAddr
	}
	return ip
}
