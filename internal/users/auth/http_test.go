// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/orvia/internal/platform/constants"
	"github.com/taibuivan/orvia/internal/platform/middleware"
	"github.com/taibuivan/orvia/internal/users/auth"
)

// newAuthRouter mounts the handler behind the session middleware the way the
// composition root does.
func newAuthRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.service))
	router.Mount("/auth", auth.NewHandler(f.service).Routes())
	return router
}

func postJSON(t *testing.T, handler http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func sessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

/*
TestHTTP_SignupVerifySessionLogout drives the full lifecycle over the wire:
request a code, redeem it, introspect the session via the cookie, log out,
and observe the session die.
*/
func TestHTTP_SignupVerifySessionLogout(t *testing.T) {
	f := newFixture(t)
	router := newAuthRouter(f)

	// 1. Request a signup code.
	recorder := postJSON(t, router, "/auth/request-code",
		`{"email":"a@x.com","mode":"signup","full_name":"Alpha"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	code := f.sender.lastCode(t)

	// 2. Redeem it; the session cookie must be HttpOnly and secure.
	recorder = postJSON(t, router, "/auth/verify-code",
		`{"email":"a@x.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	cookie := sessionCookie(t, recorder)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.NotEmpty(t, cookie.Value)

	var verifyBody struct {
		User struct {
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &verifyBody))
	assert.Equal(t, "a@x.com", verifyBody.User.Email)
	assert.Equal(t, "Alpha", verifyBody.User.FullName)

	// 3. The cookie authenticates session introspection.
	request := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	request.AddCookie(cookie)
	sessionRecorder := httptest.NewRecorder()
	router.ServeHTTP(sessionRecorder, request)
	require.Equal(t, http.StatusOK, sessionRecorder.Code, sessionRecorder.Body.String())

	// 4. Logout clears the cookie and revokes the session.
	recorder = postJSON(t, router, "/auth/logout", ``, cookie)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	cleared := sessionCookie(t, recorder)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	request = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	request.AddCookie(cookie)
	deadRecorder := httptest.NewRecorder()
	router.ServeHTTP(deadRecorder, request)
	assert.Equal(t, http.StatusUnauthorized, deadRecorder.Code)
}

/*
TestHTTP_SessionWithoutCookie verifies anonymous callers are refused by the
protected session endpoint.
*/
func TestHTTP_SessionWithoutCookie(t *testing.T) {
	f := newFixture(t)
	router := newAuthRouter(f)

	request := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

/*
TestHTTP_RequestCodeErrors maps domain failures onto transport status codes.
*/
func TestHTTP_RequestCodeErrors(t *testing.T) {
	f := newFixture(t)
	router := newAuthRouter(f)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed_json", `{"email": `, http.StatusBadRequest},
		{"invalid_email", `{"email":"nope","mode":"signup"}`, http.StatusBadRequest},
		{"login_without_account", `{"email":"ghost@x.com","mode":"login"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postJSON(t, router, "/auth/request-code", tt.body)
			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}

	// Cooldown surfaces as 429.
	recorder := postJSON(t, router, "/auth/request-code", `{"email":"a@x.com","mode":"signup"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = postJSON(t, router, "/auth/request-code", `{"email":"a@x.com","mode":"signup"}`)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
}
