// Copyright (c) 2026 LinguaPhoto. All rights reserved.
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

	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	"github.com/taibuivan/linguaphoto/internal/users/auth"
)

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.tokens))
	router.Mount("/auth", auth.NewHandler(f.service).Routes())
	return router
}

func do(t *testing.T, handler http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var envelope map[string]any
	_ = json.Unmarshal(recorder.Body.Bytes(), &envelope)
	return recorder, envelope
}

/*
TestHandler_SignupSigninMe walks the public account flow over HTTP.
*/
func TestHandler_SignupSigninMe(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	// 1. Signup
	recorder, envelope := do(t, router, http.MethodPost, "/auth/signup",
		`{"username":"xiaoming","email":"http@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, recorder.Code)

	data := envelope["data"].(map[string]any)
	token := data["token"].(string)
	user := data["user"].(map[string]any)
	assert.Equal(t, "http@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	// 2. Duplicate signup
	recorder, envelope = do(t, router, http.MethodPost, "/auth/signup",
		`{"username":"xiaoming","email":"http@example.com","password":"correct-horse"}`, "")
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "CONFLICT", envelope["code"])

	// 3. Signin
	recorder, _ = do(t, router, http.MethodPost, "/auth/signin", `{"email":"http@example.com","password":"correct-horse"}`, "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = do(t, router, http.MethodPost, "/auth/signin", `{"email":"http@example.com","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 4. Me
	recorder, envelope = do(t, router, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, user["id"], envelope["data"].(map[string]any)["id"])

	recorder, _ = do(t, router, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 5. API key without subscription
	recorder, _ = do(t, router, http.MethodGet, "/auth/api-key", "", token)
	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
}

/*
TestHandler_MalformedJSON rejects undecodable bodies.
*/
func TestHandler_MalformedJSON(t *testing.T) {
	recorder, envelope := do(t, newRouter(newFixture(t)), http.MethodPost, "/auth/signup", `{"username":`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", envelope["code"])
}
