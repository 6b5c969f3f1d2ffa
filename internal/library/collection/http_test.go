// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/library/collection"
	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	"github.com/taibuivan/linguaphoto/internal/platform/sec"
)

type client struct {
	t       *testing.T
	handler http.Handler
	tokens  *sec.TokenService
}

func newClient(t *testing.T) *client {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "test")

	service, _ := newService()
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/collections", collection.NewHandler(service).Routes())

	return &client{t: t, handler: router, tokens: tokens}
}

func (c *client) do(method, path, userID, body string) (int, map[string]any) {
	c.t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		token, err := c.tokens.GenerateAccessToken(userID, userID, time.Hour)
		require.NoError(c.t, err)
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, request)

	var envelope map[string]any
	_ = json.Unmarshal(recorder.Body.Bytes(), &envelope)
	return recorder.Code, envelope
}

/*
TestHandler_Lifecycle drives create, publish, list and delete over HTTP.
*/
func TestHandler_Lifecycle(t *testing.T) {
	c := newClient(t)

	status, _ := c.do(http.MethodPost, "/collections", "", `{"title":"Menus"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, envelope := c.do(http.MethodPost, "/collections", owner, `{"title":"Menus","description":"Shanghai"}`)
	require.Equal(t, http.StatusCreated, status)
	id := envelope["data"].(map[string]any)["id"].(string)

	status, _ = c.do(http.MethodGet, "/collections/"+id, "", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodPost, "/collections/"+id+"/publish", stranger, `{"publish_flag":true}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodPost, "/collections/"+id+"/publish", owner, `{"publish_flag":true}`)
	require.Equal(t, http.StatusOK, status)

	status, envelope = c.do(http.MethodGet, "/collections/public?limit=5", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"], 1)
	assert.EqualValues(t, 1, envelope["meta"].(map[string]any)["total"])

	status, envelope = c.do(http.MethodPatch, "/collections/"+id, owner, `{"title":"Street food"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Street food", envelope["data"].(map[string]any)["title"])
	assert.Equal(t, "Shanghai", envelope["data"].(map[string]any)["description"])

	status, envelope = c.do(http.MethodGet, "/collections", owner, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"], 1)

	status, _ = c.do(http.MethodDelete, "/collections/"+id, owner, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, envelope = c.do(http.MethodGet, "/collections/"+id, owner, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope["code"])
}
