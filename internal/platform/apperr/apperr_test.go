// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
)

/*
TestConstructors verifies status codes and codes of every constructor.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("Image"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", apperr.Unauthorized("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", apperr.Conflict("dup"), http.StatusConflict, "CONFLICT"},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"payment", apperr.PaymentRequired("pay"), http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED"},
		{"too_large", apperr.TooLarge("big"), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"upstream", apperr.Upstream("stripe", errors.New("card declined")), http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

/*
TestUpstream_AttachesMessage checks that the upstream message reaches the client text.
*/
func TestUpstream_AttachesMessage(t *testing.T) {
	err := apperr.Upstream("stripe", errors.New("card declined"))
	assert.Equal(t, "stripe request failed: card declined", err.Error())
}

/*
TestAs_TraversesWrapping verifies extraction through fmt.Errorf wrapping.
*/
func TestAs_TraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", apperr.NotFound("Collection"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "Collection not found", ae.Message)
	assert.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, "NOT_FOUND"))
	assert.False(t, apperr.HasCode(errors.New("plain"), "NOT_FOUND"))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
