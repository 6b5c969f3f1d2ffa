// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/dberr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
)

/*
TestWrap verifies the mapping of docstore sentinels onto HTTP-facing errors.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not_found", docstore.ErrNotFound, http.StatusNotFound},
		{"wrapped_not_found", fmt.Errorf("repo: %w", docstore.ErrNotFound), http.StatusNotFound},
		{"kind_mismatch", docstore.ErrKindMismatch, http.StatusNotFound},
		{"duplicate", docstore.ErrDuplicate, http.StatusConflict},
		{"already_app_error", apperr.Forbidden("no"), http.StatusForbidden},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := apperr.As(dberr.Wrap(tt.err, "Image"))
			require.NotNil(t, appErr)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Image"))
	assert.Equal(t, "Image not found", dberr.Wrap(docstore.ErrNotFound, "Image").Error())
}
