// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/linguaphoto/pkg/pagination"
)

/*
TestFromRequest verifies clamping of query parameters.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: 20}},
		{"?page=3&limit=5", pagination.Params{Page: 3, Limit: 5}},
		{"?page=-2&limit=500", pagination.Params{Page: 1, Limit: 20}},
		{"?page=abc&limit=x", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/collections/public"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

/*
TestParams_Window verifies slice bounds at and past the end of a list.
*/
func TestParams_Window(t *testing.T) {
	tests := []struct {
		params     pagination.Params
		total      int
		start, end int
	}{
		{pagination.Params{Page: 1, Limit: 10}, 25, 0, 10},
		{pagination.Params{Page: 3, Limit: 10}, 25, 20, 25},
		{pagination.Params{Page: 4, Limit: 10}, 25, 25, 25},
		{pagination.Params{Page: 1, Limit: 10}, 0, 0, 0},
	}

	for _, tt := range tests {
		start, end := tt.params.Window(tt.total)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}

	assert.Equal(t, 3, pagination.NewMeta(1, 10, 25).TotalPages)
}
