// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/linguaphoto/pkg/slice"
)

func TestMapFilter(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, slice.Map([]string{"a", "b"}, strings.ToUpper))
	assert.Nil(t, slice.Map[string, string](nil, strings.ToUpper))
	assert.Equal(t, []int{2, 4}, slice.Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 }))
}

func TestRemove(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, slice.Remove([]string{"a", "b", "c", "b"}, "b"))
	assert.Equal(t, []string{}, slice.Remove([]string{"b"}, "b"))
	assert.Equal(t, []string{}, slice.Remove(nil, "b"))
}

func TestSameElements(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"reordered", []string{"a", "b", "c"}, []string{"c", "a", "b"}, true},
		{"empty", nil, []string{}, true},
		{"missing", []string{"a", "b"}, []string{"a"}, false},
		{"foreign", []string{"a", "b"}, []string{"a", "x"}, false},
		{"duplicated", []string{"a", "b"}, []string{"a", "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slice.SameElements(tt.a, tt.b))
		})
	}
}
