// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/linguaphoto/internal/platform/migration"
)

/*
TestToPgx5DSN verifies the scheme rewrite expected by golang-migrate.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db"},
		{"postgresql://u:p@localhost/db?sslmode=disable", "pgx5://u:p@localhost/db?sslmode=disable"},
		{"pgx5://u@localhost/db", "pgx5://u@localhost/db"},
		{"host=localhost user=u", "host=localhost user=u"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
