// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore implements [Store] using PostgreSQL JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a new [PostgresStore].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// # Write Operations

// Add implements [Store].
func (repository *PostgresStore) Add(context context.Context, kind, id string, doc any, uniqueFields ...string) error {
	attributes, body, err := encodeBody(doc)
	if err != nil {
		return err
	}

	values, err := uniqueValues(attributes, uniqueFields)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context,
			`INSERT INTO documents (id, kind, body) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			id, kind, body,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrDuplicate
		}

		for field, value := range values {
			if _, err := tx.Exec(context,
				`INSERT INTO document_uniques (kind, field, value, document_id) VALUES ($1, $2, $3, $4)`,
				kind, field, value, id,
			); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrDuplicate) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("postgres_docstore_add_failed: %w", err)
	}

	return nil
}

// Update implements [Store].
func (repository *PostgresStore) Update(context context.Context, kind, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore: encode attributes: %w", err)
	}

	tag, err := repository.pool.Exec(context,
		`UPDATE documents SET body = body || $3::jsonb, updated_at = now() WHERE id = $1 AND kind = $2`,
		id, kind, patch,
	)
	if err != nil {
		return fmt.Errorf("postgres_docstore_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.missing(context, kind, id)
	}

	return nil
}

// Delete implements [Store]. Unique claims are released by ON DELETE CASCADE.
func (repository *PostgresStore) Delete(context context.Context, kind, id string) error {
	tag, err := repository.pool.Exec(context, `DELETE FROM documents WHERE id = $1 AND kind = $2`, id, kind)
	if err != nil {
		return fmt.Errorf("postgres_docstore_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.missing(context, kind, id)
	}

	return nil
}

// # Read Operations

// Get implements [Store].
func (repository *PostgresStore) Get(context context.Context, kind, id string, dst any) error {
	var storedKind string
	var body []byte

	err := repository.pool.QueryRow(context, `SELECT kind, body FROM documents WHERE id = $1`, id).Scan(&storedKind, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("postgres_docstore_get_failed: %w", err)
	}

	if storedKind != kind {
		return ErrKindMismatch
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("docstore: decode document: %w", err)
	}
	return nil
}

// Query implements [Store].
func (repository *PostgresStore) Query(context context.Context, kind, field string, value any, dst any, filters ...Filter) error {
	return repository.find(context, kind, conditions(field, value, filters), dst)
}

// Scan implements [Store].
func (repository *PostgresStore) Scan(context context.Context, kind string, dst any, filters ...Filter) error {
	return repository.find(context, kind, filters, dst)
}

// find matches scalar attributes with JSONB containment, served by the GIN index.
func (repository *PostgresStore) find(context context.Context, kind string, filters []Filter, dst any) error {
	containment := make(map[string]any, len(filters))
	for _, filter := range filters {
		containment[filter.Field] = filter.Value
	}

	pattern, err := json.Marshal(containment)
	if err != nil {
		return fmt.Errorf("docstore: encode filters: %w", err)
	}

	rows, err := repository.pool.Query(context,
		`SELECT body FROM documents WHERE kind = $1 AND body @> $2::jsonb ORDER BY created_at, id`,
		kind, pattern,
	)
	if err != nil {
		return fmt.Errorf("postgres_docstore_query_failed: %w", err)
	}

	bodies, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return fmt.Errorf("postgres_docstore_scan_failed: %w", err)
	}

	return decodeList(bodies, dst)
}

// Ping implements [Store].
func (repository *PostgresStore) Ping(context context.Context) error {
	return repository.pool.Ping(context)
}

// # Helpers

// missing distinguishes an absent record from one stored under another kind.
func (repository *PostgresStore) missing(context context.Context, kind, id string) error {
	var storedKind string
	err := repository.pool.QueryRow(context, `SELECT kind FROM documents WHERE id = $1`, id).Scan(&storedKind)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres_docstore_lookup_failed: %w", err)
	}
	if storedKind != kind {
		return ErrKindMismatch
	}
	return ErrNotFound
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
