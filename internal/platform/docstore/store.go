// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package docstore persists every LinguaPhoto record in a single keyed table.

Users, collections and images share one physical table. Each record carries a
kind discriminator that is set on write and validated on read, so a lookup of
an image id through the collection repository fails loudly instead of decoding
the wrong shape.

Records are stored as the JSON rendering of the domain struct. Equality
queries compare attribute values by their JSON encoding, which keeps the two
drivers (PostgreSQL JSONB and in-memory) in agreement.

Drivers:

  - [PostgresStore]: pgx/v5 over the 'documents' and 'document_uniques' tables.
  - [MemoryStore]: mutex-guarded maps for local development and tests.
*/
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// # Errors

var (
	// ErrNotFound is returned when no record exists for the id.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrDuplicate is returned when the id or a declared unique attribute is taken.
	ErrDuplicate = errors.New("docstore: duplicate document")

	// ErrKindMismatch is returned when the stored record has a different kind.
	ErrKindMismatch = errors.New("docstore: document kind mismatch")
)

// # Contracts

// Filter narrows a query to records whose attribute equals Value.
type Filter struct {
	Field string
	Value any
}

// Eq builds a [Filter].
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

/*
Store is the document store contract shared by every repository.

Destination arguments follow encoding/json rules: Get takes a pointer to a
struct, Query and Scan take a pointer to a slice. Results are returned in
insertion order.
*/
type Store interface {

	/*
		Add inserts a new record.

		Parameters:
		  - kind: Record discriminator (constants.Kind*)
		  - id: Record ID, unique across all kinds
		  - doc: Value rendered as the record body
		  - uniqueFields: Attribute names whose values must be unique within the kind

		Returns:
		  - error: ErrDuplicate if the id or a unique value is already taken
	*/
	Add(context context.Context, kind, id string, doc any, uniqueFields ...string) error

	/*
		Get loads one record into dst.

		Returns:
		  - error: ErrNotFound if absent, ErrKindMismatch if stored under another kind
	*/
	Get(context context.Context, kind, id string, dst any) error

	// Query loads every record of kind whose field equals value, narrowed by filters.
	Query(context context.Context, kind, field string, value any, dst any, filters ...Filter) error

	// Update merges the given attributes into an existing record.
	Update(context context.Context, kind, id string, fields map[string]any) error

	// Delete removes a record. Deleting a missing record returns ErrNotFound.
	Delete(context context.Context, kind, id string) error

	// Scan loads every record of kind matching all filters.
	Scan(context context.Context, kind string, dst any, filters ...Filter) error

	// Ping reports whether the backend is reachable.
	Ping(context context.Context) error
}

// # Helpers

// encodeBody renders doc as a JSON object.
func encodeBody(doc any) (map[string]json.RawMessage, []byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("docstore: encode document: %w", err)
	}

	var attributes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, nil, fmt.Errorf("docstore: document must encode as a JSON object: %w", err)
	}

	return attributes, raw, nil
}

// uniqueValues extracts the canonical values of the declared unique attributes.
func uniqueValues(attributes map[string]json.RawMessage, fields []string) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		raw, ok := attributes[field]
		if !ok {
			return nil, fmt.Errorf("docstore: unique attribute %q missing from document", field)
		}
		values[field] = string(compact(raw))
	}
	return values, nil
}

// conditions merges the primary equality and the filters into one attribute set.
func conditions(field string, value any, filters []Filter) []Filter {
	all := make([]Filter, 0, len(filters)+1)
	if field != "" {
		all = append(all, Filter{Field: field, Value: value})
	}
	return append(all, filters...)
}

// decodeList decodes raw bodies into a pointer to a slice.
func decodeList(bodies [][]byte, dst any) error {
	var buffer bytes.Buffer
	buffer.WriteByte('[')
	for index, body := range bodies {
		if index > 0 {
			buffer.WriteByte(',')
		}
		buffer.Write(body)
	}
	buffer.WriteByte(']')

	if err := json.Unmarshal(buffer.Bytes(), dst); err != nil {
		return fmt.Errorf("docstore: decode documents: %w", err)
	}
	return nil
}

func compact(raw []byte) []byte {
	var buffer bytes.Buffer
	if err := json.Compact(&buffer, raw); err != nil {
		return raw
	}
	return buffer.Bytes()
}
