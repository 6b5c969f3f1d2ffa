// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type memoryRecord struct {
	kind    string
	body    map[string]json.RawMessage
	seq     uint64
	uniques map[string]string
}

// MemoryStore is an in-process [Store] guarded by a single mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	uniques map[string]string
	seq     uint64
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memoryRecord),
		uniques: make(map[string]string),
	}
}

func uniqueKey(kind, field, value string) string {
	return kind + "\x00" + field + "\x00" + value
}

// Add implements [Store].
func (store *MemoryStore) Add(_ context.Context, kind, id string, doc any, uniqueFields ...string) error {
	attributes, _, err := encodeBody(doc)
	if err != nil {
		return err
	}

	values, err := uniqueValues(attributes, uniqueFields)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.records[id]; exists {
		return ErrDuplicate
	}
	for field, value := range values {
		if _, taken := store.uniques[uniqueKey(kind, field, value)]; taken {
			return ErrDuplicate
		}
	}

	store.seq++
	store.records[id] = &memoryRecord{kind: kind, body: attributes, seq: store.seq, uniques: values}
	for field, value := range values {
		store.uniques[uniqueKey(kind, field, value)] = id
	}

	return nil
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, kind, id string, dst any) error {
	store.mu.RLock()
	record, found := store.records[id]
	var body []byte
	var err error
	if found {
		body, err = json.Marshal(record.body)
	}
	store.mu.RUnlock()

	if !found {
		return ErrNotFound
	}
	if record.kind != kind {
		return ErrKindMismatch
	}
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("docstore: decode document: %w", err)
	}
	return nil
}

// Query implements [Store].
func (store *MemoryStore) Query(_ context.Context, kind, field string, value any, dst any, filters ...Filter) error {
	return store.find(kind, conditions(field, value, filters), dst)
}

// Scan implements [Store].
func (store *MemoryStore) Scan(_ context.Context, kind string, dst any, filters ...Filter) error {
	return store.find(kind, filters, dst)
}

func (store *MemoryStore) find(kind string, filters []Filter, dst any) error {
	wanted := make(map[string][]byte, len(filters))
	for _, filter := range filters {
		raw, err := json.Marshal(filter.Value)
		if err != nil {
			return fmt.Errorf("docstore: encode filter %q: %w", filter.Field, err)
		}
		wanted[filter.Field] = raw
	}

	store.mu.RLock()
	matches := make([]*memoryRecord, 0)
	for _, record := range store.records {
		if record.kind == kind && matchesAll(record.body, wanted) {
			matches = append(matches, record)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })

	bodies := make([][]byte, 0, len(matches))
	for _, record := range matches {
		body, err := json.Marshal(record.body)
		if err != nil {
			store.mu.RUnlock()
			return fmt.Errorf("docstore: encode document: %w", err)
		}
		bodies = append(bodies, body)
	}
	store.mu.RUnlock()

	return decodeList(bodies, dst)
}

func matchesAll(body map[string]json.RawMessage, wanted map[string][]byte) bool {
	for field, expected := range wanted {
		actual, ok := body[field]
		if !ok || !bytes.Equal(compact(actual), compact(expected)) {
			return false
		}
	}
	return true
}

// Update implements [Store].
func (store *MemoryStore) Update(_ context.Context, kind, id string, fields map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(fields))
	for field, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("docstore: encode attribute %q: %w", field, err)
		}
		encoded[field] = raw
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	record, found := store.records[id]
	if !found {
		return ErrNotFound
	}
	if record.kind != kind {
		return ErrKindMismatch
	}

	// Copy-on-write so a concurrent reader never observes a half-applied merge.
	merged := make(map[string]json.RawMessage, len(record.body)+len(encoded))
	for field, raw := range record.body {
		merged[field] = raw
	}
	for field, raw := range encoded {
		merged[field] = raw
	}
	record.body = merged

	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, kind, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	record, found := store.records[id]
	if !found {
		return ErrNotFound
	}
	if record.kind != kind {
		return ErrKindMismatch
	}

	for field, value := range record.uniques {
		delete(store.uniques, uniqueKey(kind, field, value))
	}
	delete(store.records, id)

	return nil
}

// Ping implements [Store].
func (store *MemoryStore) Ping(context.Context) error {
	return nil
}
