// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body        []byte
	contentType string
}

// MemoryStore keeps objects in process memory and serves them over HTTP.
//
// Mount it under the path of baseURL so the signed URLs it issues resolve.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
	signer  *CDNSigner
}

// NewMemoryStore creates an empty store. When signer is nil URLs are unsigned.
func NewMemoryStore(baseURL string, signer *CDNSigner) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
		signer:  signer,
	}
}

// Put implements [Store].
func (store *MemoryStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("objectstore: read body: %w", err)
	}

	store.mu.Lock()
	store.objects[key] = memoryObject{body: data, contentType: contentType}
	store.mu.Unlock()

	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, found := store.objects[key]; !found {
		return ErrNotFound
	}
	delete(store.objects, key)
	return nil
}

// SignedURL implements [Store].
func (store *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if store.signer != nil {
		return store.signer.Sign(key, ttl)
	}
	return objectURL(store.baseURL, key), nil
}

// Object returns a copy of the stored bytes and content type.
func (store *MemoryStore) Object(key string) ([]byte, string, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	object, found := store.objects[key]
	if !found {
		return nil, "", false
	}
	return bytes.Clone(object.body), object.contentType, true
}

// Keys lists stored keys in no particular order.
func (store *MemoryStore) Keys() []string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	keys := make([]string, 0, len(store.objects))
	for key := range store.objects {
		keys = append(keys, key)
	}
	return keys
}

// ServeHTTP serves GET /{key}; signature query parameters are ignored.
func (store *MemoryStore) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet && request.Method != http.MethodHead {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, contentType, found := store.Object(strings.TrimPrefix(request.URL.Path, "/"))
	if !found {
		http.NotFound(writer, request)
		return
	}

	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(body)
}
