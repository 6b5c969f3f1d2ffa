// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package objectstore stores uploaded photos and synthesized audio clips and
issues the time-limited URLs clients use to fetch them.

Keys are flat: '<uuid>.<ext>'. Reads never go through the API; every stored
object is reached through a signed URL, either a CDN URL signed with the
distribution's RSA key pair or an S3 presigned GET.

Drivers:

  - [S3Store]: aws-sdk-go-v2 against S3 or any S3-compatible endpoint.
  - [MemoryStore]: in-process map that also serves its objects over HTTP.
*/
package objectstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("objectstore: object not found")

// unknownExtension is used for uploads whose filename carries no extension.
const unknownExtension = "unknown"

// Store is the object storage contract used by the upload and translation flows.
type Store interface {

	// Put uploads body under key.
	Put(context context.Context, key string, body io.Reader, contentType string) error

	// Delete removes the object stored under key.
	Delete(context context.Context, key string) error

	// SignedURL returns a URL granting read access to key until now+ttl.
	SignedURL(context context.Context, key string, ttl time.Duration) (string, error)
}

// NewKey generates a fresh storage key preserving the extension of filename.
//
// Example:
//
//	NewKey("menu.JPG")  // "0192....jpg"
//	NewKey("scan")      // "0192....unknown"
func NewKey(filename string) string {
	extension := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if extension == "" {
		extension = unknownExtension
	}
	return uuid.New() + "." + extension
}

// objectURL joins a base URL and a key.
func objectURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}
