// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between document store errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
)

// Wrap inspects a docstore error and wraps it into a meaningful [apperr.AppError].
// It hides storage details from the client while classifying the error type.
//
// A kind mismatch means an id of another record type was supplied, which the
// client sees as the named resource not existing.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrKindMismatch) {
		return apperr.NotFound(resource)
	}

	// 3. Unique claim taken
	if errors.Is(err, docstore.ErrDuplicate) {
		return apperr.Conflict(resource + " already exists")
	}

	// 4. Everything else becomes an Internal Server Error
	return apperr.Internal(err)
}
