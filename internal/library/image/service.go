// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"log/slog"
	"time"

	// Decoders registered for dimension checks.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/taibuivan/linguaphoto/internal/library/collection"
	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/objectstore"
	"github.com/taibuivan/linguaphoto/internal/platform/validate"
	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

// # Contracts & Types

// Collections is the collection behavior the image flows depend on.
type Collections interface {
	Get(context context.Context, viewerID, id string) (*collection.Collection, error)
	Owned(context context.Context, userID, id string) (*collection.Collection, error)
	AddImage(context context.Context, id, imageID string) error
	RemoveImage(context context.Context, id, imageID string) error
}

// Translator submits an image for background translation.
type Translator interface {
	Submit(context context.Context, imageID, userID string) error
}

// Options holds upload limits and URL lifetime.
type Options struct {
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int

	// URLTTL is how long the signed URL recorded on upload stays valid.
	URLTTL time.Duration
}

// Service implements the image use cases.
type Service struct {
	repo        Repository
	objects     objectstore.Store
	collections Collections
	translator  Translator
	options     Options
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	repo Repository,
	objects objectstore.Store,
	collections Collections,
	translator Translator,
	options Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		objects:     objects,
		collections: collections,
		translator:  translator,
		options:     options,
		logger:      logger,
	}
}

// MaxBytes is the upload size limit.
func (service *Service) MaxBytes() int64 {
	return service.options.MaxBytes
}

// # Upload

// UploadInput is one photo received from a client.
type UploadInput struct {
	CollectionID string
	Filename     string
	ContentType  string
	Body         []byte
}

/*
Upload stores a photo, appends it to its collection and queues translation.

Description: Returns as soon as the image is recorded; translation runs in
the background and its result arrives over the notification channel. A failed
submission is logged and the client can retry through Translate.

Parameters:
  - context: context.Context
  - userID: string (uploader, must own the collection)
  - input: UploadInput

Returns:
  - *Image: The recorded image, not yet translated
  - error: ValidationError, TooLarge, Forbidden, NotFound or Upstream
*/
func (service *Service) Upload(context context.Context, userID string, input UploadInput) (*Image, error) {
	if err := service.validateUpload(input); err != nil {
		return nil, err
	}

	if _, err := service.collections.Owned(context, userID, input.CollectionID); err != nil {
		return nil, err
	}

	// 1. Original bytes
	key := objectstore.NewKey(input.Filename)
	if err := service.objects.Put(context, key, bytes.NewReader(input.Body), input.ContentType); err != nil {
		return nil, apperr.Upstream("object storage", err)
	}

	imageURL, err := service.objects.SignedURL(context, key, service.options.URLTTL)
	if err != nil {
		service.discardObjects(context, key)
		return nil, apperr.Upstream("object storage", err)
	}

	// 2. Record
	image := &Image{
		ID:             uuid.New(),
		UserID:         userID,
		CollectionID:   input.CollectionID,
		ImageURL:       imageURL,
		ObjectKey:      key,
		Transcriptions: []Segment{},
		CreatedAt:      time.Now().UTC(),
	}

	if err := service.repo.Create(context, image); err != nil {
		service.discardObjects(context, key)
		return nil, err
	}

	// 3. Parent list; undo the record if the collection vanished meanwhile
	if err := service.collections.AddImage(context, input.CollectionID, image.ID); err != nil {
		if deleteErr := service.repo.Delete(context, image.ID); deleteErr != nil {
			service.logger.Error("image_upload_rollback_failed",
				slog.String("image_id", image.ID),
				slog.Any("error", deleteErr),
			)
		}
		service.discardObjects(context, key)
		return nil, err
	}

	service.logger.Info("image_uploaded",
		slog.String("image_id", image.ID),
		slog.String("collection_id", input.CollectionID),
		slog.String("user_id", userID),
		slog.Int("bytes", len(input.Body)),
	)

	// 4. Background translation
	if err := service.translator.Submit(context, image.ID, userID); err != nil {
		service.logger.Warn("image_translation_submit_failed",
			slog.String("image_id", image.ID),
			slog.Any("error", err),
		)
	}

	return image, nil
}

func (service *Service) validateUpload(input UploadInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldCollectionID, input.CollectionID).
		Required(FieldFile, input.Filename).
		Prefix(FieldFile, input.ContentType, "image/", "Must be an image")

	if err := validator.Err(); err != nil {
		return err
	}

	if int64(len(input.Body)) > service.options.MaxBytes {
		return apperr.TooLarge(fmt.Sprintf("File size exceeds %d bytes", service.options.MaxBytes))
	}

	config, _, err := stdimage.DecodeConfig(bytes.NewReader(input.Body))
	if err != nil {
		return validate.RequiredError(FieldFile, "Must be a PNG, JPEG, WEBP or GIF image")
	}

	if config.Width > service.options.MaxWidth {
		return validate.RequiredError(FieldFile, fmt.Sprintf("File width exceeds %d pixels", service.options.MaxWidth))
	}
	if config.Height > service.options.MaxHeight {
		return validate.RequiredError(FieldFile, fmt.Sprintf("File height exceeds %d pixels", service.options.MaxHeight))
	}

	return nil
}

// # Queries

// Get returns an image visible to viewerID: its owner, or anyone when the
// parent collection is published.
func (service *Service) Get(context context.Context, viewerID, id string) (*Image, error) {
	image, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if image.OwnedBy(viewerID) {
		return image, nil
	}

	if _, err := service.collections.Get(context, viewerID, image.CollectionID); err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Forbidden("Image is private")
		}
		return nil, err
	}

	return image, nil
}

// List returns the images of a visible collection in the collection's order.
func (service *Service) List(context context.Context, viewerID, collectionID string) ([]*Image, error) {
	if collectionID == "" {
		return nil, validate.RequiredError(FieldCollectionID, "This field is required")
	}

	parent, err := service.collections.Get(context, viewerID, collectionID)
	if err != nil {
		return nil, err
	}

	images, err := service.repo.ListByCollection(context, collectionID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Image, len(images))
	for _, image := range images {
		byID[image.ID] = image
	}

	ordered := make([]*Image, 0, len(images))
	for _, id := range parent.Images {
		if image, found := byID[id]; found {
			ordered = append(ordered, image)
		}
	}

	return ordered, nil
}

// # Mutations

// Delete removes an owned image, drops it from its collection and cleans up storage.
func (service *Service) Delete(context context.Context, userID, id string) error {
	image, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !image.OwnedBy(userID) {
		return apperr.Forbidden("You do not own this image")
	}

	if err := service.collections.RemoveImage(context, image.CollectionID, id); err != nil && !apperr.HasCode(err, "NOT_FOUND") {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.discardObjects(context, image.objectKeys()...)
	service.logger.Warn("image_deleted", slog.String("image_id", id), slog.String("user_id", userID))
	return nil
}

// DeleteImages removes images of a collection that is itself being deleted.
// Already missing records are skipped.
func (service *Service) DeleteImages(context context.Context, imageIDs []string) error {
	for _, id := range imageIDs {
		image, err := service.repo.FindByID(context, id)
		if apperr.HasCode(err, "NOT_FOUND") {
			continue
		}
		if err != nil {
			return err
		}

		if err := service.repo.Delete(context, id); err != nil && !apperr.HasCode(err, "NOT_FOUND") {
			return err
		}

		service.discardObjects(context, image.objectKeys()...)
	}
	return nil
}

// Translate submits an owned image for (re)translation.
func (service *Service) Translate(context context.Context, userID, id string) error {
	image, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !image.OwnedBy(userID) {
		return apperr.Forbidden("You do not own this image")
	}

	return service.translator.Submit(context, id, userID)
}

// discardObjects deletes stored objects best effort; failures only leak storage.
func (service *Service) discardObjects(context context.Context, keys ...string) {
	for _, key := range keys {
		if err := service.objects.Delete(context, key); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
			service.logger.Warn("image_object_cleanup_failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
}
