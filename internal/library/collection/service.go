// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/validate"
	"github.com/taibuivan/linguaphoto/pkg/pagination"
	"github.com/taibuivan/linguaphoto/pkg/pointer"
	"github.com/taibuivan/linguaphoto/pkg/slice"
	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

// ImageRemover deletes the images of a collection being deleted.
// It runs under the service lock and must not call back into [Service].
type ImageRemover interface {
	DeleteImages(context context.Context, imageIDs []string) error
}

type Service struct {
	repo   Repository
	images ImageRemover
	logger *slog.Logger

	// mu serializes read-modify-write cycles on image lists.
	mu sync.Mutex
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetImageRemover wires the image service once both services exist.
func (service *Service) SetImageRemover(images ImageRemover) {
	service.images = images
}

// # Queries

func (service *Service) ListMine(context context.Context, userID string) ([]*Collection, error) {
	return service.repo.ListByUser(context, userID)
}

// ListPublic returns one page of published collections in creation order.
func (service *Service) ListPublic(context context.Context, params pagination.Params) ([]*Collection, int, error) {
	collections, err := service.repo.ListPublished(context)
	if err != nil {
		return nil, 0, err
	}

	start, end := params.Window(len(collections))
	return collections[start:end], len(collections), nil
}

/*
Get returns a collection visible to viewerID.

Description: Published collections are readable by anyone, private ones
only by their owner. viewerID is empty for anonymous requests.
*/
func (service *Service) Get(context context.Context, viewerID, id string) (*Collection, error) {
	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !collection.PublishFlag && !collection.OwnedBy(viewerID) {
		return nil, apperr.Forbidden("Collection is private")
	}

	return collection, nil
}

// Owned returns the collection when userID owns it, Forbidden otherwise.
func (service *Service) Owned(context context.Context, userID, id string) (*Collection, error) {
	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !collection.OwnedBy(userID) {
		return nil, apperr.Forbidden("You do not own this collection")
	}

	return collection, nil
}

// # Mutations

type CreateInput struct {
	Title       string
	Description string
}

func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Collection, error) {
	input.Title = strings.TrimSpace(input.Title)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, TitleMaxLength).
		MaxLen(FieldDescription, input.Description, DescriptionMaxLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	collection := &Collection{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Images:      []string{},
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := service.repo.Create(context, collection); err != nil {
		return nil, err
	}

	service.logger.Info("collection_created",
		slog.String("collection_id", collection.ID),
		slog.String("user_id", userID),
	)
	return collection, nil
}

// UpdateInput holds a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	Title         *string
	Description   *string
	FeaturedImage *string

	// Images reorders the collection; it must be a permutation of the current list.
	Images *[]string
}

func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Collection, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	collection, err := service.Owned(context, userID, id)
	if err != nil {
		return nil, err
	}

	collection.Title = strings.TrimSpace(pointer.Fallback(input.Title, collection.Title))
	collection.Description = pointer.Fallback(input.Description, collection.Description)
	images := pointer.Fallback(input.Images, collection.Images)
	featured := pointer.Fallback(input.FeaturedImage, collection.FeaturedImage)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, collection.Title).
		MaxLen(FieldTitle, collection.Title, TitleMaxLength).
		MaxLen(FieldDescription, collection.Description, DescriptionMaxLength).
		Custom(FieldImages, !slice.SameElements(collection.Images, images), "Must be a reordering of the current images").
		Custom(FieldFeaturedImage, featured != "" && !slices.Contains(collection.Images, featured), "Must be an image of this collection")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	collection.Images = images
	collection.FeaturedImage = featured

	if err := service.repo.Update(context, collection); err != nil {
		return nil, err
	}

	service.logger.Info("collection_updated", slog.String("collection_id", id))
	return collection, nil
}

func (service *Service) SetPublish(context context.Context, userID, id string, publish bool) (*Collection, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	collection, err := service.Owned(context, userID, id)
	if err != nil {
		return nil, err
	}

	collection.PublishFlag = publish
	if err := service.repo.Update(context, collection); err != nil {
		return nil, err
	}

	service.logger.Info("collection_publish_changed",
		slog.String("collection_id", id),
		slog.Bool("publish_flag", publish),
	)
	return collection, nil
}

// Delete removes the collection together with its images.
//
// The lock is held until the record is gone, so an upload racing the delete
// either lands in the cascaded list or fails to attach and rolls back.
func (service *Service) Delete(context context.Context, userID, id string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	collection, err := service.Owned(context, userID, id)
	if err != nil {
		return err
	}

	if service.images != nil && len(collection.Images) > 0 {
		if err := service.images.DeleteImages(context, collection.Images); err != nil {
			return fmt.Errorf("collection_service_delete_images_failed: %w", err)
		}
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("collection_deleted",
		slog.String("collection_id", id),
		slog.Int("images", len(collection.Images)),
	)
	return nil
}

// # Image Index

// AddImage appends imageID to the collection unless it is already listed.
func (service *Service) AddImage(context context.Context, id, imageID string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if slices.Contains(collection.Images, imageID) {
		return nil
	}

	collection.Images = append(collection.Images, imageID)
	return service.repo.Update(context, collection)
}

// RemoveImage drops imageID from the collection and clears it as featured image.
func (service *Service) RemoveImage(context context.Context, id, imageID string) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	collection, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !slices.Contains(collection.Images, imageID) && collection.FeaturedImage != imageID {
		return nil
	}

	collection.Images = slice.Remove(collection.Images, imageID)
	if collection.FeaturedImage == imageID {
		collection.FeaturedImage = ""
	}

	return service.repo.Update(context, collection)
}
