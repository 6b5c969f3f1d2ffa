// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"context"

	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/dberr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
)

const resourceCollection = "Collection"

// DocstoreRepository implements [Repository] on the document store.
type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (repository *DocstoreRepository) Create(context context.Context, collection *Collection) error {
	err := repository.store.Add(context, constants.KindCollection, collection.ID, collection)
	return dberr.Wrap(err, resourceCollection)
}

func (repository *DocstoreRepository) FindByID(context context.Context, id string) (*Collection, error) {
	var collection Collection
	if err := repository.store.Get(context, constants.KindCollection, id, &collection); err != nil {
		return nil, dberr.Wrap(err, resourceCollection)
	}
	return &collection, nil
}

func (repository *DocstoreRepository) ListByUser(context context.Context, userID string) ([]*Collection, error) {
	collections := []*Collection{}
	if err := repository.store.Query(context, constants.KindCollection, FieldUser, userID, &collections); err != nil {
		return nil, dberr.Wrap(err, resourceCollection)
	}
	return collections, nil
}

func (repository *DocstoreRepository) ListPublished(context context.Context) ([]*Collection, error) {
	collections := []*Collection{}
	if err := repository.store.Scan(context, constants.KindCollection, &collections, docstore.Eq(FieldPublishFlag, true)); err != nil {
		return nil, dberr.Wrap(err, resourceCollection)
	}
	return collections, nil
}

// Update writes every mutable attribute of collection.
func (repository *DocstoreRepository) Update(context context.Context, collection *Collection) error {
	err := repository.store.Update(context, constants.KindCollection, collection.ID, map[string]any{
		FieldTitle:         collection.Title,
		FieldDescription:   collection.Description,
		FieldImages:        collection.Images,
		FieldFeaturedImage: collection.FeaturedImage,
		FieldPublishFlag:   collection.PublishFlag,
	})
	return dberr.Wrap(err, resourceCollection)
}

func (repository *DocstoreRepository) Delete(context context.Context, id string) error {
	return dberr.Wrap(repository.store.Delete(context, constants.KindCollection, id), resourceCollection)
}
