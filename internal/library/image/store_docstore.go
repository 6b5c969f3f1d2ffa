// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"time"

	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/dberr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
)

const resourceImage = "Image"

// segmentDocument is the stored shape of a [Segment]; it keeps the clip key.
type segmentDocument struct {
	Text        string `json:"text"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
	AudioURL    string `json:"audio_url"`
	AudioKey    string `json:"audio_key,omitempty"`
}

// imageDocument is the stored shape of an [Image]; unlike the API shape it keeps storage keys.
type imageDocument struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user"`
	CollectionID   string            `json:"collection"`
	ImageURL       string            `json:"image_url"`
	ObjectKey      string            `json:"object_key"`
	IsTranslated   bool              `json:"is_translated"`
	Transcriptions []segmentDocument `json:"transcriptions"`
	CreatedAt      time.Time         `json:"created_at"`
}

func toSegmentDocuments(segments []Segment) []segmentDocument {
	documents := make([]segmentDocument, 0, len(segments))
	for _, segment := range segments {
		documents = append(documents, segmentDocument(segment))
	}
	return documents
}

func toDocument(image *Image) imageDocument {
	return imageDocument{
		ID:             image.ID,
		UserID:         image.UserID,
		CollectionID:   image.CollectionID,
		ImageURL:       image.ImageURL,
		ObjectKey:      image.ObjectKey,
		IsTranslated:   image.IsTranslated,
		Transcriptions: toSegmentDocuments(image.Transcriptions),
		CreatedAt:      image.CreatedAt,
	}
}

func (document imageDocument) toImage() *Image {
	segments := make([]Segment, 0, len(document.Transcriptions))
	for _, segment := range document.Transcriptions {
		segments = append(segments, Segment(segment))
	}

	return &Image{
		ID:             document.ID,
		UserID:         document.UserID,
		CollectionID:   document.CollectionID,
		ImageURL:       document.ImageURL,
		ObjectKey:      document.ObjectKey,
		IsTranslated:   document.IsTranslated,
		Transcriptions: segments,
		CreatedAt:      document.CreatedAt,
	}
}

// DocstoreRepository implements [Repository] on the document store.
type DocstoreRepository struct {
	store docstore.Store
}

// NewDocstoreRepository constructs a new [DocstoreRepository].
func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (repository *DocstoreRepository) Create(context context.Context, image *Image) error {
	if image.Transcriptions == nil {
		image.Transcriptions = []Segment{}
	}
	err := repository.store.Add(context, constants.KindImage, image.ID, toDocument(image))
	return dberr.Wrap(err, resourceImage)
}

func (repository *DocstoreRepository) FindByID(context context.Context, id string) (*Image, error) {
	var document imageDocument
	if err := repository.store.Get(context, constants.KindImage, id, &document); err != nil {
		return nil, dberr.Wrap(err, resourceImage)
	}
	return document.toImage(), nil
}

func (repository *DocstoreRepository) ListByCollection(context context.Context, collectionID string) ([]*Image, error) {
	var documents []imageDocument
	if err := repository.store.Query(context, constants.KindImage, FieldCollection, collectionID, &documents); err != nil {
		return nil, dberr.Wrap(err, resourceImage)
	}

	images := make([]*Image, 0, len(documents))
	for _, document := range documents {
		images = append(images, document.toImage())
	}
	return images, nil
}

// SaveTranslation writes both attributes in a single update so readers never
// observe a translated image with a partial segment list.
func (repository *DocstoreRepository) SaveTranslation(context context.Context, id string, segments []Segment) error {
	err := repository.store.Update(context, constants.KindImage, id, map[string]any{
		FieldIsTranslated:   true,
		FieldTranscriptions: toSegmentDocuments(segments),
	})
	return dberr.Wrap(err, resourceImage)
}

func (repository *DocstoreRepository) Delete(context context.Context, id string) error {
	return dberr.Wrap(repository.store.Delete(context, constants.KindImage, id), resourceImage)
}
