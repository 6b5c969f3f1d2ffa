// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import "context"

// Repository persists image records.
type Repository interface {
	Create(context context.Context, image *Image) error
	FindByID(context context.Context, id string) (*Image, error)
	ListByCollection(context context.Context, collectionID string) ([]*Image, error)

	// SaveTranslation marks the image translated and replaces its segment list.
	SaveTranslation(context context.Context, id string, segments []Segment) error

	Delete(context context.Context, id string) error
}
