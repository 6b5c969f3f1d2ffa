// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import "context"

type Repository interface {
	Create(context context.Context, collection *Collection) error
	FindByID(context context.Context, id string) (*Collection, error)
	ListByUser(context context.Context, userID string) ([]*Collection, error)
	ListPublished(context context.Context) ([]*Collection, error)
	Update(context context.Context, collection *Collection) error
	Delete(context context.Context, id string) error
}
