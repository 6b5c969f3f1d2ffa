// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package collection manages the user-owned albums photos are uploaded into.

A collection keeps the ordered list of its image ids. The list is appended to
on upload, shrunk on image delete and reordered on edit; it always holds each
id at most once.
*/
package collection

import "time"

// Collection is an ordered album of images owned by one user.
type Collection struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	UserID        string    `json:"user"`
	FeaturedImage string    `json:"featured_image"`
	PublishFlag   bool      `json:"publish_flag"`
	CreatedAt     time.Time `json:"created_at"`
}

// OwnedBy reports whether userID owns the collection.
func (collection *Collection) OwnedBy(userID string) bool {
	return userID != "" && collection.UserID == userID
}

// Global field names for validation and storage
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldImages        = "images"
	FieldUser          = "user"
	FieldFeaturedImage = "featured_image"
	FieldPublishFlag   = "publish_flag"
)

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 2000
)
