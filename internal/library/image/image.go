// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package image handles photo uploads and the per-photo transcription record.

An uploaded photo is stored under a fresh object key, recorded with a
long-lived signed URL and appended to its collection. Translation then runs in
the background; when it completes the segment list is replaced as a whole.

Architecture:

  - Service: Upload validation, visibility, delete with object cleanup.
  - Repository: Image records on the document store.
  - Translator: Submission of background translation (implemented elsewhere).
*/
package image

import "time"

// # Domain Entities

// Segment is one transcribed line of a photo with its reading and audio.
type Segment struct {
	Text        string `json:"text"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
	AudioURL    string `json:"audio_url"`

	// AudioKey is the storage key of the synthesized clip, kept for cleanup.
	// It is persisted but never rendered.
	AudioKey string `json:"-"`
}

// Image is an uploaded photo and its transcription.
type Image struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user"`
	CollectionID   string    `json:"collection"`
	ImageURL       string    `json:"image_url"`
	ObjectKey      string    `json:"-"`
	IsTranslated   bool      `json:"is_translated"`
	Transcriptions []Segment `json:"transcriptions"`
	CreatedAt      time.Time `json:"created_at"`
}

// OwnedBy reports whether userID uploaded the image.
func (image *Image) OwnedBy(userID string) bool {
	return userID != "" && image.UserID == userID
}

// objectKeys lists every stored object belonging to the image.
func (image *Image) objectKeys() []string {
	keys := []string{image.ObjectKey}
	for _, segment := range image.Transcriptions {
		if segment.AudioKey != "" {
			keys = append(keys, segment.AudioKey)
		}
	}
	return keys
}

// # Field Identifiers

const (
	FieldFile           = "file"
	FieldCollection     = "collection"
	FieldCollectionID   = "collection_id"
	FieldIsTranslated   = "is_translated"
	FieldTranscriptions = "transcriptions"
)
