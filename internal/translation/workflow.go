// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package translation turns an uploaded photo into transcribed, translated and
spoken segments.

Flow:

  - [Dispatcher.Submit] marks the image in flight and queues a job.
  - [Worker] pops jobs and runs the [Workflow].
  - [Workflow.Run] downloads the photo, transcribes it, synthesizes one clip
    per segment, stores the result and notifies the owner.

The segment list of an image is only ever written in full once a run has
completed; an interrupted run leaves the previous state untouched.
*/
package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/linguaphoto/internal/ai"
	"github.com/taibuivan/linguaphoto/internal/library/image"
	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/objectstore"
	"github.com/taibuivan/linguaphoto/internal/platform/queue"
	"github.com/taibuivan/linguaphoto/pkg/slice"
	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

const (
	// maxDownloadBytes caps the photo read back from object storage.
	maxDownloadBytes = 64 << 20

	// sourceURLTTL is the lifetime of the URL the worker downloads the photo through.
	sourceURLTTL = 15 * time.Minute
)

// # Contracts & Types

// Outcome classifies a workflow run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// ImageStore loads images and persists translation results.
type ImageStore interface {
	FindByID(context context.Context, id string) (*image.Image, error)
	SaveTranslation(context context.Context, id string, segments []image.Segment) error
}

// Transcriber reads text segments out of a photo.
type Transcriber interface {
	Transcribe(context context.Context, photo []byte, contentType string) ([]ai.Transcription, error)
}

// Synthesizer speaks a text segment.
type Synthesizer interface {
	Synthesize(context context.Context, text string) ([]byte, error)
}

// Notifier pushes a payload to a user's open connection.
type Notifier interface {
	Notify(userID string, payload any) bool
}

// Dependencies wires a [Workflow].
type Dependencies struct {
	Images      ImageStore
	Objects     objectstore.Store
	Transcriber Transcriber
	Synthesizer Synthesizer
	Notifier    Notifier
	HTTPClient  *http.Client

	// URLTTL is the lifetime of the signed audio URLs.
	URLTTL time.Duration
	Logger *slog.Logger
}

// Workflow translates one image per run.
type Workflow struct {
	images      ImageStore
	objects     objectstore.Store
	transcriber Transcriber
	synthesizer Synthesizer
	notifier    Notifier
	httpClient  *http.Client
	urlTTL      time.Duration
	logger      *slog.Logger
}

// NewWorkflow constructs a new [Workflow]. A nil HTTPClient uses http.DefaultClient.
func NewWorkflow(deps Dependencies) *Workflow {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Workflow{
		images:      deps.Images,
		objects:     deps.Objects,
		transcriber: deps.Transcriber,
		synthesizer: deps.Synthesizer,
		notifier:    deps.Notifier,
		httpClient:  httpClient,
		urlTTL:      deps.URLTTL,
		logger:      deps.Logger,
	}
}

// # Execution

/*
Run executes one translation of job.ImageID.

Description: A missing image or a non-2xx download is a silent skip. A failed
clip leaves that segment without audio while the others continue. Any other
failure leaves the image untouched and reports OutcomeFailed.

Returns:
  - Outcome: completed, skipped or failed
  - error: The cause of a skip or failure, for logging
*/
func (workflow *Workflow) Run(context context.Context, job queue.Job) (Outcome, error) {
	logger := workflow.logger.With(
		slog.String("image_id", job.ImageID),
		slog.String("user_id", job.UserID),
		slog.Int("attempt", job.Attempt),
	)

	// 1. Stored source URL
	target, err := workflow.images.FindByID(context, job.ImageID)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return OutcomeSkipped, err
		}
		return OutcomeFailed, fmt.Errorf("translation_load_failed: %w", err)
	}

	// 2. Original bytes, through a fresh URL since the recorded one may have expired
	source := target.ImageURL
	if target.ObjectKey != "" {
		source, err = workflow.objects.SignedURL(context, target.ObjectKey, sourceURLTTL)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("translation_sign_source_failed: %w", err)
		}
	}

	photo, contentType, err := workflow.download(context, source)
	if err != nil {
		var status *downloadStatusError
		if errors.As(err, &status) {
			logger.Warn("translation_download_rejected", slog.Int("status", status.code))
			return OutcomeSkipped, err
		}
		return OutcomeFailed, err
	}

	// 3. Transcription
	transcriptions, err := workflow.transcriber.Transcribe(context, photo, contentType)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("translation_transcribe_failed: %w", err)
	}

	// 4. One clip per segment, strictly in reading order
	segments := slice.Map(transcriptions, func(transcription ai.Transcription) image.Segment {
		return image.Segment{
			Text:        transcription.Text,
			Pinyin:      transcription.Pinyin,
			Translation: transcription.Translation,
		}
	})
	if segments == nil {
		segments = []image.Segment{}
	}

	for index := range segments {
		if err := context.Err(); err != nil {
			workflow.discardAudio(segments)
			return OutcomeFailed, err
		}

		key, url, err := workflow.speak(context, segments[index].Text)
		if err != nil {
			logger.Warn("translation_segment_audio_failed",
				slog.Int("segment", index),
				slog.Any("error", err),
			)
			continue
		}
		segments[index].AudioKey = key
		segments[index].AudioURL = url
	}

	// 5. Replace-all persist
	if err := workflow.images.SaveTranslation(context, job.ImageID, segments); err != nil {
		workflow.discardAudio(segments)
		return OutcomeFailed, fmt.Errorf("translation_save_failed: %w", err)
	}

	// Clips of a previous run are unreachable now.
	workflow.discardAudio(target.Transcriptions)

	target.IsTranslated = true
	target.Transcriptions = segments

	// 6. Owner notification, dropped when offline
	delivered := workflow.notifier.Notify(job.UserID, target)

	logger.Info("translation_completed",
		slog.Int("segments", len(segments)),
		slog.Bool("notified", delivered),
	)
	return OutcomeCompleted, nil
}

// downloadStatusError reports a non-2xx response for the source photo.
type downloadStatusError struct {
	code int
}

func (err *downloadStatusError) Error() string {
	return fmt.Sprintf("translation: source download returned status %d", err.code)
}

func (workflow *Workflow) download(context context.Context, url string) ([]byte, string, error) {
	request, err := http.NewRequestWithContext(context, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("translation_download_failed: %w", err)
	}

	response, err := workflow.httpClient.Do(request)
	if err != nil {
		return nil, "", fmt.Errorf("translation_download_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, "", &downloadStatusError{code: response.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("translation_download_failed: %w", err)
	}

	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return body, contentType, nil
}

// speak synthesizes text, stores the clip and returns its key and signed URL.
func (workflow *Workflow) speak(context context.Context, text string) (string, string, error) {
	audio, err := workflow.synthesizer.Synthesize(context, text)
	if err != nil {
		return "", "", err
	}

	key := uuid.New() + "." + constants.AudioExtension
	if err := workflow.objects.Put(context, key, bytes.NewReader(audio), constants.AudioContentType); err != nil {
		return "", "", err
	}

	url, err := workflow.objects.SignedURL(context, key, workflow.urlTTL)
	if err != nil {
		workflow.deleteObject(key)
		return "", "", err
	}

	return key, url, nil
}

// discardAudio removes the stored clips of segments, best effort.
func (workflow *Workflow) discardAudio(segments []image.Segment) {
	for _, segment := range segments {
		if segment.AudioKey != "" {
			workflow.deleteObject(segment.AudioKey)
		}
	}
}

func (workflow *Workflow) deleteObject(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := workflow.objects.Delete(ctx, key); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		workflow.logger.Warn("translation_audio_cleanup_failed", slog.String("key", key), slog.Any("error", err))
	}
}

const cleanupTimeout = 10 * time.Second
