// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/queue"
)

// ErrAlreadyInFlight is returned when the image is already being translated.
var ErrAlreadyInFlight = apperr.Conflict("A translation of this image is already in progress")

// Dispatcher accepts translation requests from the API and queues them.
type Dispatcher struct {
	inflight InFlight
	queue    queue.Queue
	logger   *slog.Logger
}

// NewDispatcher constructs a new [Dispatcher].
func NewDispatcher(inflight InFlight, jobs queue.Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{inflight: inflight, queue: jobs, logger: logger}
}

/*
Submit marks the image in flight and queues its first attempt.

Returns:
  - error: ErrAlreadyInFlight when a run is pending or active, or transport errors
*/
func (dispatcher *Dispatcher) Submit(context context.Context, imageID, userID string) error {
	token, acquired, err := dispatcher.inflight.Acquire(context, imageID)
	if err != nil {
		return fmt.Errorf("translation_submit_failed: %w", err)
	}
	if !acquired {
		return ErrAlreadyInFlight
	}

	job := queue.Job{ImageID: imageID, UserID: userID, Attempt: 1, Token: token}
	if err := dispatcher.queue.Enqueue(context, job); err != nil {

		// The marker would otherwise block resubmission until it expires.
		if releaseErr := dispatcher.inflight.Release(contextWithoutCancel(context), imageID, token); releaseErr != nil {
			dispatcher.logger.Error("translation_release_failed",
				slog.String("image_id", imageID),
				slog.Any("error", releaseErr),
			)
		}
		return fmt.Errorf("translation_enqueue_failed: %w", err)
	}

	dispatcher.logger.Info("translation_queued",
		slog.String("image_id", imageID),
		slog.String("user_id", userID),
	)
	return nil
}

func contextWithoutCancel(parent context.Context) context.Context {
	return context.WithoutCancel(parent)
}
