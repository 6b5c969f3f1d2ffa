// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package queue carries translation jobs from the API to the translation workers.

The upload handler enqueues and returns; workers pop jobs with a bounded wait
so they can notice shutdown between polls.

Drivers:

  - [MemoryQueue]: buffered channel, single process.
  - [RedisQueue]: LPUSH / BRPOP on a Redis list, shared by every replica.
*/
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Enqueue after the queue has been closed.
var ErrClosed = errors.New("queue: closed")

// Job asks a worker to translate one image on behalf of its owner.
type Job struct {
	ImageID string `json:"image_id"`
	UserID  string `json:"user_id"`

	// Attempt counts deliveries, starting at 1.
	Attempt int `json:"attempt"`

	// Token identifies the in-flight marker taken at submission; a job whose
	// token no longer owns the marker has been superseded.
	Token string `json:"token"`
}

// Queue is the translation job transport.
type Queue interface {

	// Enqueue appends a job.
	Enqueue(context context.Context, job Job) error

	/*
		Dequeue waits up to timeout for the next job.

		Returns:
		  - *Job: nil when the wait elapsed without a job
		  - error: ctx.Err() when the context is cancelled
	*/
	Dequeue(context context.Context, timeout time.Duration) (*Job, error)

	// Close releases the transport.
	Close() error
}
