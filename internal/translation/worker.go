// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/linguaphoto/internal/platform/queue"
)

const (
	defaultPollInterval      = 2 * time.Second
	defaultHeartbeatInterval = 5 * time.Minute
	dequeueErrorBackoff      = time.Second
)

// WorkerOptions tunes a [Worker].
type WorkerOptions struct {
	// Concurrency is the number of jobs processed at once.
	Concurrency int

	// MaxAttempts bounds deliveries of a failing job; 1 disables retries.
	MaxAttempts int

	// JobTimeout bounds one run; zero means no limit.
	JobTimeout time.Duration

	// PollInterval is the longest a goroutine waits on an empty queue
	// before checking for shutdown.
	PollInterval time.Duration

	// HeartbeatInterval is how often a running job refreshes its in-flight
	// marker. It must be well below the marker's TTL.
	HeartbeatInterval time.Duration
}

// Worker drains the translation queue.
type Worker struct {
	queue    queue.Queue
	workflow *Workflow
	inflight InFlight
	options  WorkerOptions
	logger   *slog.Logger
}

// NewWorker constructs a new [Worker].
func NewWorker(jobs queue.Queue, workflow *Workflow, inflight InFlight, options WorkerOptions, logger *slog.Logger) *Worker {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}
	if options.PollInterval <= 0 {
		options.PollInterval = defaultPollInterval
	}
	if options.HeartbeatInterval <= 0 {
		options.HeartbeatInterval = defaultHeartbeatInterval
	}

	return &Worker{
		queue:    jobs,
		workflow: workflow,
		inflight: inflight,
		options:  options,
		logger:   logger,
	}
}

// Run processes jobs until ctx is cancelled or the queue is closed, then
// waits for in-progress jobs to return.
func (worker *Worker) Run(ctx context.Context) {
	worker.logger.Info("translation_workers_started", slog.Int("concurrency", worker.options.Concurrency))

	var wg sync.WaitGroup
	for slot := range worker.options.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.loop(ctx, slot)
		}()
	}
	wg.Wait()

	worker.logger.Info("translation_workers_stopped")
}

func (worker *Worker) loop(ctx context.Context, slot int) {
	for ctx.Err() == nil {
		job, err := worker.queue.Dequeue(ctx, worker.options.PollInterval)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return
			}

			worker.logger.Error("translation_dequeue_failed", slog.Int("slot", slot), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(dequeueErrorBackoff):
			}
			continue
		}

		if job != nil {
			worker.process(ctx, *job)
		}
	}
}

// process runs one job, then either re-queues it or releases its marker.
// A job whose token no longer owns the marker is dropped unrun: its marker
// expired and a later submission holds the image now.
func (worker *Worker) process(ctx context.Context, job queue.Job) {
	started := time.Now()

	owned, err := worker.inflight.Refresh(ctx, job.ImageID, job.Token)
	if err != nil {
		worker.logger.Warn("translation_ownership_check_failed", slog.String("image_id", job.ImageID), slog.Any("error", err))
	} else if !owned {
		worker.logger.Warn("translation_job_superseded", slog.String("image_id", job.ImageID), slog.Int("attempt", job.Attempt))
		return
	}

	stopHeartbeat := worker.heartbeat(ctx, job)
	outcome, err := worker.run(ctx, job)
	stopHeartbeat()

	logger := worker.logger.With(
		slog.String("image_id", job.ImageID),
		slog.String("outcome", string(outcome)),
		slog.Int("attempt", job.Attempt),
		slog.Duration("duration", time.Since(started)),
	)

	// Markers must be cleared even while shutting down.
	detached := context.WithoutCancel(ctx)

	if outcome == OutcomeFailed && job.Attempt < worker.options.MaxAttempts && ctx.Err() == nil {
		retry := job
		retry.Attempt++

		enqueueErr := worker.queue.Enqueue(ctx, retry)
		if enqueueErr == nil {
			logger.Warn("translation_retry_scheduled", slog.Any("error", err))
			return
		}
		logger.Error("translation_retry_enqueue_failed", slog.Any("error", enqueueErr))
	}

	if releaseErr := worker.inflight.Release(detached, job.ImageID, job.Token); releaseErr != nil {
		logger.Error("translation_release_failed", slog.Any("error", releaseErr))
	}

	switch outcome {
	case OutcomeCompleted:
		logger.Info("translation_job_done")
	case OutcomeSkipped:
		logger.Warn("translation_job_skipped", slog.Any("error", err))
	default:
		logger.Error("translation_job_failed", slog.Any("error", err))
	}
}

// heartbeat keeps the job's marker alive until the returned stop is called.
func (worker *Worker) heartbeat(ctx context.Context, job queue.Job) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(worker.options.HeartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				owned, err := worker.inflight.Refresh(ctx, job.ImageID, job.Token)
				switch {
				case err != nil:
					worker.logger.Warn("translation_heartbeat_failed", slog.String("image_id", job.ImageID), slog.Any("error", err))
				case !owned:
					worker.logger.Error("translation_marker_lost", slog.String("image_id", job.ImageID))
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// run applies the job timeout and turns a panicking run into a failure.
func (worker *Worker) run(ctx context.Context, job queue.Job) (outcome Outcome, err error) {
	if worker.options.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, worker.options.JobTimeout)
		defer cancel()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			outcome, err = OutcomeFailed, fmt.Errorf("translation: workflow panic: %v", recovered)
		}
	}()

	return worker.workflow.Run(ctx, job)
}
