// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a bounded in-process [Queue].
type MemoryQueue struct {
	jobs chan Job

	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates a queue holding up to capacity pending jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryQueue{jobs: make(chan Job, capacity)}
}

// Enqueue implements [Queue]. It blocks while the buffer is full.
func (queue *MemoryQueue) Enqueue(context context.Context, job Job) error {
	queue.mu.RLock()
	defer queue.mu.RUnlock()

	if queue.closed {
		return ErrClosed
	}

	select {
	case queue.jobs <- job:
		return nil
	case <-context.Done():
		return context.Err()
	}
}

// Dequeue implements [Queue].
func (queue *MemoryQueue) Dequeue(context context.Context, timeout time.Duration) (*Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job, ok := <-queue.jobs:
		if !ok {
			return nil, ErrClosed
		}
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-context.Done():
		return nil, context.Err()
	}
}

// Len reports the number of pending jobs.
func (queue *MemoryQueue) Len() int {
	return len(queue.jobs)
}

// Close implements [Queue]. Pending jobs can still be drained.
func (queue *MemoryQueue) Close() error {
	queue.mu.Lock()
	defer queue.mu.Unlock()

	if !queue.closed {
		queue.closed = true
		close(queue.jobs)
	}
	return nil
}
