// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue implements [Queue] on a Redis list.
type RedisQueue struct {
	client *redis.Client
	name   string
}

// NewRedisQueue binds a queue to the list called name.
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name}
}

// Enqueue implements [Queue].
func (queue *RedisQueue) Enqueue(context context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal translation job: %w", err)
	}

	if err := queue.client.LPush(context, queue.name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue translation job: %w", err)
	}
	return nil
}

// Dequeue implements [Queue].
func (queue *RedisQueue) Dequeue(context context.Context, timeout time.Duration) (*Job, error) {
	// BRPOP treats 0 as "block forever"; keep the wait bounded.
	if timeout < time.Second {
		timeout = time.Second
	}

	reply, err := queue.client.BRPop(context, timeout, queue.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if context.Err() != nil {
			return nil, context.Err()
		}
		return nil, fmt.Errorf("dequeue translation job: %w", err)
	}

	if len(reply) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply: %v", reply)
	}

	var job Job
	if err := json.Unmarshal([]byte(reply[1]), &job); err != nil {
		return nil, fmt.Errorf("decode translation job: %w", err)
	}
	if job.ImageID == "" {
		return nil, errors.New("translation job missing image_id")
	}
	return &job, nil
}

// Close implements [Queue]. The shared client is owned by the caller.
func (queue *RedisQueue) Close() error {
	return nil
}
