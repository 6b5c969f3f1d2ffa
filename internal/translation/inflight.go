// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

// InFlight is the set of image ids currently being translated.
//
// Acquire is an atomic check-and-add, so two concurrent submissions of the
// same image cannot both win. Each acquisition is identified by a token; only
// its holder can refresh or release the marker, so a stale run never clears
// the marker of a newer one.
type InFlight interface {

	// Acquire adds imageID and returns the owner token, or acquired=false
	// when the image is already held.
	Acquire(context context.Context, imageID string) (token string, acquired bool, err error)

	// Release removes imageID if token still owns it. Releasing an absent or
	// foreign marker is not an error.
	Release(context context.Context, imageID, token string) error

	// Refresh extends the marker's lifetime and reports whether token still owns it.
	Refresh(context context.Context, imageID, token string) (bool, error)

	// Contains reports whether imageID is held.
	Contains(context context.Context, imageID string) (bool, error)
}

// # Memory Driver

// MemoryInFlight keeps the set in process memory. Markers never expire.
type MemoryInFlight struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryInFlight() *MemoryInFlight {
	return &MemoryInFlight{tokens: make(map[string]string)}
}

func (set *MemoryInFlight) Acquire(_ context.Context, imageID string) (string, bool, error) {
	set.mu.Lock()
	defer set.mu.Unlock()

	if _, held := set.tokens[imageID]; held {
		return "", false, nil
	}

	token := uuid.New()
	set.tokens[imageID] = token
	return token, true, nil
}

func (set *MemoryInFlight) Release(_ context.Context, imageID, token string) error {
	set.mu.Lock()
	defer set.mu.Unlock()

	if set.tokens[imageID] == token {
		delete(set.tokens, imageID)
	}
	return nil
}

func (set *MemoryInFlight) Refresh(_ context.Context, imageID, token string) (bool, error) {
	set.mu.Lock()
	defer set.mu.Unlock()

	current, held := set.tokens[imageID]
	return held && current == token, nil
}

func (set *MemoryInFlight) Contains(_ context.Context, imageID string) (bool, error) {
	set.mu.Lock()
	defer set.mu.Unlock()

	_, held := set.tokens[imageID]
	return held, nil
}

// # Redis Driver

// Compare-and-delete and compare-and-expire: the marker is only touched while
// it still carries the caller's token.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// RedisInFlight stores one key per image, shared by every replica.
// Keys expire after ttl so a crashed worker cannot pin an image forever;
// live runs keep theirs alive through Refresh.
type RedisInFlight struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisInFlight(client *redis.Client, prefix string, ttl time.Duration) *RedisInFlight {
	return &RedisInFlight{client: client, prefix: prefix, ttl: ttl}
}

func (set *RedisInFlight) Acquire(context context.Context, imageID string) (string, bool, error) {
	token := uuid.New()

	acquired, err := set.client.SetNX(context, set.prefix+imageID, token, set.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("inflight_acquire_failed: %w", err)
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

func (set *RedisInFlight) Release(context context.Context, imageID, token string) error {
	if err := releaseScript.Run(context, set.client, []string{set.prefix + imageID}, token).Err(); err != nil {
		return fmt.Errorf("inflight_release_failed: %w", err)
	}
	return nil
}

func (set *RedisInFlight) Refresh(context context.Context, imageID, token string) (bool, error) {
	extended, err := refreshScript.Run(context, set.client, []string{set.prefix + imageID}, token, set.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("inflight_refresh_failed: %w", err)
	}
	return extended == 1, nil
}

func (set *RedisInFlight) Contains(context context.Context, imageID string) (bool, error) {
	count, err := set.client.Exists(context, set.prefix+imageID).Result()
	if err != nil {
		return false, fmt.Errorf("inflight_contains_failed: %w", err)
	}
	return count > 0, nil
}
