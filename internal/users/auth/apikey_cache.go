// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/taibuivan/linguaphoto/internal/platform/sec"
)

// apiKeyCache keeps recently resolved API key hashes in memory.
type apiKeyCache struct {
	cache *ristretto.Cache[string, sec.AuthClaims]
	ttl   time.Duration
}

func newAPIKeyCache(maxKeys int64, ttl time.Duration) (*apiKeyCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, sec.AuthClaims]{
		NumCounters: maxKeys * 10,
		MaxCost:     maxKeys,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &apiKeyCache{cache: cache, ttl: ttl}, nil
}

func (c *apiKeyCache) lookup(hash string) (*sec.AuthClaims, bool) {
	claims, found := c.cache.Get(hash)
	if !found {
		return nil, false
	}
	return &claims, true
}

func (c *apiKeyCache) remember(hash string, claims *sec.AuthClaims) {
	c.cache.SetWithTTL(hash, *claims, 1, c.ttl)
	c.cache.Wait()
}

func (c *apiKeyCache) forget(hash string) {
	c.cache.Del(hash)
}

func (c *apiKeyCache) close() {
	c.cache.Close()
}
