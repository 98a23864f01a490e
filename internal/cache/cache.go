/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is not cached.
var ErrCacheMiss = cache.ErrCacheMiss

// Cache interface provides the basic operations for a cache system.
type Cache interface {
	// Set stores a value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get decodes the value stored under key into data.
	// Returns ErrCacheMiss if the key does not exist.
	Get(ctx context.Context, key string, data interface{}) error

	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on Redis with a local TinyLFU layer in front.
type RedisCache struct {
	cache *cache.Cache
}

// cacheSize defines the size of the local cache (in number of entries) used alongside Redis.
const cacheSize = 128000

// NewCache builds a cache on an already connected Redis client. The local
// layer keeps entries for at most localTTL so other replicas see updates.
func NewCache(client redis.UniversalClient, localTTL time.Duration) Cache {
	c := cache.New(&cache.Options{
		Redis:      client,
		LocalCache: cache.NewTinyLFU(cacheSize, localTTL),
	})
	return &RedisCache{cache: c}
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	return r.cache.Get(ctx, key, data)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	err := r.cache.Delete(ctx, key)
	if err == ErrCacheMiss {
		return nil
	}
	return err
}
