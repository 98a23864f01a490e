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

package redis_db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client shared by the balance cache, the withdrawal lock
// and the webhook queue.
type Redis struct {
	addresses []string
	client    redis.UniversalClient
}

const pingTimeout = 500 * time.Millisecond

// ParseRedisURL turns a configured Redis DNS into client options. Plain
// host:port values are used as they are; anything else goes through redis.ParseURL.
func ParseRedisURL(rawURL string) (*redis.Options, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	if !strings.Contains(rawURL, "//") && !strings.Contains(rawURL, "@") {
		return &redis.Options{Addr: rawURL}, nil
	}

	// redis://password@host:port has no username separator
	if strings.HasPrefix(rawURL, "redis://") && strings.Contains(rawURL, "@") {
		parts := strings.SplitN(strings.TrimPrefix(rawURL, "redis://"), "@", 2)
		if !strings.Contains(parts[0], ":") {
			rawURL = fmt.Sprintf("redis://:%s@%s", parts[0], parts[1])
		}
	}

	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url %q: %w", rawURL, err)
	}
	return opts, nil
}

// NewRedisClient connects to a single Redis instance, or to a cluster when
// more than one address is given, and pings it before returning.
//
// Parameters:
// - addresses []string: Redis addresses. One address means a standalone instance.
//
// Returns:
// - *Redis: The connected client wrapper.
// - error: An error if an address is invalid or the ping fails.
func NewRedisClient(addresses []string) (*Redis, error) {
	if len(addresses) == 0 {
		return nil, errors.New("redis addresses list cannot be empty")
	}

	var client redis.UniversalClient
	if len(addresses) == 1 {
		opts, err := ParseRedisURL(addresses[0])
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opts)
	} else {
		var clusterAddrs []string
		var password string
		for _, addr := range addresses {
			opts, err := ParseRedisURL(addr)
			if err != nil {
				return nil, err
			}
			clusterAddrs = append(clusterAddrs, opts.Addr)
			if password == "" {
				password = opts.Password
			}
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    clusterAddrs,
			Password: password,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{addresses: addresses, client: client}, nil
}

func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

// Addr is the first configured address, in the host:port form asynq expects.
func (r *Redis) Addr() string {
	opts, err := ParseRedisURL(r.addresses[0])
	if err != nil {
		return r.addresses[0]
	}
	return opts.Addr
}
