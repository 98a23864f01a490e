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

package memberhub

import (
	"embed"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/database"
	"github.com/cashrewards/memberhub/internal/cache"
	redis_db "github.com/cashrewards/memberhub/internal/redis-db"
	"github.com/cashrewards/memberhub/otp"
)

var tracer = otel.Tracer("memberhub.withdrawals")

//go:embed sql/*.sql
var SQLFiles embed.FS

// MemberHub records member withdrawals against the balances of every
// membership the member holds.
type MemberHub struct {
	datasource database.IDataSource
	config     *config.Configuration
	balances   BalanceProvider
	verifier   otp.Verifier
	clock      Clock
	redis      redis.UniversalClient
	queue      *Queue
}

// Option customises a MemberHub built by NewMemberHub.
type Option func(*MemberHub)

func WithClock(clock Clock) Option {
	return func(m *MemberHub) { m.clock = clock }
}

func WithOTPVerifier(verifier otp.Verifier) Option {
	return func(m *MemberHub) { m.verifier = verifier }
}

func WithBalanceProvider(provider BalanceProvider) Option {
	return func(m *MemberHub) { m.balances = provider }
}

// WithRedis sets the client behind the balance cache and the withdrawal lock.
func WithRedis(client redis.UniversalClient) Option {
	return func(m *MemberHub) { m.redis = client }
}

func WithQueue(queue *Queue) Option {
	return func(m *MemberHub) { m.queue = queue }
}

// NewMemberHub initializes a MemberHub from the loaded configuration. Redis
// is connected only when configured; without it balances are read straight
// from db and webhooks are not sent.
//
// Parameters:
// - db database.IDataSource: The datasource for database operations.
// - opts ...Option: Overrides for collaborators, mostly used in tests.
//
// Returns:
// - *MemberHub: The initialized service.
// - error: An error if the configuration is missing or a collaborator fails to start.
func NewMemberHub(db database.IDataSource, opts ...Option) (*MemberHub, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	hub := &MemberHub{datasource: db, config: configuration, clock: systemClock{}}
	for _, opt := range opts {
		opt(hub)
	}

	if hub.verifier == nil {
		hub.verifier, err = otp.NewVerifier(configuration.OTP)
		if err != nil {
			return nil, err
		}
	}

	if configuration.Redis.Dns != "" {
		if hub.redis == nil {
			redisClient, err := redis_db.NewRedisClient([]string{configuration.Redis.Dns})
			if err != nil {
				return nil, err
			}
			hub.redis = redisClient.Client()
		}
		if hub.queue == nil {
			hub.queue, err = NewQueue(configuration)
			if err != nil {
				return nil, err
			}
		}
	}

	if hub.balances == nil {
		if hub.redis != nil {
			ttl := time.Duration(configuration.BalanceCache.TTLSec) * time.Second
			hub.balances = NewCachedBalanceProvider(db, cache.NewCache(hub.redis, ttl), ttl)
		} else {
			hub.balances = datasourceBalances{reader: db}
		}
	}

	hub.registerErrorWebhook()
	return hub, nil
}

// Close releases the queue connections.
func (m *MemberHub) Close() error {
	if m.queue != nil {
		return m.queue.Close()
	}
	return nil
}

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}
