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
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/hibiken/asynq"

	"github.com/cashrewards/memberhub/config"
	redis_db "github.com/cashrewards/memberhub/internal/redis-db"
)

// WEBHOOK_QUEUE is the asynq queue, and task type, of outgoing webhooks.
const WEBHOOK_QUEUE = "memberhub_webhooks"

// Queue enqueues background tasks on Redis.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// RedisClientOpt converts the configured Redis DNS into asynq connection options.
func RedisClientOpt(conf *config.Configuration) (asynq.RedisClientOpt, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      redisOption.Addr,
		Password:  redisOption.Password,
		DB:        redisOption.DB,
		TLSConfig: redisOption.TLSConfig,
	}, nil
}

// NewQueue initializes a Queue on the configured Redis.
func NewQueue(conf *config.Configuration) (*Queue, error) {
	queueOptions, err := RedisClientOpt(conf)
	if err != nil {
		return nil, err
	}
	return &Queue{
		Client:    asynq.NewClient(queueOptions),
		Inspector: asynq.NewInspector(queueOptions),
	}, nil
}

// EnqueueWebhook queues hook for delivery. taskID makes the enqueue
// idempotent: a second enqueue with the same id is a no-op.
func (q *Queue) EnqueueWebhook(ctx context.Context, hook NewWebhook, taskID string) error {
	payload, err := json.Marshal(hook)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{asynq.Queue(WEBHOOK_QUEUE), asynq.MaxRetry(5)}
	if taskID != "" {
		taskOptions = append(taskOptions, asynq.TaskID(taskID))
	}
	task := asynq.NewTask(WEBHOOK_QUEUE, payload, taskOptions...)

	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		log.Println(err, info)
		return err
	}
	return nil
}

func (q *Queue) Close() error {
	if err := q.Inspector.Close(); err != nil {
		return err
	}
	return q.Client.Close()
}
