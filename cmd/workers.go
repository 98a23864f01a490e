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

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cashrewards/memberhub"
	"github.com/cashrewards/memberhub/config"
)

func initializeQueues() map[string]int {
	return map[string]int{
		memberhub.WEBHOOK_QUEUE: 1,
	}
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := memberhub.RedisClientOpt(conf)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	errorHandler := asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if retried >= maxRetry {
			logrus.Errorf("webhook task %s dropped after %d retries: %v", task.Type(), retried, err)
		}
	})

	return asynq.NewServer(
		redisOption,
		asynq.Config{
			Concurrency:  2,
			Queues:       queues,
			Logger:       logrus.StandardLogger(),
			ErrorHandler: errorHandler,
		},
	), nil
}

func initializeTaskHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(memberhub.WEBHOOK_QUEUE, memberhub.ProcessWebhook)
}

// workerCommands defines the "workers" command that delivers queued webhooks.
func workerCommands(m *memberhubInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start memberhub workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}
			if conf.Redis.Dns == "" {
				log.Fatal("workers need redis. set redis.dns in the configuration")
			}

			phClient, shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}
			if phClient != nil {
				defer phClient.Close()
			}
			if m.hub != nil {
				defer m.hub.Close()
			}

			srv, err := initializeWorkerServer(conf, initializeQueues())
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
