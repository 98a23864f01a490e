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
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/internal/notification"
	"github.com/cashrewards/memberhub/internal/request"
)

const (
	WebhookWithdrawalRequested = "withdrawal.requested"
	WebhookSystemError         = "system.error"
)

// NewWebhook represents the structure of a webhook notification.
type NewWebhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// processHTTP posts data to the configured webhook endpoint. Non-2XX answers
// are returned as errors so the task is retried.
func processHTTP(ctx context.Context, data NewWebhook) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	req, err := request.NewJSONRequest(ctx, http.MethodPost, conf.Notification.Webhook.Url, data, conf.Notification.Webhook.Headers)
	if err != nil {
		return err
	}

	_, err = request.Call(req, nil)
	if err != nil {
		return fmt.Errorf("webhook %s delivery failed: %w", data.Event, err)
	}
	logrus.Infof("webhook notification sent: %s", data.Event)
	return nil
}

// ProcessWebhook delivers a webhook task taken from WEBHOOK_QUEUE.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - task *asynq.Task: The task containing the webhook notification data.
//
// Returns:
// - error: An error if the payload is malformed or the delivery fails.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var payload NewWebhook
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.Errorf("Error unmarshaling task payload: %v", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return processHTTP(ctx, payload)
}

// SendWebhook queues hook when a webhook endpoint is configured.
func (m *MemberHub) SendWebhook(ctx context.Context, hook NewWebhook, taskID string) error {
	if m.queue == nil || m.config.Notification.Webhook.Url == "" {
		return nil
	}
	return m.queue.EnqueueWebhook(ctx, hook, taskID)
}

// postWithdrawalActions announces a committed withdrawal. It never fails the
// withdrawal; delivery errors are reported through notification.NotifyError.
func (m *MemberHub) postWithdrawalActions(result *WithdrawalResult) {
	if m.queue == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := m.SendWebhook(ctx, NewWebhook{
			Event:   WebhookWithdrawalRequested,
			Payload: result,
		}, fmt.Sprintf("%s:%s", WebhookWithdrawalRequested, result.WithdrawalID))
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}

// registerErrorWebhook routes NotifyError reports to the webhook queue as
// system.error events.
func (m *MemberHub) registerErrorWebhook() {
	if m.queue == nil {
		return
	}
	notification.RegisterWebhookSender(func(event string, payload interface{}) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return m.SendWebhook(ctx, NewWebhook{Event: event, Payload: payload}, "")
	})
}
