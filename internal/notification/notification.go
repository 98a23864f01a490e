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

package notification

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cashrewards/memberhub/config"
	"github.com/cashrewards/memberhub/internal/request"
)

// WebhookSender forwards an event to the configured webhook endpoint.
type WebhookSender func(event string, payload interface{}) error

var (
	senderMu      sync.RWMutex
	webhookSender WebhookSender
)

// RegisterWebhookSender installs the function NotifyError uses to publish
// system.error events. The last registration wins.
func RegisterWebhookSender(sender WebhookSender) {
	senderMu.Lock()
	defer senderMu.Unlock()
	webhookSender = sender
}

func currentSender() WebhookSender {
	senderMu.RLock()
	defer senderMu.RUnlock()
	return webhookSender
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(projectName string, err error, at time.Time) slackMessage {
	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("Error From %s 🐞", projectName), Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Error:*\n%v", err)}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("*Time:*\n%v", at.Format(time.RFC822))}}},
	}}
}

// SlackNotification posts err to the configured Slack webhook.
func SlackNotification(ctx context.Context, err error) error {
	conf, cerr := config.Fetch()
	if cerr != nil {
		return cerr
	}

	req, rerr := request.NewJSONRequest(ctx, http.MethodPost, conf.Notification.Slack.WebhookUrl,
		slackPayload(conf.ProjectName, err, time.Now()), nil)
	if rerr != nil {
		return rerr
	}

	// Slack answers "ok" as plain text, so the body is not decoded.
	_, rerr = request.Call(req, nil)
	return rerr
}

// NotifyError logs systemError and, without blocking the caller, reports it
// to Slack and to the registered webhook sender when those are configured.
func NotifyError(systemError error) {
	logrus.Error(systemError)

	go func(systemError error) {
		conf, err := config.Fetch()
		if err != nil {
			logrus.Error(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			if err := SlackNotification(context.Background(), systemError); err != nil {
				logrus.Errorf("slack notification failed: %v", err)
			}
		}

		if sender := currentSender(); sender != nil {
			if err := sender("system.error", map[string]interface{}{
				"error": systemError.Error(),
				"time":  time.Now().UTC(),
			}); err != nil {
				logrus.Errorf("error webhook failed: %v", err)
			}
		}
	}(systemError)
}
