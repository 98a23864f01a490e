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

package trace

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// LogHook forwards logrus entries at warning level and above to the global
// OpenTelemetry log provider.
type LogHook struct {
	logger otellog.Logger
}

func NewLogHook(name string) *LogHook {
	return &LogHook{logger: global.GetLoggerProvider().Logger(name)}
}

func (h *LogHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *LogHook) Fire(entry *logrus.Entry) error {
	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var record otellog.Record
	record.SetTimestamp(entry.Time)
	record.SetSeverity(severity(entry.Level))
	record.SetSeverityText(entry.Level.String())
	record.SetBody(otellog.StringValue(entry.Message))
	for key, value := range entry.Data {
		record.AddAttributes(otellog.String(key, fmt.Sprint(value)))
	}

	h.logger.Emit(ctx, record)
	return nil
}

func severity(level logrus.Level) otellog.Severity {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return otellog.SeverityFatal
	case logrus.ErrorLevel:
		return otellog.SeverityError
	case logrus.WarnLevel:
		return otellog.SeverityWarn
	case logrus.InfoLevel:
		return otellog.SeverityInfo
	default:
		return otellog.SeverityDebug
	}
}
