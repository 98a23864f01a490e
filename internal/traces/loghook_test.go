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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type recordingExporter struct {
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func TestLogHook_Fire(t *testing.T) {
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	hook := &LogHook{logger: provider.Logger("memberhub-test")}
	entry := &logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "ledger commit failed",
		Time:    time.Now(),
		Data:    logrus.Fields{"withdrawal_id": "person-1-20240101000000"},
	}

	require.NoError(t, hook.Fire(entry))
	require.Len(t, exporter.records, 1)

	record := exporter.records[0]
	assert.Equal(t, otellog.SeverityError, record.Severity())
	assert.Equal(t, "ledger commit failed", record.Body().AsString())
	assert.Equal(t, 1, record.AttributesLen())
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, otellog.SeverityWarn, severity(logrus.WarnLevel))
	assert.Equal(t, otellog.SeverityFatal, severity(logrus.PanicLevel))
	assert.Equal(t, otellog.SeverityDebug, severity(logrus.TraceLevel))
	assert.Len(t, NewLogHook("x").Levels(), 4)
}
