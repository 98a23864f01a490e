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

package request_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashrewards/memberhub/internal/request"
)

func TestToJsonReq_Success(t *testing.T) {
	payload := map[string]string{
		"key": "value",
	}

	reqBuffer, err := request.ToJsonReq(payload)
	assert.NoError(t, err)

	expectedJSON, _ := json.Marshal(payload)
	assert.Equal(t, expectedJSON, reqBuffer.Bytes())
}

func TestToJsonReq_Fail(t *testing.T) {
	payload := map[string]interface{}{
		"key": make(chan int),
	}

	reqBuffer, err := request.ToJsonReq(payload)
	assert.Error(t, err)
	assert.Nil(t, reqBuffer)
}

func TestNewJSONRequest(t *testing.T) {
	req, err := request.NewJSONRequest(context.Background(), http.MethodPost, "http://otp.local/verify",
		map[string]string{"code": "123456"}, map[string]string{"X-Api-Key": "secret"})
	require.NoError(t, err)
	assert.Equal(t, "secret", req.Header.Get("X-Api-Key"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"123456"}`, string(body))

	req, err = request.NewJSONRequest(context.Background(), http.MethodGet, "http://otp.local", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"success"}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	req, err := http.NewRequest("GET", server.URL, nil)
	assert.NoError(t, err)

	var response map[string]string
	resp, err := request.Call(req, &response)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", response["status"])
}

func TestCall_Fail_DecodeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{malformed json response`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	req, err := http.NewRequest("GET", server.URL, nil)
	assert.NoError(t, err)

	var response map[string]string
	resp, err := request.Call(req, &response)
	assert.Error(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCall_NonSuccessStatus(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://hooks.example.com/events",
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	req, err := http.NewRequest("POST", "https://hooks.example.com/events", nil)
	require.NoError(t, err)

	resp, err := request.Call(req, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var statusErr *request.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "upstream down", statusErr.Body)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCall_Fail_DoRequest(t *testing.T) {
	req, err := http.NewRequest("GET", "http://invalid-url", nil)
	assert.NoError(t, err)

	var response map[string]string
	resp, err := request.Call(req, &response)
	assert.Error(t, err)
	assert.Nil(t, resp)
}
