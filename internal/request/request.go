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

package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned by Call when the server answers outside the 2XX range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Body)
}

// ToJsonReq serializes payload to JSON and wraps it in a buffer for an HTTP request body.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.NewBuffer(c), nil
}

// NewJSONRequest builds a request carrying payload as a JSON body and the given headers.
// A nil payload sends no body.
func NewJSONRequest(ctx context.Context, method, url string, payload interface{}, headers map[string]string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		buf, err := ToJsonReq(payload)
		if err != nil {
			return nil, err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Call sends req and decodes the JSON response body into response.
//
// Parameters:
// - req *http.Request: The prepared HTTP request to send.
// - response interface{}: The target structure for the decoded body. May be nil.
//
// Returns:
// - *http.Response: The raw HTTP response, nil if the request was never answered.
// - error: A transport error, a *StatusError for non-2XX answers, or a decoding error.
func Call(req *http.Request, response interface{}) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: defaultTimeout}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if response == nil {
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil && err != io.EOF {
		return resp, err
	}
	return resp, nil
}
