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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		wantErr  bool
	}{
		{name: "docker style", url: "redis:6379", addr: "redis:6379"},
		{name: "url with password", url: "redis://:password123@localhost:6379", addr: "localhost:6379", password: "password123"},
		{name: "password without separator", url: "redis://secret@localhost:6380", addr: "localhost:6380", password: "secret"},
		{name: "empty", url: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, got.Addr)
			assert.Equal(t, tt.password, got.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	_, err := NewRedisClient(nil)
	assert.EqualError(t, err, "redis addresses list cannot be empty")

	mr := miniredis.RunT(t)
	client, err := NewRedisClient([]string{mr.Addr()})
	require.NoError(t, err)
	assert.NotNil(t, client.Client())
	assert.Equal(t, mr.Addr(), client.Addr())

	client, err = NewRedisClient([]string{"redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.Equal(t, mr.Addr(), client.Addr())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient([]string{addr})
	assert.Error(t, err)
}
