// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.


package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationServer_ReplaysAndRecords(t *testing.T) {
	t.Parallel()

	server := NewNotificationServer(t, models.Notification{Method: models.NotificationWindow})
	defer server.Close()

	conn, err := server.Dial()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var n models.Notification
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, models.NotificationWindow, n.Method)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(data))

	require.NoError(t, server.WaitForReceived(1, time.Second))
	assert.Equal(t, [][]byte{[]byte("ping")}, server.Received())
}

func TestSiteServer(t *testing.T) {
	t.Parallel()

	site := NewSiteServer(t)
	require.NoError(t, site.WriteFile("data/today.json", []byte(`{"date":"2024-03-20"}`)))

	get := func(path string) (int, string) {
		resp, err := http.Get(site.URL() + path) //nolint:noctx // test helper
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("data/today.json?_cb=1-2")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"date":"2024-03-20"}`, body)

	status, _ = get("data/index.json")
	assert.Equal(t, http.StatusNotFound, status)

	site.FailWith("data/today.json", http.StatusServiceUnavailable)
	status, _ = get("data/today.json")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	site.FailWith("data/today.json", 0)
	status, _ = get("data/today.json")
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, 3, site.Hits("data/today.json"))
	assert.Equal(t, 1, site.Hits("data/index.json"))
}
