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


// Package helpers provides test servers for the daemon's notification
// stream and for the static site that publishes the daily artifacts.
//
// Example usage:
//
//	func TestWatch(t *testing.T) {
//		server := helpers.NewNotificationServer(t, models.Notification{
//			Method: models.NotificationWindow,
//		})
//		defer server.Close()
//
//		conn, err := server.Dial()
//		require.NoError(t, err)
//		defer conn.Close()
//	}
package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/require"
)

// NotificationsPath is where the daemon serves its stream.
const NotificationsPath = "/api/notifications"

// NotificationServer replays a fixed list of notifications to every
// session that connects and records what clients send back.
type NotificationServer struct {
	Server   *httptest.Server
	Melody   *melody.Melody
	received [][]byte
	mu       sync.RWMutex
}

// NewNotificationServer starts a server that writes notifs, in order, to
// each new session.
func NewNotificationServer(t *testing.T, notifs ...models.Notification) *NotificationServer {
	t.Helper()

	frames := make([][]byte, 0, len(notifs))
	for _, n := range notifs {
		data, err := json.Marshal(n)
		require.NoError(t, err)
		frames = append(frames, data)
	}

	m := melody.New()
	ns := &NotificationServer{Melody: m}

	m.HandleConnect(func(session *melody.Session) {
		for _, frame := range frames {
			if err := session.Write(frame); err != nil {
				return
			}
		}
	})
	m.HandleMessage(func(session *melody.Session, msg []byte) {
		ns.record(msg)
		if string(msg) == "ping" {
			_ = session.Write([]byte("pong"))
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc(NotificationsPath, func(w http.ResponseWriter, r *http.Request) {
		_ = m.HandleRequest(w, r)
	})
	ns.Server = httptest.NewServer(mux)

	return ns
}

func (ns *NotificationServer) record(msg []byte) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.received = append(ns.received, append([]byte(nil), msg...))
}

// URL is the server's base URL.
func (ns *NotificationServer) URL() string {
	return ns.Server.URL
}

// Received returns the messages clients have sent so far.
func (ns *NotificationServer) Received() [][]byte {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([][]byte, len(ns.received))
	copy(out, ns.received)
	return out
}

// WaitForReceived blocks until count messages have arrived from clients.
func (ns *NotificationServer) WaitForReceived(count int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(ns.Received()) >= count {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %d messages, got %d", count, len(ns.Received()))
}

// Dial opens a raw websocket connection to the stream.
func (ns *NotificationServer) Dial() (*websocket.Conn, error) {
	u, err := url.Parse(ns.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}
	u.Scheme = "ws"
	u.Path = NotificationsPath

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}
	return conn, nil
}

// Close shuts down the server and every session.
func (ns *NotificationServer) Close() {
	_ = ns.Melody.Close()
	ns.Server.Close()
}
