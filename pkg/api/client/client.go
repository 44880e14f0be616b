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

// Package client talks to a running unlock daemon over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrRequestCancelled = errors.New("request cancelled")
	ErrRateLimited      = errors.New("rate limited, try again shortly")
)

const (
	DefaultTimeout    = 10 * time.Second
	NotificationsPath = "/api/notifications"
)

// APIError is a non-success response from the daemon.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	base *url.URL
	http *httpclient.Client
}

// New creates a client for addr, which may be host:port or a full URL.
func New(addr string, timeout time.Duration) (*Client, error) {
	if !strings.Contains(addr, "://") {
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid api address %q: %w", addr, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid api address %q: host required", addr)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: base, http: httpclient.NewClient(timeout)}, nil
}

func (c *Client) url(path string) string {
	return c.base.ResolveReference(&url.URL{Path: path}).String()
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any, ok ...int) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return ErrRequestCancelled
		case errors.Is(err, context.DeadlineExceeded):
			return ErrRequestTimeout
		}
		return fmt.Errorf("api request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("client: error closing body")
		}
	}()

	accepted := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, code := range ok {
		accepted = accepted || resp.StatusCode == code
	}
	if !accepted {
		if resp.StatusCode == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// State fetches the state document. A hard empty state is returned
// normally rather than as an error.
func (c *Client) State(ctx context.Context) (*models.StateResponse, error) {
	var st models.StateResponse
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &st, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Retry(ctx context.Context) (*models.RetryResponse, error) {
	var r models.RetryResponse
	if err := c.do(ctx, http.MethodPost, "/api/retry", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Override(ctx context.Context) (*models.OverrideResponse, error) {
	var r models.OverrideResponse
	if err := c.do(ctx, http.MethodGet, "/api/override", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) SetOverride(ctx context.Context, value string) (*models.OverrideResponse, error) {
	var r models.OverrideResponse
	err := c.do(ctx, http.MethodPut, "/api/override", models.OverrideRequest{Value: &value}, &r)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ClearOverride(ctx context.Context) (*models.OverrideResponse, error) {
	var r models.OverrideResponse
	if err := c.do(ctx, http.MethodDelete, "/api/override", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ShiftOverride(ctx context.Context, delta time.Duration) (*models.OverrideResponse, error) {
	var r models.OverrideResponse
	req := models.ShiftRequest{Seconds: int64(delta / time.Second)}
	if err := c.do(ctx, http.MethodPost, "/api/override/shift", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Watch streams notifications to fn until fn returns false, the
// connection drops or ctx is cancelled.
func (c *Client) Watch(ctx context.Context, fn func(models.Notification) bool) error {
	u := *c.base
	u.Scheme = "ws"
	if c.base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = NotificationsPath

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}
	defer func(conn *websocket.Conn) {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("error closing websocket")
		}
	}(conn)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ErrRequestCancelled
			}
			return fmt.Errorf("error reading notification: %w", err)
		}
		var n models.Notification
		if err := json.Unmarshal(message, &n); err != nil || n.Method == "" {
			continue
		}
		if !fn(n) {
			return nil
		}
	}
}

// WaitNotification blocks until a notification with the given method
// arrives. A zero timeout uses DefaultTimeout; a negative one waits
// forever.
func (c *Client) WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	method string,
) (models.Notification, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var found models.Notification
	err := c.Watch(ctx, func(n models.Notification) bool {
		if n.Method != method {
			return true
		}
		found = n
		return false
	})
	if err != nil {
		if errors.Is(err, ErrRequestCancelled) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return found, ErrRequestTimeout
		}
		return found, err
	}
	return found, nil
}
