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

package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single artifact request.
	DefaultTimeout = 15 * time.Second
)

// NoCacheTransport asks every intermediary to revalidate so artifacts
// refreshed at a window boundary are never served from a stale cache.
type NoCacheTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *NoCacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
	r.Header.Set("Pragma", "no-cache")

	resp, err := base.RoundTrip(r)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport provides connection pooling and conservative timeouts.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 10 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          20,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Client is an HTTP client that never accepts cached responses.
type Client struct {
	*http.Client
}

// NewClient creates a client with the given overall request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Client: &http.Client{
			Transport: &NoCacheTransport{Base: DefaultTransport},
			Timeout:   timeout,
		},
	}
}

// Wrap adapts an existing http.Client, e.g. one from httptest.
func Wrap(c *http.Client) *Client {
	base := c.Transport
	return &Client{
		Client: &http.Client{
			Transport: &NoCacheTransport{Base: base},
			Timeout:   c.Timeout,
		},
	}
}

// Get performs a GET request and returns the response.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing GET request: %w", err)
	}

	return resp, nil
}
