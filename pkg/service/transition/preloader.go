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

package transition

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const maxCoverBytes = 16 << 20

// HTTPPreloader fetches covers so they are warm in any cache between here
// and the display. Relative references resolve against the site base URL.
type HTTPPreloader struct {
	client *httpclient.Client
	base   *url.URL
}

func NewHTTPPreloader(client *httpclient.Client, baseURL string) (*HTTPPreloader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if client == nil {
		client = httpclient.NewClient(0)
	}
	return &HTTPPreloader{client: client, base: base}, nil
}

func (p *HTTPPreloader) Preload(ctx context.Context, ref string) error {
	u, err := p.base.Parse(ref)
	if err != nil {
		return fmt.Errorf("invalid cover reference %q: %w", ref, err)
	}

	resp, err := p.client.Get(ctx, u.String())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("transition: error closing cover body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("cover %s: unexpected status %d", u, resp.StatusCode)
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxCoverBytes)); err != nil {
		return fmt.Errorf("cover %s: failed to read body: %w", u, err)
	}
	return nil
}
