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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPreloader(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		if r.URL.Path == "/site/covers/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg bytes"))
	}))
	t.Cleanup(srv.Close)

	p, err := NewHTTPPreloader(httpclient.Wrap(srv.Client()), srv.URL+"/site")
	require.NoError(t, err)

	require.NoError(t, p.Preload(context.Background(), "covers/a.jpg"))
	assert.Equal(t, "/site/covers/a.jpg", <-paths)

	require.NoError(t, p.Preload(context.Background(), srv.URL+"/elsewhere/b.jpg"))
	assert.Equal(t, "/elsewhere/b.jpg", <-paths)

	err = p.Preload(context.Background(), "covers/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Preload(ctx, "covers/a.jpg"))
}
