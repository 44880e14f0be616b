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

package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	header http.Header
	path   string
	query  string
}

type fixtureServer struct {
	*httptest.Server
	files    map[string][]byte
	status   map[string]int
	requests []recordedRequest
	mu       sync.Mutex
}

func newFixtureServer(t *testing.T, prefix string) *fixtureServer {
	t.Helper()
	fs := &fixtureServer{
		files:  make(map[string][]byte),
		status: make(map[string]int),
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
		})
		path := strings.TrimPrefix(r.URL.Path, prefix)
		code, hasCode := fs.status[path]
		body, hasBody := fs.files[path]
		fs.mu.Unlock()

		switch {
		case hasCode:
			w.WriteHeader(code)
		case hasBody:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fixtureServer) paths() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]string, len(fs.requests))
	for i, r := range fs.requests {
		out[i] = r.path
	}
	return out
}

func (fs *fixtureServer) last() recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[len(fs.requests)-1]
}

var loaderEpoch = time.Date(2024, 3, 20, 4, 0, 0, 0, time.UTC)

func newTestLoader(t *testing.T, srv *fixtureServer, base string) *Loader {
	t.Helper()
	l, err := NewLoader(srv.URL+base, httpclient.Wrap(srv.Client()), clockwork.NewFakeClockAt(loaderEpoch))
	require.NoError(t, err)
	return l
}

func TestFetchCurrent(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "")
	srv.files["/data/today.json"] = readFixture(t, "today.json")
	l := newTestLoader(t, srv, "")

	art, err := l.FetchCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", art.Date)
	assert.Equal(t, "run-20240320-a", art.RunID)

	req := srv.last()
	assert.Equal(t, "/data/today.json", req.path)
	assert.Equal(t, "no-cache, no-store, max-age=0", req.header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", req.header.Get("Pragma"))
	assert.True(t, strings.HasPrefix(req.query, CacheBustParam+"="+
		strconv.FormatInt(loaderEpoch.UnixMilli(), 10)), req.query)
}

func TestFetchCacheBustIsUnique(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "")
	srv.files["/data/today.json"] = readFixture(t, "today.json")
	l := newTestLoader(t, srv, "")

	_, err := l.FetchCurrent(context.Background())
	require.NoError(t, err)
	first := srv.last().query
	_, err = l.FetchCurrent(context.Background())
	require.NoError(t, err)
	second := srv.last().query

	assert.NotEqual(t, first, second)
	assert.Equal(t, srv.URL+"/data/today.json", l.URL(CurrentPath, false))
}

func TestFetchBaseWithPath(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "/daily3albums")
	srv.files["/data/today.json"] = readFixture(t, "today.json")
	l := newTestLoader(t, srv, "/daily3albums")

	_, err := l.FetchCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/daily3albums/data/today.json"}, srv.paths())
}

func TestFetchErrors(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "")
	srv.status["/data/today.json"] = http.StatusInternalServerError
	l := newTestLoader(t, srv, "")

	_, err := l.FetchCurrent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrStructural)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.False(t, te.NotFound())

	srv.mu.Lock()
	delete(srv.status, "/data/today.json")
	srv.files["/data/today.json"] = []byte(`{"schema_version": "1", "date": "2024-03-20"}`)
	srv.mu.Unlock()

	_, err = l.FetchCurrent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CurrentPath, se.Source)
	assert.Contains(t, se.Error(), "run_id is required")
}

func TestFetchUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	l, err := NewLoader(base, httpclient.NewClient(time.Second), nil)
	require.NoError(t, err)

	_, err = l.FetchCurrent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
}

func TestFetchArchived(t *testing.T) {
	t.Parallel()

	flat := readFixture(t, "flat_picks.json")

	tests := []struct {
		files   map[string][]byte
		status  map[string]int
		name    string
		runID   string
		wantErr error
		want    []string
	}{
		{
			name:  "run id path present",
			runID: "run-20240319-z",
			files: map[string][]byte{"/data/archive/2024-03-19/run-20240319-z.json": flat},
			want:  []string{"/data/archive/2024-03-19/run-20240319-z.json"},
		},
		{
			name:  "run id path absent falls back",
			runID: "run-20240319-z",
			files: map[string][]byte{"/data/archive/2024-03-19.json": flat},
			want: []string{
				"/data/archive/2024-03-19/run-20240319-z.json",
				"/data/archive/2024-03-19.json",
			},
		},
		{
			name:  "no index uses date path",
			files: map[string][]byte{"/data/archive/2024-03-19.json": flat},
			want:  []string{"/data/index.json", "/data/archive/2024-03-19.json"},
		},
		{
			name: "run id from index",
			files: map[string][]byte{
				"/data/index.json": []byte(`{"schema_version":"1","items":[` +
					`{"date":"2024-03-20","run_id":"run-20"},{"date":"2024-03-19","run_id":"run-19"}]}`),
				"/data/archive/2024-03-19/run-19.json": flat,
			},
			want: []string{"/data/index.json", "/data/archive/2024-03-19/run-19.json"},
		},
		{
			name: "index without entry uses date path",
			files: map[string][]byte{
				"/data/index.json":              []byte(`{"schema_version":"1","items":[{"date":"2024-03-20","run_id":"run-20"}]}`),
				"/data/archive/2024-03-19.json": flat,
			},
			want: []string{"/data/index.json", "/data/archive/2024-03-19.json"},
		},
		{
			name:    "server error does not fall back",
			runID:   "run-20240319-z",
			files:   map[string][]byte{"/data/archive/2024-03-19.json": flat},
			status:  map[string]int{"/data/archive/2024-03-19/run-20240319-z.json": http.StatusBadGateway},
			want:    []string{"/data/archive/2024-03-19/run-20240319-z.json"},
			wantErr: ErrTransport,
		},
		{
			name:    "both absent",
			runID:   "run-20240319-z",
			want:    []string{"/data/archive/2024-03-19/run-20240319-z.json", "/data/archive/2024-03-19.json"},
			wantErr: ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newFixtureServer(t, "")
			for k, v := range tt.files {
				srv.files[k] = v
			}
			for k, v := range tt.status {
				srv.status[k] = v
			}
			l := newTestLoader(t, srv, "")

			art, err := l.FetchArchived(context.Background(), "2024-03-19", tt.runID)
			assert.Equal(t, tt.want, srv.paths())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2024-03-19", art.Date)
		})
	}
}

func TestFetchArchivedRejectsBadDate(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "")
	l := newTestLoader(t, srv, "")

	_, err := l.FetchArchived(context.Background(), "yesterday", "")
	require.Error(t, err)
	assert.Empty(t, srv.paths())
}

func TestFetchIndex(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, "")
	srv.files["/data/index.json"] = readFixture(t, "index.json")
	l := newTestLoader(t, srv, "")

	ix, err := l.FetchIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, ix.Items, 3)
	assert.Equal(t, "2024-03-20", ix.Items[0].Date)
}

func TestNewLoaderValidation(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "not a url", "/relative/only", "http://"} {
		_, err := NewLoader(base, nil, nil)
		assert.Error(t, err, base)
	}

	l, err := NewLoader("https://example.com/app", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/app/data/archive/2024-03-19/run%201.json",
		l.URL(ArchivePath("2024-03-19", "run 1"), false))
}
