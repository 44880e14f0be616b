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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	CurrentPath = "data/today.json"
	IndexPath   = "data/index.json"
	ArchiveDir  = "data/archive"

	// CacheBustParam is appended to every artifact request.
	CacheBustParam = "_cb"

	maxPayloadBytes = 8 << 20
)

// ArchivePath returns the archive location for a day. An empty runID gives
// the date-only path.
func ArchivePath(dateKey, runID string) string {
	if runID == "" {
		return ArchiveDir + "/" + dateKey + ".json"
	}
	return ArchiveDir + "/" + dateKey + "/" + runID + ".json"
}

// Loader retrieves artifacts relative to a base URL.
type Loader struct {
	base   *url.URL
	client *httpclient.Client
	clock  clockwork.Clock
	seq    atomic.Uint64
}

// NewLoader creates a loader. A nil client uses httpclient defaults and a
// nil clock uses real time.
func NewLoader(baseURL string, client *httpclient.Client, clk clockwork.Clock) (*Loader, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if client == nil {
		client = httpclient.NewClient(0)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Loader{base: base, client: client, clock: clk}, nil
}

// URL resolves a relative artifact path. With cacheBust a unique query
// value is added.
func (l *Loader) URL(path string, cacheBust bool) string {
	u := l.base.ResolveReference(&url.URL{Path: path})
	if cacheBust {
		q := u.Query()
		n := l.seq.Add(1)
		q.Set(CacheBustParam, strconv.FormatInt(l.clock.Now().UnixMilli(), 10)+"-"+strconv.FormatUint(n, 10))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Fetch downloads the raw payload at a relative path.
func (l *Loader) Fetch(ctx context.Context, path string, cacheBust bool) ([]byte, error) {
	target := l.URL(path, cacheBust)
	resp, err := l.client.Get(ctx, target)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("artifact: error closing response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &TransportError{URL: target, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return data, nil
}

func (l *Loader) fetchArtifact(ctx context.Context, path string) (*Artifact, error) {
	data, err := l.Fetch(ctx, path, true)
	if err != nil {
		return nil, err
	}
	art, err := Parse(data)
	if err != nil {
		var se *StructuralError
		if errors.As(err, &se) {
			se.Source = path
		}
		return nil, err
	}
	return art, nil
}

// FetchCurrent loads today's artifact.
func (l *Loader) FetchCurrent(ctx context.Context) (*Artifact, error) {
	return l.fetchArtifact(ctx, CurrentPath)
}

// FetchArchived loads an archived day. Without a runID the archive index
// is consulted for one. When a run id is known the qualified path is tried
// first and a 404 falls back to the date-only path.
func (l *Loader) FetchArchived(ctx context.Context, dateKey, runID string) (*Artifact, error) {
	if _, err := clock.ParseDateKey(dateKey); err != nil {
		return nil, fmt.Errorf("archive lookup: %w", err)
	}

	if runID == "" {
		runID = l.lookupRunID(ctx, dateKey)
	}
	if runID != "" {
		art, err := l.fetchArtifact(ctx, ArchivePath(dateKey, runID))
		if err == nil {
			return art, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
		log.Debug().Msgf("artifact: no archive for run %s on %s, trying date path", runID, dateKey)
	}

	return l.fetchArtifact(ctx, ArchivePath(dateKey, ""))
}

// lookupRunID returns the run id the index lists for a day, or "" when the
// index is unavailable or has no entry.
func (l *Loader) lookupRunID(ctx context.Context, dateKey string) string {
	ix, err := l.FetchIndex(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("artifact: archive index unavailable")
		return ""
	}
	entry, ok := ix.Find(dateKey)
	if !ok {
		return ""
	}
	return entry.RunID
}

// FetchIndex loads the archive index.
func (l *Loader) FetchIndex(ctx context.Context) (*Index, error) {
	data, err := l.Fetch(ctx, IndexPath, true)
	if err != nil {
		return nil, err
	}
	return ParseIndex(data)
}
