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
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// SiteServer serves static files from an in-memory filesystem the way the
// published site does. Query strings such as cache busters are ignored.
type SiteServer struct {
	Server *httptest.Server
	Fs     afero.Fs
	hits   map[string]int
	status map[string]int
	mu     sync.Mutex
}

func NewSiteServer(t *testing.T) *SiteServer {
	t.Helper()
	s := &SiteServer{
		Fs:     afero.NewMemMapFs(),
		hits:   make(map[string]int),
		status: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *SiteServer) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")

	s.mu.Lock()
	s.hits[name]++
	status := s.status[name]
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	data, err := afero.ReadFile(s.Fs, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(name, ".json") {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(data)
}

// URL is the site base URL.
func (s *SiteServer) URL() string {
	return s.Server.URL + "/"
}

// WriteFile publishes content at a site path such as data/today.json.
func (s *SiteServer) WriteFile(name string, content []byte) error {
	if err := s.Fs.MkdirAll(filepath.Dir(name), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(s.Fs, name, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// CopyFile publishes a local fixture at a site path.
func (s *SiteServer) CopyFile(t *testing.T, local, name string) {
	t.Helper()
	data, err := afero.ReadFile(afero.NewOsFs(), local)
	require.NoError(t, err)
	require.NoError(t, s.WriteFile(name, data))
}

// FailWith makes a path answer with status until it is set back to 0.
func (s *SiteServer) FailWith(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.status, name)
		return
	}
	s.status[name] = status
}

// Hits reports how many requests a path has received.
func (s *SiteServer) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}
