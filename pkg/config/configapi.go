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

package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultLastGoodBackend = "bolt"
	DefaultListen          = "127.0.0.1:7497"
	DefaultRetryInterval   = 2 * time.Second
	DefaultRetryBurst      = 3
	LastGoodFile           = "lastgood.db"
)

// Storage selects where the last known good artifact is kept.
type Storage struct {
	LastGood string `toml:"last_good,omitempty"`
	Path     string `toml:"path,omitempty"`
}

type API struct {
	Listen         string   `toml:"listen,omitempty"`
	RetryInterval  string   `toml:"retry_interval,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty,multiline"`
	RetryBurst     int      `toml:"retry_burst,omitempty"`
}

type Telemetry struct {
	DSN            string `toml:"dsn,omitempty"`
	ErrorReporting bool   `toml:"error_reporting"`
}

func (c *Instance) LastGoodBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.LastGood == "" {
		return DefaultLastGoodBackend
	}
	return c.vals.Storage.LastGood
}

// LastGoodPath returns the configured store path, or LastGoodFile inside
// dataDir.
func (c *Instance) LastGoodPath(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.Path != "" {
		return c.vals.Storage.Path
	}
	return filepath.Join(dataDir, LastGoodFile)
}

func (c *Instance) Listen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.Listen == "" {
		return DefaultListen
	}
	return c.vals.API.Listen
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.vals.API.AllowedOrigins))
	copy(out, c.vals.API.AllowedOrigins)
	return out
}

func (c *Instance) RetryInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d := parseDuration("api.retry_interval", c.vals.API.RetryInterval); d > 0 {
		return d
	}
	return DefaultRetryInterval
}

func (c *Instance) RetryBurst() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.RetryBurst <= 0 {
		return DefaultRetryBurst
	}
	return c.vals.API.RetryBurst
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.ErrorReporting
}

func (c *Instance) SetErrorReporting(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Telemetry.ErrorReporting = enabled
}

func (c *Instance) TelemetryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.DSN
}
