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
	"time"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL        = "http://localhost:8080/"
	DefaultUTCOffset      = "+08:00"
	DefaultSampleInterval = 250 * time.Millisecond
)

// Source locates the published artifacts.
type Source struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout string `toml:"request_timeout,omitempty"`
}

// Schedule configures the fixed timezone and how often the clock is
// sampled.
type Schedule struct {
	UTCOffset      string `toml:"utc_offset,omitempty"`
	SampleInterval string `toml:"sample_interval,omitempty"`
}

func (c *Instance) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Source.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.vals.Source.BaseURL
}

func (c *Instance) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Source.BaseURL = u
}

// RequestTimeout returns 0 when unset, meaning the client default.
func (c *Instance) RequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("source.request_timeout", c.vals.Source.RequestTimeout)
}

// UTCOffset returns the fixed timezone offset. Invalid values fall back to
// UTC+08:00.
func (c *Instance) UTCOffset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Schedule.UTCOffset == "" {
		return clock.DefaultUTCOffset
	}
	offset, err := clock.ParseOffset(c.vals.Schedule.UTCOffset)
	if err != nil {
		log.Warn().Err(err).Msg("invalid schedule.utc_offset, using default")
		return clock.DefaultUTCOffset
	}
	return offset
}

func (c *Instance) SampleInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d := parseDuration("schedule.sample_interval", c.vals.Schedule.SampleInterval); d > 0 {
		return d
	}
	return DefaultSampleInterval
}
