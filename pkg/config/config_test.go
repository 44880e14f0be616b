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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(body), 0o600))
	return dir
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, CfgFile))
	assert.NotEmpty(t, cfg.SessionID())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL())
	assert.Equal(t, clock.DefaultUTCOffset, cfg.UTCOffset())
	assert.Equal(t, DefaultLastGoodBackend, cfg.LastGoodBackend())
	assert.Equal(t, DefaultListen, cfg.Listen())
	assert.Equal(t, 250*time.Millisecond, cfg.SampleInterval())

	// A second load keeps the generated session.
	again, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfg.SessionID(), again.SessionID())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	dir := writeConfig(t, `config_schema = 1
debug_logging = true

[session]
id = "abc"

[source]
base_url = "https://example.com/d3a/"
request_timeout = "7s"

[schedule]
utc_offset = "-05:30"
sample_interval = "250ms"

[freshness]
fast_retry = "10s"
slow_retry = "1m"
fast_tier_window = "3m"
recovered_hold = "2s"

[transition]
preload_timeout = "1s"
swap_delay = "0s"
reduce_motion = true

[storage]
last_good = "file"
path = "/var/lib/d3a/lkg.json"

[api]
listen = ":9000"
allowed_origins = ["https://example.com"]
retry_interval = "5s"
retry_burst = 1

[telemetry]
error_reporting = true
dsn = "https://key@sentry.example.com/1"
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, "abc", cfg.SessionID())
	assert.Equal(t, "https://example.com/d3a/", cfg.BaseURL())
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout())
	assert.Equal(t, -(5*time.Hour + 30*time.Minute), cfg.UTCOffset())
	assert.Equal(t, 250*time.Millisecond, cfg.SampleInterval())
	assert.Equal(t, 10*time.Second, cfg.FastRetry())
	assert.Equal(t, time.Minute, cfg.SlowRetry())
	assert.Equal(t, 3*time.Minute, cfg.FastTierWindow())
	assert.Equal(t, 2*time.Second, cfg.RecoveredHold())
	assert.Equal(t, time.Second, cfg.PreloadTimeout())
	assert.Equal(t, time.Duration(0), cfg.SwapDelay())
	assert.Equal(t, time.Duration(-1), cfg.SettleDelay())
	assert.True(t, cfg.ReduceMotion())
	assert.Equal(t, "file", cfg.LastGoodBackend())
	assert.Equal(t, "/var/lib/d3a/lkg.json", cfg.LastGoodPath("/ignored"))
	assert.Equal(t, ":9000", cfg.Listen())
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins())
	assert.Equal(t, 5*time.Second, cfg.RetryInterval())
	assert.Equal(t, 1, cfg.RetryBurst())
	assert.True(t, cfg.ErrorReporting())
	assert.Equal(t, "https://key@sentry.example.com/1", cfg.TelemetryDSN())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Parallel()
	dir := writeConfig(t, `config_schema = 1

[schedule]
utc_offset = "noon"
sample_interval = "soon"

[freshness]
fast_retry = "-3s"
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, clock.DefaultUTCOffset, cfg.UTCOffset())
	assert.Equal(t, DefaultSampleInterval, cfg.SampleInterval())
	assert.Equal(t, time.Duration(0), cfg.FastRetry())
	assert.Equal(t, filepath.Join("/data", LastGoodFile), cfg.LastGoodPath("/data"))
	assert.Equal(t, DefaultRetryInterval, cfg.RetryInterval())
	assert.Equal(t, DefaultRetryBurst, cfg.RetryBurst())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()
	dir := writeConfig(t, "config_schema = 99\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()
	dir := writeConfig(t, "config_schema = [\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetBaseURL("https://mirror.example.com/")
	cfg.SetDebugLogging(true)
	cfg.SetReduceMotion(true)
	cfg.SetErrorReporting(true)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/", reloaded.BaseURL())
	assert.True(t, reloaded.DebugLogging())
	assert.True(t, reloaded.ReduceMotion())
	assert.True(t, reloaded.ErrorReporting())
	assert.Equal(t, filepath.Join(dir, CfgFile), reloaded.Path())
}

func TestAllowedOriginsIsCopy(t *testing.T) {
	t.Parallel()
	dir := writeConfig(t, "config_schema = 1\n[api]\nallowed_origins = [\"a\"]\n")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	origins := cfg.AllowedOrigins()
	origins[0] = "mutated"
	assert.Equal(t, []string{"a"}, cfg.AllowedOrigins())
}
