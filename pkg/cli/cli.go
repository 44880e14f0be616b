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


// Package cli builds the unlockd command tree.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/daily3albums/unlock/internal/telemetry"
	"github.com/daily3albums/unlock/pkg/api/client"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Options are the flags shared by every command.
type Options struct {
	DataDir string
	API     string
	BaseURL string
	Timeout time.Duration
	Offline bool
	Debug   bool
}

func (o *Options) dataDir() string {
	if o.DataDir != "" {
		return o.DataDir
	}
	return helpers.DataDir()
}

// Setup initializes the data directory, logging, the user config and
// error reporting.
//
//nolint:gocritic // config struct copied for immutability
func Setup(opts *Options, defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	dataDir := opts.dataDir()
	if err := helpers.EnsureDirectories(dataDir); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(dataDir, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dataDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if opts.BaseURL != "" {
		cfg.SetBaseURL(opts.BaseURL)
	}
	helpers.SetDebug(opts.Debug || cfg.DebugLogging())

	if err := telemetry.Init(telemetry.Options{
		Enabled:   cfg.ErrorReporting(),
		DSN:       cfg.TelemetryDSN(),
		SessionID: cfg.SessionID(),
		Version:   config.AppVersion,
		BaseURL:   cfg.BaseURL(),
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}

// remote returns a client for the daemon named by --api, or the configured
// listen address.
func remote(opts *Options, cfg *config.Instance) (*client.Client, error) {
	addr := opts.API
	if addr == "" {
		addr = cfg.Listen()
	}
	c, err := client.New(addr, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("error creating api client: %w", err)
	}
	return c, nil
}
