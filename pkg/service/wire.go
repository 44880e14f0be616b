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

package service

import (
	"fmt"
	"path/filepath"

	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/lastgood"
	"github.com/daily3albums/unlock/pkg/override"
	"github.com/daily3albums/unlock/pkg/service/freshness"
	"github.com/daily3albums/unlock/pkg/service/transition"
	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/spf13/afero"
)

const SessionsDir = "sessions"

// SessionDir is where a session's override is kept.
func SessionDir(dataDir, sessionID string) string {
	return filepath.Join(dataDir, SessionsDir, sessionID)
}

// OptionsFromConfig reads timing settings. Unset values keep the package
// defaults.
func OptionsFromConfig(cfg *config.Instance) Options {
	return Options{
		Freshness: freshness.Options{
			FastRetry:      cfg.FastRetry(),
			SlowRetry:      cfg.SlowRetry(),
			FastTierWindow: cfg.FastTierWindow(),
			RecoveredHold:  cfg.RecoveredHold(),
		},
		Transition: transition.Options{
			PreloadTimeout: cfg.PreloadTimeout(),
			SwapDelay:      cfg.SwapDelay(),
			SettleDelay:    cfg.SettleDelay(),
			ReduceMotion:   cfg.ReduceMotion(),
		},
		UTCOffset:      cfg.UTCOffset(),
		SampleInterval: cfg.SampleInterval(),
	}
}

// Open builds a Service backed by the network and the data directory.
func Open(cfg *config.Instance, dataDir string) (*Service, error) {
	client := httpclient.NewClient(cfg.RequestTimeout())

	loader, err := artifact.NewLoader(cfg.BaseURL(), client, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact loader: %w", err)
	}

	preloader, err := transition.NewHTTPPreloader(client, cfg.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create cover preloader: %w", err)
	}

	store, err := lastgood.Open(cfg.LastGoodBackend(), cfg.LastGoodPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open last-known-good store: %w", err)
	}

	session := override.NewFileStore(afero.NewOsFs(), SessionDir(dataDir, cfg.SessionID()))

	return New(Deps{
		Fetcher:   loader,
		Preloader: preloader,
		LastGood:  store,
		Session:   session,
	}, OptionsFromConfig(cfg)), nil
}
