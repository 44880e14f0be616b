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


package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/daily3albums/unlock/internal/telemetry"
	"github.com/daily3albums/unlock/pkg/api"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/service"
	"github.com/daily3albums/unlock/pkg/service/daemon"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine and serve its API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(opts, config.BaseDefaults, []io.Writer{
				zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()},
			})
			if err != nil {
				return err
			}
			defer telemetry.Close()

			lock := daemon.NewPidLock(afero.NewOsFs(), opts.dataDir())
			if err := lock.Acquire(); err != nil {
				return err //nolint:wrapcheck // already descriptive
			}
			defer func() {
				if err := lock.Release(); err != nil {
					log.Warn().Err(err).Msg("error removing pid file")
				}
			}()

			svc, err := service.Open(cfg, opts.dataDir())
			if err != nil {
				return fmt.Errorf("error starting service: %w", err)
			}
			svc.Start()
			defer svc.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().
				Str("version", config.AppVersion).
				Str("base_url", cfg.BaseURL()).
				Msg("unlockd started")

			if err := api.Start(ctx, cfg, svc); err != nil {
				return fmt.Errorf("error running api: %w", err)
			}
			return nil
		},
	}
}
