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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daily3albums/unlock/pkg/api"
	"github.com/daily3albums/unlock/pkg/api/client"
	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/service"
	"github.com/daily3albums/unlock/pkg/service/freshness"
	"github.com/spf13/cobra"
)

const settlePoll = 50 * time.Millisecond

func newStatusCmd(opts *Options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current window, connectivity and unlocked picks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(opts, config.BaseDefaults, nil)
			if err != nil {
				return err
			}

			var st *models.StateResponse
			if opts.Offline {
				st, err = localState(cmd.Context(), cfg, opts.dataDir())
			} else {
				st, err = remoteState(cmd.Context(), opts, cfg)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), st)
			}
			return printState(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the state document as JSON")
	return cmd
}

func remoteState(ctx context.Context, opts *Options, cfg *config.Instance) (*models.StateResponse, error) {
	c, err := remote(opts, cfg)
	if err != nil {
		return nil, err
	}
	st, err := c.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching state (is the daemon running? try --offline): %w", err)
	}
	return st, nil
}

// localState runs the engine in process until its first fetches settle.
func localState(ctx context.Context, cfg *config.Instance, dataDir string) (*models.StateResponse, error) {
	svc, err := service.Open(cfg, dataDir)
	if err != nil {
		return nil, fmt.Errorf("error opening service: %w", err)
	}
	svc.Start()
	defer svc.Stop()

	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()
	for settling(svc.State().Engine) {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, client.ErrRequestTimeout
			}
			return nil, client.ErrRequestCancelled
		case <-ticker.C:
		}
	}

	svc.Tick()
	st := api.NewStateResponse(svc.State())
	return &st, nil
}

// settling reports whether a fetch started at mount is still outstanding.
//
//nolint:gocritic // snapshot is read once per poll
func settling(snap freshness.Snapshot) bool {
	if snap.InFlight {
		return true
	}
	return !snap.Sample.Window.Active() && snap.Archived == nil && snap.ArchiveMessage == ""
}

func newRetryCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Ask the daemon to refetch today's picks now.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(opts, config.BaseDefaults, nil)
			if err != nil {
				return err
			}
			c, err := remote(opts, cfg)
			if err != nil {
				return err
			}
			resp, err := c.Retry(cmd.Context())
			if err != nil {
				return fmt.Errorf("error requesting retry: %w", err)
			}
			if resp.Joined {
				cmd.Printf("Joined the fetch already in flight (%s)\n", connectivityLabel(resp.Connectivity))
			} else {
				cmd.Printf("Retry started (%s)\n", connectivityLabel(resp.Connectivity))
			}
			return nil
		},
	}
}

func newWatchCmd(opts *Options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print daemon notifications as they happen.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(opts, config.BaseDefaults, nil)
			if err != nil {
				return err
			}
			c, err := remote(opts, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			seen := 0
			err = c.Watch(ctx, func(n models.Notification) bool {
				printNotification(cmd.OutOrStdout(), n)
				seen++
				return count <= 0 || seen < count
			})
			if errors.Is(err, client.ErrRequestCancelled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many notifications")
	return cmd
}
