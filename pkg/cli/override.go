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
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/override"
	"github.com/daily3albums/unlock/pkg/service"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// overrideTarget edits the debug override either through the daemon or
// directly in the session directory.
type overrideTarget interface {
	get(cmd *cobra.Command) (*models.OverrideResponse, error)
	set(cmd *cobra.Command, value *string) (*models.OverrideResponse, error)
	shift(cmd *cobra.Command, delta time.Duration) (*models.OverrideResponse, error)
}

type remoteOverride struct {
	opts *Options
	cfg  *config.Instance
}

func (r remoteOverride) get(cmd *cobra.Command) (*models.OverrideResponse, error) {
	c, err := remote(r.opts, r.cfg)
	if err != nil {
		return nil, err
	}
	return c.Override(cmd.Context()) //nolint:wrapcheck // wrapped by the caller
}

func (r remoteOverride) set(cmd *cobra.Command, value *string) (*models.OverrideResponse, error) {
	c, err := remote(r.opts, r.cfg)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return c.ClearOverride(cmd.Context()) //nolint:wrapcheck // wrapped by the caller
	}
	return c.SetOverride(cmd.Context(), *value) //nolint:wrapcheck // wrapped by the caller
}

func (r remoteOverride) shift(cmd *cobra.Command, delta time.Duration) (*models.OverrideResponse, error) {
	c, err := remote(r.opts, r.cfg)
	if err != nil {
		return nil, err
	}
	return c.ShiftOverride(cmd.Context(), delta) //nolint:wrapcheck // wrapped by the caller
}

// localOverride works on the same session files the daemon samples, so a
// running daemon picks the change up on its next tick.
type localOverride struct {
	store  *override.Store
	source *override.Source
}

func newLocalOverride(cfg *config.Instance, dataDir string) localOverride {
	resolver := clock.NewResolver(cfg.UTCOffset())
	session := override.NewFileStore(afero.NewOsFs(), service.SessionDir(dataDir, cfg.SessionID()))
	store := override.NewStore(session, resolver)
	return localOverride{
		store:  store,
		source: override.NewSource(store, resolver, nil),
	}
}

func (l localOverride) response() *models.OverrideResponse {
	resp := &models.OverrideResponse{
		Time: clock.FormatOverride(l.source.Sample().Parts),
	}
	if v, ok := l.store.Load(); ok {
		resp.Value = &v
	}
	return resp
}

func (l localOverride) get(*cobra.Command) (*models.OverrideResponse, error) {
	return l.response(), nil
}

func (l localOverride) set(_ *cobra.Command, value *string) (*models.OverrideResponse, error) {
	if err := l.store.Save(value); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller
	}
	return l.response(), nil
}

func (l localOverride) shift(_ *cobra.Command, delta time.Duration) (*models.OverrideResponse, error) {
	current := clock.FormatOverride(l.source.Sample().Parts)
	next, err := l.store.Shift(current, delta)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller
	}
	return l.set(nil, &next)
}

func newOverrideCmd(opts *Options) *cobra.Command {
	target := func() (overrideTarget, error) {
		cfg, err := Setup(opts, config.BaseDefaults, nil)
		if err != nil {
			return nil, err
		}
		if opts.Offline {
			return newLocalOverride(cfg, opts.dataDir()), nil
		}
		return remoteOverride{opts: opts, cfg: cfg}, nil
	}

	cmd := &cobra.Command{
		Use:   "override",
		Short: "Show or change the debug time override.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := target()
			if err != nil {
				return err
			}
			resp, err := t.get(cmd)
			if err != nil {
				return fmt.Errorf("error reading override: %w", err)
			}
			printOverride(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set YYYY-MM-DDTHH:MM[:SS]",
			Short: "Pin the clock to a local time.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := target()
				if err != nil {
					return err
				}
				resp, err := t.set(cmd, &args[0])
				if err != nil {
					return fmt.Errorf("error setting override: %w", err)
				}
				printOverride(cmd.OutOrStdout(), resp)
				return nil
			},
		},
		&cobra.Command{
			Use:   "shift DURATION",
			Short: "Move the clock by a duration such as 6h or -30m.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				delta, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", args[0], err)
				}
				if delta == 0 {
					return fmt.Errorf("invalid duration %q: must not be zero", args[0])
				}
				t, err := target()
				if err != nil {
					return err
				}
				resp, err := t.shift(cmd, delta)
				if err != nil {
					return fmt.Errorf("error shifting override: %w", err)
				}
				printOverride(cmd.OutOrStdout(), resp)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Return to the real clock.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				t, err := target()
				if err != nil {
					return err
				}
				resp, err := t.set(cmd, nil)
				if err != nil {
					return fmt.Errorf("error clearing override: %w", err)
				}
				printOverride(cmd.OutOrStdout(), resp)
				return nil
			},
		},
	)
	return cmd
}
