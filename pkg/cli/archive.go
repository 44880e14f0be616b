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

	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/shared/httpclient"
	"github.com/spf13/cobra"
)

func newArchiveCmd(opts *Options) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List archived days published by the site.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(opts, config.BaseDefaults, nil)
			if err != nil {
				return err
			}

			timeout := opts.Timeout
			if timeout <= 0 {
				timeout = cfg.RequestTimeout()
			}
			loader, err := artifact.NewLoader(cfg.BaseURL(), httpclient.NewClient(timeout), nil)
			if err != nil {
				return fmt.Errorf("error creating loader: %w", err)
			}

			idx, err := loader.FetchIndex(cmd.Context())
			if err != nil {
				return fmt.Errorf("error fetching archive index: %w", err)
			}

			items := idx.Items
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printIndex(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 14, "number of days to list, newest first (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
