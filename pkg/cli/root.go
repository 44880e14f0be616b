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
	"io"
	"runtime"

	"github.com/daily3albums/unlock/pkg/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Output goes to out, errors to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:           "unlockd",
		Short:         "Serve and inspect the Daily3Albums unlock schedule.",
		Long:          `unlockd follows the daily picks artifact, unlocks one slot per window and keeps showing the last good picks while the site is unreachable.`,
		Version:       config.AppVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.DataDir, "data-dir", "", "directory for config, logs and saved picks")
	pf.StringVar(&opts.API, "api", "", "address of a running daemon (default from config)")
	pf.StringVar(&opts.BaseURL, "base-url", "", "site base URL, overriding the config")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "request timeout")
	pf.BoolVar(&opts.Offline, "offline", false, "work on local files instead of a running daemon")
	pf.BoolVar(&opts.Debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newStatusCmd(opts),
		newRetryCmd(opts),
		newWatchCmd(opts),
		newOverrideCmd(opts),
		newArchiveCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("unlockd %s\n", config.AppVersion)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}
