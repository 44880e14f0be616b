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


package main

import (
	"fmt"
	"os"

	"github.com/daily3albums/unlock/pkg/cli"
)

func main() {
	if err := cli.NewRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
