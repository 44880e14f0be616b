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

package helpers

import (
	"os"
	"path/filepath"
)

const (
	// DataEnv overrides the data directory.
	DataEnv = "DAILY3_DATA"
	AppName = "daily3albums"
	LogFile = "unlock.log"
)

// DataDir returns the directory holding config, logs and stored state.
func DataDir() string {
	if v := os.Getenv(DataEnv); v != "" {
		return v
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// LogDir returns the directory log files are written to.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// EnsureDirectories creates the data and log directories.
func EnsureDirectories(dataDir string) error {
	for _, dir := range []string{dataDir, LogDir(dataDir)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err //nolint:wrapcheck // path is in the error
		}
	}
	return nil
}
