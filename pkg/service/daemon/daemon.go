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


// Package daemon keeps a single serving process per data directory using a
// PID file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const PidFile = "unlockd.pid"

var ErrAlreadyRunning = errors.New("unlockd is already running")

type PidLock struct {
	fs   afero.Fs
	path string
	// alive reports whether a process exists. Replaced in tests.
	alive func(pid int) bool
}

func NewPidLock(fs afero.Fs, dataDir string) *PidLock {
	return &PidLock{
		fs:    fs,
		path:  filepath.Join(dataDir, PidFile),
		alive: processAlive,
	}
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Pid returns the PID recorded in the file, or 0 when there is none.
func (l *PidLock) Pid() (int, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error reading pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("error parsing pid: %w", err)
	}
	return pid, nil
}

// Running returns true if the recorded process is still alive.
func (l *PidLock) Running() bool {
	pid, err := l.Pid()
	if err != nil || pid == 0 {
		return false
	}
	return l.alive(pid)
}

// Acquire records the current process. A stale file left by a crashed
// process is replaced.
func (l *PidLock) Acquire() error {
	if l.Running() {
		pid, _ := l.Pid()
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	pid := os.Getpid()
	if err := afero.WriteFile(l.fs, l.path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	log.Debug().Int("pid", pid).Str("path", l.path).Msg("daemon: pid file written")
	return nil
}

// Release removes the PID file if it still names this process.
func (l *PidLock) Release() error {
	pid, err := l.Pid()
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	if err := l.fs.Remove(l.path); err != nil {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}
