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


package daemon

import (
	"os"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(alive func(int) bool) (*PidLock, afero.Fs) {
	fs := afero.NewMemMapFs()
	l := NewPidLock(fs, "/data")
	l.alive = alive
	return l, fs
}

func TestAcquireAndRelease(t *testing.T) {
	t.Parallel()

	l, fs := newTestLock(func(pid int) bool { return pid == os.Getpid() })
	assert.False(t, l.Running())

	require.NoError(t, l.Acquire())
	pid, err := l.Pid()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, l.Running())

	require.ErrorIs(t, l.Acquire(), ErrAlreadyRunning)

	require.NoError(t, l.Release())
	exists, err := afero.Exists(fs, "/data/"+PidFile)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcquireReplacesStaleFile(t *testing.T) {
	t.Parallel()

	l, fs := newTestLock(func(int) bool { return false })
	require.NoError(t, afero.WriteFile(fs, "/data/"+PidFile, []byte("424242\n"), 0o600))

	require.NoError(t, l.Acquire())
	pid, err := l.Pid()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestReleaseLeavesOtherProcessFile(t *testing.T) {
	t.Parallel()

	l, fs := newTestLock(func(int) bool { return true })
	other := strconv.Itoa(os.Getpid() + 1)
	require.NoError(t, afero.WriteFile(fs, "/data/"+PidFile, []byte(other), 0o600))

	require.NoError(t, l.Release())
	data, err := afero.ReadFile(fs, "/data/"+PidFile)
	require.NoError(t, err)
	assert.Equal(t, other, string(data))
}

func TestPidErrors(t *testing.T) {
	t.Parallel()

	l, fs := newTestLock(func(int) bool { return true })
	pid, err := l.Pid()
	require.NoError(t, err)
	assert.Zero(t, pid)

	require.NoError(t, afero.WriteFile(fs, "/data/"+PidFile, []byte("garbage"), 0o600))
	_, err = l.Pid()
	require.Error(t, err)
	assert.False(t, l.Running())
}
