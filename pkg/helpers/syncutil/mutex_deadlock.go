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

//go:build deadlock

// Package syncutil holds the locks used by the engine and its stores. Build
// with -tags=deadlock to swap in go-deadlock's detecting implementations.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether the detecting implementation is compiled in.
const DeadlockEnabled = true

func init() {
	// Fetches hold no locks, so any lock held this long is a bug.
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
}

// Mutex detects lock-order inversions and long holds.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex detects lock-order inversions and long holds.
type RWMutex struct {
	deadlock.RWMutex
}
