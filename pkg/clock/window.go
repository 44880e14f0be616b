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

package clock

import (
	"fmt"
	"time"
)

const windowSpan = 6 * 60 * 60

// Window is one of the four daily unlock ranges.
type Window int

const (
	Dormant Window = iota
	Window0
	Window1
	Window2
)

// Classify maps seconds since midnight onto a window. Intervals are
// left-closed and right-open.
func Classify(secondsSinceMidnight int) Window {
	switch {
	case secondsSinceMidnight < windowSpan:
		return Dormant
	case secondsSinceMidnight < 2*windowSpan:
		return Window0
	case secondsSinceMidnight < 3*windowSpan:
		return Window1
	default:
		return Window2
	}
}

// SlotIndex returns the content slot unlocked by the window. Dormant has
// no slot.
func (w Window) SlotIndex() (int, bool) {
	switch w {
	case Window0, Window1, Window2:
		return int(w) - 1, true
	case Dormant:
		return -1, false
	default:
		return -1, false
	}
}

// Active reports whether the window unlocks a slot.
func (w Window) Active() bool {
	_, ok := w.SlotIndex()
	return ok
}

func (w Window) String() string {
	switch w {
	case Dormant:
		return "DORMANT"
	case Window0:
		return "WINDOW_0"
	case Window1:
		return "WINDOW_1"
	case Window2:
		return "WINDOW_2"
	default:
		return fmt.Sprintf("WINDOW(%d)", int(w))
	}
}

// Start returns the window's start as seconds since midnight.
func (w Window) Start() int {
	return int(w) * windowSpan
}

// Label is the HH:MM wall time the window opens at.
func (w Window) Label() string {
	return fmt.Sprintf("%02d:00", w.Start()/3600)
}

// Boundary describes the next window change.
type Boundary struct {
	At     time.Time
	Label  string
	Window Window
}

// NextBoundary returns the next window start after the sample. After
// WINDOW_2 the next boundary is the following midnight.
func (r *Resolver) NextBoundary(s Sample) Boundary {
	next := s.Window + 1
	nextSecs := next.Start()
	if s.Window == Window2 {
		next = Dormant
		nextSecs = SecondsPerDay
	}

	midnight := r.ToInstant(TimeParts{
		Year:  s.Parts.Year,
		Month: s.Parts.Month,
		Day:   s.Parts.Day,
	})
	return Boundary{
		At:     midnight.Add(time.Duration(nextSecs) * time.Second),
		Label:  next.Label(),
		Window: next,
	}
}

// Countdown returns the time left until the next boundary, never negative.
func (r *Resolver) Countdown(s Sample) time.Duration {
	left := r.NextBoundary(s).At.Sub(s.Instant())
	if left < 0 {
		return 0
	}
	return left
}
