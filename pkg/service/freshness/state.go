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

package freshness

import (
	"errors"
	"fmt"
	"time"

	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/clock"
)

// Connectivity classifies whether a date-matching artifact is in hand.
type Connectivity int

const (
	Nominal Connectivity = iota
	Degraded
	Recovered
)

func (c Connectivity) String() string {
	switch c {
	case Nominal:
		return "NOMINAL"
	case Degraded:
		return "DEGRADED"
	case Recovered:
		return "RECOVERED"
	default:
		return fmt.Sprintf("CONNECTIVITY(%d)", int(c))
	}
}

// Source names where the displayed artifact came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceFresh    Source = "fresh"
	SourceLastGood Source = "last_known_good"
	SourceArchive  Source = "archive"
	SourceRaw      Source = "raw"
)

// StalenessError is returned for a well-formed artifact whose date is not
// the locally computed date key.
type StalenessError struct {
	Got  string
	Want string
}

func (e *StalenessError) Error() string {
	return fmt.Sprintf("artifact is for %s, expected %s", e.Got, e.Want)
}

// Message renders a failure for display next to degraded content.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var stale *StalenessError
	var te *artifact.TransportError
	switch {
	case errors.As(err, &stale):
		return fmt.Sprintf("Today's picks are not published yet (latest is %s).", stale.Got)
	case errors.As(err, &te) && te.StatusCode != 0:
		return fmt.Sprintf("Could not load today's picks (HTTP %d).", te.StatusCode)
	case errors.Is(err, artifact.ErrTransport):
		return "Could not reach the server."
	case errors.Is(err, artifact.ErrStructural):
		return "Today's picks are malformed: " + err.Error()
	default:
		return err.Error()
	}
}

const (
	DefaultFastRetry      = 30 * time.Second
	DefaultSlowRetry      = 2 * time.Minute
	DefaultFastTierWindow = 5 * time.Minute
	DefaultRecoveredHold  = 4 * time.Second
)

// Options holds the engine's timing constants.
type Options struct {
	FastRetry      time.Duration
	SlowRetry      time.Duration
	FastTierWindow time.Duration
	RecoveredHold  time.Duration
}

func DefaultOptions() Options {
	return Options{
		FastRetry:      DefaultFastRetry,
		SlowRetry:      DefaultSlowRetry,
		FastTierWindow: DefaultFastTierWindow,
		RecoveredHold:  DefaultRecoveredHold,
	}
}

// normalized fills unset values and keeps the slow tier at least as long
// as the fast tier.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.FastRetry <= 0 {
		o.FastRetry = d.FastRetry
	}
	if o.SlowRetry <= 0 {
		o.SlowRetry = d.SlowRetry
	}
	if o.SlowRetry < o.FastRetry {
		o.SlowRetry = o.FastRetry
	}
	if o.FastTierWindow <= 0 {
		o.FastTierWindow = d.FastTierWindow
	}
	if o.RecoveredHold <= 0 {
		o.RecoveredHold = d.RecoveredHold
	}
	return o
}

// RetryDelay returns the wait before the next retry, given how long the
// engine has been degraded.
func (o Options) RetryDelay(sinceDegraded time.Duration) time.Duration {
	o = o.normalized()
	if sinceDegraded < o.FastTierWindow {
		return o.FastRetry
	}
	return o.SlowRetry
}

// Snapshot is the caller-facing engine state.
type Snapshot struct {
	DegradedSince  time.Time
	Display        *artifact.Artifact
	LastGood       *artifact.Artifact
	Archived       *artifact.Artifact
	NextBoundary   clock.Boundary
	DisplaySource  Source
	Message        string
	ArchiveMessage string
	Sample         clock.Sample
	Countdown      time.Duration
	SlotIndex      int
	Connectivity   Connectivity
	InFlight       bool
	Pending        bool
	HardEmpty      bool
}

// VisibleSlot returns the slot of the display artifact unlocked by the
// current window.
func (s Snapshot) VisibleSlot() *artifact.Slot {
	if s.SlotIndex < 0 {
		return nil
	}
	return s.Display.SlotAt(s.SlotIndex)
}
