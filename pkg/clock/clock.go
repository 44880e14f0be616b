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

// Package clock maps instants onto the fixed-offset calendar used for daily
// unlocks and classifies them into the four daily windows.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultUTCOffset is Asia/Taipei, which has not observed DST since 1979.
	DefaultUTCOffset = 8 * time.Hour

	SecondsPerDay = 24 * 60 * 60
)

// ErrOverrideParse is returned for malformed or out-of-range debug times.
var ErrOverrideParse = errors.New("invalid override time")

var overrideRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2})(?::(\d{2}))?$`)

// Origin records whether a sample came from the wall clock or an override.
type Origin int

const (
	OriginReal Origin = iota
	OriginOverride
)

func (o Origin) String() string {
	switch o {
	case OriginReal:
		return "real"
	case OriginOverride:
		return "override"
	default:
		return "unknown"
	}
}

// TimeParts is a calendar reading in the fixed timezone.
type TimeParts struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Valid reports whether every field is inside its calendar range.
func (p TimeParts) Valid() bool {
	if p.Year < 1 || p.Year > 9999 {
		return false
	}
	if p.Month < 1 || p.Month > 12 {
		return false
	}
	if p.Day < 1 || p.Day > daysIn(p.Year, time.Month(p.Month)) {
		return false
	}
	return p.Hour >= 0 && p.Hour <= 23 &&
		p.Minute >= 0 && p.Minute <= 59 &&
		p.Second >= 0 && p.Second <= 59
}

// SecondsSinceMidnight returns H*3600 + M*60 + S.
func (p TimeParts) SecondsSinceMidnight() int {
	return p.Hour*3600 + p.Minute*60 + p.Second
}

// Sample is one resolved reading of the clock.
type Sample struct {
	DateKey              string
	Parts                TimeParts
	EpochMs              int64
	SecondsSinceMidnight int
	Window               Window
	Origin               Origin
}

// Instant returns the absolute moment of the sample.
func (s Sample) Instant() time.Time {
	return time.UnixMilli(s.EpochMs)
}

// Resolver converts between instants and fixed-offset calendar parts.
type Resolver struct {
	loc    *time.Location
	offset time.Duration
}

// NewResolver creates a Resolver for a fixed UTC offset. No daylight saving
// adjustment is ever applied.
func NewResolver(offset time.Duration) *Resolver {
	return &Resolver{
		offset: offset,
		loc:    time.FixedZone(FormatOffset(offset), int(offset/time.Second)),
	}
}

// Offset returns the configured UTC offset.
func (r *Resolver) Offset() time.Duration {
	return r.offset
}

// ToParts converts an instant to calendar parts in the fixed timezone.
func (r *Resolver) ToParts(t time.Time) TimeParts {
	local := t.In(r.loc)
	return TimeParts{
		Year:   local.Year(),
		Month:  int(local.Month()),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// ToInstant converts calendar parts in the fixed timezone to an instant.
func (r *Resolver) ToInstant(p TimeParts) time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, p.Second, 0, r.loc)
}

// SampleAt builds a Sample for an instant.
func (r *Resolver) SampleAt(t time.Time, origin Origin) Sample {
	parts := r.ToParts(t)
	secs := parts.SecondsSinceMidnight()
	return Sample{
		Parts:                parts,
		DateKey:              DateKey(parts),
		SecondsSinceMidnight: secs,
		EpochMs:              t.UnixMilli(),
		Window:               Classify(secs),
		Origin:               origin,
	}
}

// Resolve produces the current sample. A non-empty override fully replaces
// the real clock. If the override does not parse, the real-time sample is
// returned together with an error wrapping ErrOverrideParse.
func (r *Resolver) Resolve(override string, now time.Time) (Sample, error) {
	if override == "" {
		return r.SampleAt(now, OriginReal), nil
	}
	parts, err := ParseOverride(override)
	if err != nil {
		return r.SampleAt(now, OriginReal), err
	}
	return r.SampleAt(r.ToInstant(parts), OriginOverride), nil
}

// Shift moves an override string by delta, going through an absolute
// instant so that day and window rollovers are handled by the calendar.
func (r *Resolver) Shift(current string, delta time.Duration) (string, error) {
	parts, err := ParseOverride(current)
	if err != nil {
		return "", err
	}
	return FormatOverride(r.ToParts(r.ToInstant(parts).Add(delta))), nil
}

// ParseOverride parses YYYY-MM-DDTHH:MM[:SS]. Out-of-range fields are
// rejected rather than normalised.
func ParseOverride(s string) (TimeParts, error) {
	m := overrideRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeParts{}, fmt.Errorf("%w: %q does not match YYYY-MM-DDTHH:MM[:SS]", ErrOverrideParse, s)
	}
	nums := make([]int, 6)
	for i := 1; i <= 6; i++ {
		if m[i] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i])
		if err != nil {
			return TimeParts{}, fmt.Errorf("%w: %q: %w", ErrOverrideParse, s, err)
		}
		nums[i-1] = n
	}
	p := TimeParts{
		Year:   nums[0],
		Month:  nums[1],
		Day:    nums[2],
		Hour:   nums[3],
		Minute: nums[4],
		Second: nums[5],
	}
	if !p.Valid() {
		return TimeParts{}, fmt.Errorf("%w: %q is out of range", ErrOverrideParse, s)
	}
	return p, nil
}

// FormatOverride renders parts as YYYY-MM-DDTHH:MM:SS.
func FormatOverride(p TimeParts) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second)
}

// ParseOffset parses offsets such as "+08:00", "-05:30" or "Z".
func ParseOffset(s string) (time.Duration, error) {
	if s == "Z" || s == "" {
		return 0, nil
	}
	t, err := time.Parse("-07:00", s)
	if err != nil {
		return 0, fmt.Errorf("invalid utc offset %q: %w", s, err)
	}
	_, secs := t.Zone()
	return time.Duration(secs) * time.Second, nil
}

// FormatOffset renders an offset as +HH:MM.
func FormatOffset(offset time.Duration) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	mins := int(offset / time.Minute)
	return fmt.Sprintf("%c%02d:%02d", sign, mins/60, mins%60)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
