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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultUTCOffset)
	now := time.Date(2024, 3, 20, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		override   string
		wantKey    string
		wantParts  TimeParts
		wantWindow Window
		wantOrigin Origin
		wantErr    bool
	}{
		{
			name:       "real time crosses midnight in fixed zone",
			override:   "",
			wantKey:    "2024-03-21",
			wantParts:  TimeParts{Year: 2024, Month: 3, Day: 21},
			wantWindow: Dormant,
			wantOrigin: OriginReal,
		},
		{
			name:       "override replaces real time",
			override:   "2024-03-20T23:59:50",
			wantKey:    "2024-03-20",
			wantParts:  TimeParts{Year: 2024, Month: 3, Day: 20, Hour: 23, Minute: 59, Second: 50},
			wantWindow: Window2,
			wantOrigin: OriginOverride,
		},
		{
			name:       "override without seconds",
			override:   "2024-02-29T06:00",
			wantKey:    "2024-02-29",
			wantParts:  TimeParts{Year: 2024, Month: 2, Day: 29, Hour: 6},
			wantWindow: Window0,
			wantOrigin: OriginOverride,
		},
		{
			name:       "invalid override falls back to real time",
			override:   "2024-02-30T06:00",
			wantKey:    "2024-03-21",
			wantParts:  TimeParts{Year: 2024, Month: 3, Day: 21},
			wantWindow: Dormant,
			wantOrigin: OriginReal,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := r.Resolve(tt.override, now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOverrideParse)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantKey, s.DateKey)
			assert.Equal(t, tt.wantParts, s.Parts)
			assert.Equal(t, tt.wantWindow, s.Window)
			assert.Equal(t, tt.wantOrigin, s.Origin)
			assert.Equal(t, tt.wantParts.SecondsSinceMidnight(), s.SecondsSinceMidnight)
		})
	}
}

func TestParseOverride_Rejects(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"2024-03-20",
		"2024/03/20T10:00",
		"2024-3-20T10:00",
		"2024-13-01T10:00",
		"2024-00-10T10:00",
		"2024-02-30T10:00",
		"2023-02-29T10:00",
		"2024-04-31T10:00",
		"2024-01-01T24:00",
		"2024-01-01T10:60",
		"2024-01-01T10:00:60",
		"2024-01-01T10:00:00Z",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			_, err := ParseOverride(in)
			require.ErrorIs(t, err, ErrOverrideParse)
		})
	}
}

func TestShift(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultUTCOffset)

	tests := []struct {
		name    string
		current string
		want    string
		delta   time.Duration
	}{
		{
			name:    "cross midnight",
			current: "2024-03-20T23:59:50",
			delta:   20 * time.Second,
			want:    "2024-03-21T00:00:10",
		},
		{
			name:    "cross window boundary",
			current: "2024-03-20T05:59:59",
			delta:   time.Second,
			want:    "2024-03-20T06:00:00",
		},
		{
			name:    "backwards across year",
			current: "2025-01-01T00:00:05",
			delta:   -10 * time.Second,
			want:    "2024-12-31T23:59:55",
		},
		{
			name:    "leap day",
			current: "2024-02-28T23:00",
			delta:   2 * time.Hour,
			want:    "2024-02-29T01:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Shift(tt.current, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.Shift("not a time", time.Second)
	require.ErrorIs(t, err, ErrOverrideParse)
}

func TestAddDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
		n    int
	}{
		{key: "2024-03-20", n: 1, want: "2024-03-21"},
		{key: "2024-03-20", n: -1, want: "2024-03-19"},
		{key: "2024-02-29", n: 1, want: "2024-03-01"},
		{key: "2024-03-01", n: -1, want: "2024-02-29"},
		{key: "2023-03-01", n: -1, want: "2023-02-28"},
		{key: "2024-12-31", n: 1, want: "2025-01-01"},
		{key: "2025-01-01", n: -1, want: "2024-12-31"},
		{key: "2024-01-31", n: 30, want: "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			got, err := AddDays(tt.key, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := AddDays("2024-02-30", 1)
	require.Error(t, err)
}

func TestOffset(t *testing.T) {
	t.Parallel()

	d, err := ParseOffset("+08:00")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, d)

	d, err = ParseOffset("-05:30")
	require.NoError(t, err)
	assert.Equal(t, -(5*time.Hour + 30*time.Minute), d)

	d, err = ParseOffset("Z")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	_, err = ParseOffset("8h")
	require.Error(t, err)

	assert.Equal(t, "+08:00", FormatOffset(8*time.Hour))
	assert.Equal(t, "-05:30", FormatOffset(-(5*time.Hour + 30*time.Minute)))
}

func TestToPartsFixedOffset(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultUTCOffset)
	p := r.ToParts(time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, TimeParts{Year: 2025, Month: 1, Day: 1}, p)

	back := r.ToInstant(p)
	assert.True(t, back.Equal(time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC)))
}
