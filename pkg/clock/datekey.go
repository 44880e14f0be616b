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

const dateKeyLayout = "2006-01-02"

// DateKey renders the calendar date of parts as YYYY-MM-DD.
func DateKey(p TimeParts) string {
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
}

// ParseDateKey parses a YYYY-MM-DD key into midnight parts.
func ParseDateKey(key string) (TimeParts, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return TimeParts{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return TimeParts{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// AddDays shifts a date key by n calendar days.
func AddDays(key string, n int) (string, error) {
	p, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	t := time.Date(p.Year, time.Month(p.Month), p.Day+n, 0, 0, 0, 0, time.UTC)
	return t.Format(dateKeyLayout), nil
}
