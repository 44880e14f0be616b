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

// Package artifact fetches and validates the generated daily data files.
package artifact

import (
	"encoding/json"
	"sort"
)

// Cover describes an item's artwork.
type Cover struct {
	OptimizedCoverURL string `json:"optimized_cover_url"`
	CoverVersion      string `json:"cover_version,omitempty"`
	HasCover          bool   `json:"has_cover"`
}

// Item is one curated pick.
type Item struct {
	FirstReleaseYear *int              `json:"first_release_year,omitempty"`
	Links            map[string]string `json:"links,omitempty"`
	Slot             string            `json:"slot"`
	Title            string            `json:"title"`
	ArtistCredit     string            `json:"artist_credit"`
	Reason           string            `json:"reason,omitempty"`
	Cover            Cover             `json:"cover"`
	Tags             []string          `json:"tags,omitempty"`
	Evidence         json.RawMessage   `json:"evidence,omitempty"`
}

// Slot is the item set unlocked by one active window.
type Slot struct {
	WindowLabel string `json:"window_label,omitempty"`
	Theme       string `json:"theme,omitempty"`
	Picks       []Item `json:"picks"`
	SlotID      int    `json:"slot_id"`
}

// CoverURLs returns the primary media references of the slot.
func (s *Slot) CoverURLs() []string {
	urls := make([]string, 0, len(s.Picks))
	for i := range s.Picks {
		c := s.Picks[i].Cover
		if c.HasCover && c.OptimizedCoverURL != "" {
			urls = append(urls, c.OptimizedCoverURL)
		}
	}
	return urls
}

// Artifact is one day's generated payload. It is never modified after
// parsing.
type Artifact struct {
	NowSlotID     *int            `json:"now_slot_id,omitempty"`
	SchemaVersion string          `json:"schema_version"`
	Date          string          `json:"date"`
	RunID         string          `json:"run_id"`
	ThemeOfDay    string          `json:"theme_of_day"`
	Slots         []Slot          `json:"slots"`
	Raw           json.RawMessage `json:"-"`
}

// SameAs reports whether two artifacts share an identity (date, run id).
func (a *Artifact) SameAs(other *Artifact) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Date == other.Date && a.RunID == other.RunID
}

// SlotAt returns the slot for an index, or nil if there is none.
func (a *Artifact) SlotAt(index int) *Slot {
	if a == nil || index < 0 || index >= len(a.Slots) {
		return nil
	}
	return &a.Slots[index]
}

// IndexEntry is one archived day listed in the archive index.
type IndexEntry struct {
	Date       string `json:"date"`
	RunID      string `json:"run_id,omitempty"`
	ThemeOfDay string `json:"theme_of_day,omitempty"`
	Slot       string `json:"slot,omitempty"`
	RunAt      string `json:"run_at,omitempty"`
}

// Index lists archived days, newest first.
type Index struct {
	SchemaVersion string       `json:"schema_version"`
	Items         []IndexEntry `json:"items"`
}

// Find returns the newest entry for a date.
func (ix *Index) Find(date string) (IndexEntry, bool) {
	for _, e := range ix.Items {
		if e.Date == date {
			return e, true
		}
	}
	return IndexEntry{}, false
}

func sortIndex(items []IndexEntry) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
}
