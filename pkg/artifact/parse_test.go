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

package artifact

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func intPtr(n int) *int { return &n }

func TestParseSlots(t *testing.T) {
	t.Parallel()

	art, err := Parse(readFixture(t, "today.json"))
	require.NoError(t, err)

	want := &Artifact{
		SchemaVersion: "1.2",
		Date:          "2024-03-20",
		RunID:         "run-20240320-a",
		ThemeOfDay:    "Night Drives",
		NowSlotID:     intPtr(1),
		Slots: []Slot{
			{
				SlotID:      0,
				WindowLabel: "06:00",
				Theme:       "Sunrise",
				Picks: []Item{{
					Slot:             "A",
					Title:            "First",
					ArtistCredit:     "Artist A",
					FirstReleaseYear: intPtr(1994),
					Tags:             []string{"dream pop", "7", "shoegaze"},
					Cover: Cover{
						HasCover:          true,
						OptimizedCoverURL: "covers/a.jpg",
						CoverVersion:      "3",
					},
					Links:    map[string]string{"musicbrainz": "https://musicbrainz.org/release-group/a"},
					Evidence: json.RawMessage(`{"sources": ["lastfm"]}`),
					Reason:   "Opens the day softly.",
				}},
			},
			{
				SlotID:      1,
				WindowLabel: "12:00",
				Theme:       "Noon",
				Picks: []Item{{
					Slot:         "B",
					Title:        "Second",
					ArtistCredit: "Artist B",
					Cover:        Cover{HasCover: true, OptimizedCoverURL: "covers/b.jpg"},
				}},
			},
			{
				SlotID:      2,
				WindowLabel: "18:00",
				Theme:       "After Dark",
				Picks: []Item{{
					Slot:         "C",
					Title:        "Third",
					ArtistCredit: "Artist C",
				}},
			},
		},
	}

	if diff := cmp.Diff(want, art, cmpopts.IgnoreFields(Artifact{}, "Raw")); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.JSONEq(t, string(readFixture(t, "today.json")), string(art.Raw))
}

func TestParseFlatPicks(t *testing.T) {
	t.Parallel()

	art, err := Parse(readFixture(t, "flat_picks.json"))
	require.NoError(t, err)

	assert.Equal(t, "1", art.SchemaVersion)
	assert.Nil(t, art.NowSlotID)
	require.Len(t, art.Slots, 3)

	got := make([]string, 0, len(art.Slots))
	for i, s := range art.Slots {
		assert.Equal(t, i, s.SlotID)
		assert.Equal(t, "Rainy Day", s.Theme)
		require.Len(t, s.Picks, 1)
		got = append(got, s.Picks[0].Slot+":"+s.Picks[0].Title)
	}
	assert.Equal(t, []string{"A:Alpha", "B:Beta", "C:Gamma"}, got)
	assert.Equal(t, []string{"06:00", "12:00", "18:00"}, []string{
		art.Slots[0].WindowLabel, art.Slots[1].WindowLabel, art.Slots[2].WindowLabel,
	})
}

func TestParseStructuralErrors(t *testing.T) {
	t.Parallel()

	const cover = `{"has_cover": true, "optimized_cover_url": "c.jpg"}`

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{
			name:    "not json",
			payload: `{"schema_version": `,
		},
		{
			name:    "wrong date type",
			payload: `{"schema_version": "1", "date": 20240320, "run_id": "r", "picks": [{"slot": "A", "cover": ` + cover + `}]}`,
		},
		{
			name:    "missing schema version",
			payload: `{"date": "2024-03-20", "run_id": "r", "picks": [{"slot": "A", "cover": ` + cover + `}]}`,
			field:   "schema_version",
		},
		{
			name:    "bad date key",
			payload: `{"schema_version": "1", "date": "2024-3-20", "run_id": "r", "picks": [{"slot": "A", "cover": ` + cover + `}]}`,
			field:   "date",
		},
		{
			name:    "missing run id",
			payload: `{"schema_version": "1", "date": "2024-03-20", "picks": [{"slot": "A", "cover": ` + cover + `}]}`,
			field:   "run_id",
		},
		{
			name:    "no slots or picks",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r"}`,
			field:   "picks",
		},
		{
			name:    "empty slot",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "slots": [{"slot_id": 0, "picks": []}]}`,
			field:   "slots[0].picks",
		},
		{
			name:    "missing cover",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "picks": [{"slot": "A"}]}`,
			field:   "picks[0].cover",
		},
		{
			name:    "missing has_cover",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "picks": [{"slot": "A", "cover": {"optimized_cover_url": ""}}]}`,
			field:   "picks[0].cover.has_cover",
		},
		{
			name:    "missing cover url",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "picks": [{"slot": "A", "cover": {"has_cover": false}}]}`,
			field:   "picks[0].cover.optimized_cover_url",
		},
		{
			name:    "unknown slot letter",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "picks": [{"slot": "D", "cover": ` + cover + `}]}`,
			field:   "picks[0].slot",
		},
		{
			name: "duplicate slot letter",
			payload: `{"schema_version": "1", "date": "2024-03-20", "run_id": "r", "picks": [` +
				`{"slot": "A", "cover": ` + cover + `}, {"slot": "A", "cover": ` + cover + `}]}`,
			field: "picks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			art, err := Parse([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, art)
			assert.ErrorIs(t, err, ErrStructural)
			assert.NotErrorIs(t, err, ErrTransport)

			if tt.field == "" {
				return
			}
			var se *StructuralError
			require.ErrorAs(t, err, &se)
			fields := make([]string, 0, len(se.Fields))
			for _, fe := range se.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseDegradesOptionalFields(t *testing.T) {
	t.Parallel()

	payload := `{
		"schema_version": "2",
		"date": "2024-03-20",
		"run_id": "r",
		"theme_of_day": {"unexpected": true},
		"now_slot_id": "soon",
		"picks": [{
			"slot": "A",
			"title": null,
			"tags": "not-a-list",
			"links": [1, 2],
			"evidence": null,
			"cover": {"has_cover": false, "optimized_cover_url": "", "cover_version": {"v": 1}}
		}]
	}`

	art, err := Parse([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, art.ThemeOfDay)
	assert.Nil(t, art.NowSlotID)

	item := art.Slots[0].Picks[0]
	assert.Empty(t, item.Title)
	assert.Nil(t, item.Tags)
	assert.Nil(t, item.Links)
	assert.Nil(t, item.Evidence)
	assert.Empty(t, item.Cover.CoverVersion)
}

func TestSlotHelpers(t *testing.T) {
	t.Parallel()

	art, err := Parse(readFixture(t, "today.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"covers/a.jpg"}, art.SlotAt(0).CoverURLs())
	assert.Empty(t, art.SlotAt(2).CoverURLs())
	assert.Nil(t, art.SlotAt(3))
	assert.Nil(t, art.SlotAt(-1))

	var none *Artifact
	assert.Nil(t, none.SlotAt(0))

	other := &Artifact{Date: art.Date, RunID: art.RunID}
	assert.True(t, art.SameAs(other))
	other.RunID = "different"
	assert.False(t, art.SameAs(other))
	assert.False(t, art.SameAs(nil))
	assert.True(t, none.SameAs(nil))
}

func TestParseIndex(t *testing.T) {
	t.Parallel()

	ix, err := ParseIndex(readFixture(t, "index.json"))
	require.NoError(t, err)

	dates := make([]string, 0, len(ix.Items))
	for _, e := range ix.Items {
		dates = append(dates, e.Date)
	}
	assert.Equal(t, []string{"2024-03-20", "2024-03-19", "2024-03-18"}, dates)

	e, ok := ix.Find("2024-03-20")
	require.True(t, ok)
	assert.Equal(t, "run-20", e.RunID)
	assert.Equal(t, "C", e.Slot)

	_, ok = ix.Find("2023-01-01")
	assert.False(t, ok)

	_, err = ParseIndex([]byte(`{"schema_version": "1"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructural))
}
