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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("datekey", validateDateKey)
	v.RegisterStructValidation(validateArtifactShape, wireArtifact{})
	return v
}

func validateDateKey(fl validator.FieldLevel) bool {
	_, err := clock.ParseDateKey(fl.Field().String())
	return err == nil
}

type wireCover struct {
	HasCover          *bool           `json:"has_cover" validate:"required"`
	OptimizedCoverURL *string         `json:"optimized_cover_url" validate:"required"`
	CoverVersion      json.RawMessage `json:"cover_version"`
}

type wireItem struct {
	Cover            *wireCover      `json:"cover" validate:"required"`
	Slot             string          `json:"slot" validate:"omitempty,oneof=A B C"`
	Title            json.RawMessage `json:"title"`
	ArtistCredit     json.RawMessage `json:"artist_credit"`
	FirstReleaseYear json.RawMessage `json:"first_release_year"`
	Tags             json.RawMessage `json:"tags"`
	Links            json.RawMessage `json:"links"`
	Evidence         json.RawMessage `json:"evidence"`
	Reason           json.RawMessage `json:"reason"`
}

type wireSlot struct {
	SlotID      json.RawMessage `json:"slot_id"`
	WindowLabel json.RawMessage `json:"window_label"`
	Theme       json.RawMessage `json:"theme"`
	Picks       []wireItem      `json:"picks" validate:"min=1,dive"`
}

type wireArtifact struct {
	SchemaVersion json.RawMessage `json:"schema_version"`
	ThemeOfDay    json.RawMessage `json:"theme_of_day"`
	NowSlotID     json.RawMessage `json:"now_slot_id"`
	Date          string          `json:"date" validate:"required,datekey"`
	RunID         string          `json:"run_id" validate:"required"`
	Slots         []wireSlot      `json:"slots" validate:"omitempty,dive"`
	Picks         []wireItem      `json:"picks" validate:"omitempty,dive"`
}

func validateArtifactShape(sl validator.StructLevel) {
	w, ok := sl.Current().Interface().(wireArtifact)
	if !ok {
		return
	}
	if lenientString(w.SchemaVersion) == "" {
		sl.ReportError(w.SchemaVersion, "schema_version", "SchemaVersion", "required", "")
	}
	if len(w.Slots) == 0 && len(w.Picks) == 0 {
		sl.ReportError(w.Picks, "picks", "Picks", "required", "")
		return
	}
	if len(w.Slots) == 0 {
		seen := make(map[string]bool, len(w.Picks))
		for _, p := range w.Picks {
			if p.Slot == "" {
				continue
			}
			if seen[p.Slot] {
				sl.ReportError(w.Picks, "picks", "Picks", "unique_slot", p.Slot)
				return
			}
			seen[p.Slot] = true
		}
	}
}

// Parse decodes and validates an artifact payload.
func Parse(data []byte) (*Artifact, error) {
	var w wireArtifact
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &StructuralError{Err: err}
	}
	if err := validate.Struct(w); err != nil {
		return nil, newStructuralError(err)
	}

	art := &Artifact{
		SchemaVersion: lenientString(w.SchemaVersion),
		Date:          w.Date,
		RunID:         w.RunID,
		ThemeOfDay:    lenientString(w.ThemeOfDay),
		NowSlotID:     lenientInt(w.NowSlotID),
		Raw:           append(json.RawMessage(nil), data...),
	}
	if len(w.Slots) > 0 {
		art.Slots = buildSlots(w.Slots)
	} else {
		art.Slots = slotsFromPicks(w.Picks, art.ThemeOfDay)
	}
	return art, nil
}

func buildSlots(ws []wireSlot) []Slot {
	slots := make([]Slot, len(ws))
	for i, s := range ws {
		id := i
		if v := lenientInt(s.SlotID); v != nil {
			id = *v
		}
		slots[i] = Slot{
			SlotID:      id,
			WindowLabel: lenientString(s.WindowLabel),
			Theme:       lenientString(s.Theme),
			Picks:       buildItems(s.Picks),
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].SlotID < slots[j].SlotID
	})
	return slots
}

// slotsFromPicks turns the flat fallback list into one slot per pick,
// ordered by slot letter.
func slotsFromPicks(picks []wireItem, theme string) []Slot {
	items := buildItems(picks)
	sort.SliceStable(items, func(i, j int) bool {
		return slotOrder(items[i].Slot) < slotOrder(items[j].Slot)
	})
	slots := make([]Slot, len(items))
	for i := range items {
		slots[i] = Slot{
			SlotID:      i,
			WindowLabel: clock.Window(i + 1).Label(),
			Theme:       theme,
			Picks:       []Item{items[i]},
		}
	}
	return slots
}

func slotOrder(letter string) int {
	if letter == "" {
		return 'Z' + 1
	}
	return int(letter[0])
}

func buildItems(ws []wireItem) []Item {
	items := make([]Item, len(ws))
	for i, w := range ws {
		items[i] = Item{
			Slot:             w.Slot,
			Title:            lenientString(w.Title),
			ArtistCredit:     lenientString(w.ArtistCredit),
			FirstReleaseYear: lenientInt(w.FirstReleaseYear),
			Tags:             lenientStrings(w.Tags),
			Links:            lenientLinks(w.Links),
			Reason:           lenientString(w.Reason),
			Cover: Cover{
				HasCover:          *w.Cover.HasCover,
				OptimizedCoverURL: *w.Cover.OptimizedCoverURL,
				CoverVersion:      lenientString(w.Cover.CoverVersion),
			},
		}
		if len(w.Evidence) > 0 && !isNull(w.Evidence) {
			items[i].Evidence = w.Evidence
		}
	}
	return items
}

type wireIndex struct {
	SchemaVersion json.RawMessage   `json:"schema_version"`
	Items         []json.RawMessage `json:"items"`
}

// ParseIndex decodes the archive index. Entries without a valid date are
// skipped.
func ParseIndex(data []byte) (*Index, error) {
	var w wireIndex
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &StructuralError{Source: "index", Err: err}
	}
	if w.Items == nil {
		return nil, &StructuralError{
			Source: "index",
			Fields: []FieldError{{Field: "items", Tag: "required", Message: "items is required"}},
		}
	}

	ix := &Index{
		SchemaVersion: lenientString(w.SchemaVersion),
		Items:         make([]IndexEntry, 0, len(w.Items)),
	}
	for i, raw := range w.Items {
		var e struct {
			Date       json.RawMessage `json:"date"`
			RunID      json.RawMessage `json:"run_id"`
			ThemeOfDay json.RawMessage `json:"theme_of_day"`
			Slot       json.RawMessage `json:"slot"`
			RunAt      json.RawMessage `json:"run_at"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Debug().Err(err).Msgf("artifact: skipping index entry %d", i)
			continue
		}
		date := lenientString(e.Date)
		if _, err := clock.ParseDateKey(date); err != nil {
			log.Debug().Err(err).Msgf("artifact: skipping index entry %d", i)
			continue
		}
		ix.Items = append(ix.Items, IndexEntry{
			Date:       date,
			RunID:      lenientString(e.RunID),
			ThemeOfDay: lenientString(e.ThemeOfDay),
			Slot:       lenientString(e.Slot),
			RunAt:      lenientString(e.RunAt),
		})
	}
	sortIndex(ix.Items)
	return ix, nil
}

func newStructuralError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &StructuralError{Err: err}
	}
	se := &StructuralError{
		Err:    err,
		Fields: make([]FieldError, len(errs)),
	}
	for i, fe := range errs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		se.Fields[i] = FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Message: formatFieldError(field, fe),
		}
	}
	return se
}

func formatFieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datekey":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", field, fe.Value())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "unique_slot":
		return fmt.Sprintf("%s has more than one pick for slot %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// lenientString accepts a JSON string or number and returns "" for
// anything else.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func lenientInt(raw json.RawMessage) *int {
	s := lenientString(raw)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func lenientStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var vals []json.RawMessage
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := lenientString(v); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lenientLinks(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var vals map[string]json.RawMessage
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		if s := lenientString(v); s != "" {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
