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

package api

import (
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/service"
)

// NewStateResponse renders the service state as the /api/state document.
//
//nolint:gocritic // state is a read-only snapshot
func NewStateResponse(st service.State) models.StateResponse {
	snap := st.Engine
	sample := snap.Sample

	resp := models.StateResponse{
		Artifact:       snap.Display,
		Connectivity:   snap.Connectivity.String(),
		DisplaySource:  string(snap.DisplaySource),
		Window:         sample.Window.String(),
		Message:        snap.Message,
		ArchiveMessage: snap.ArchiveMessage,
		HardEmpty:      snap.HardEmpty,
		Clock: models.ClockResponse{
			Override:             st.Override,
			Origin:               sample.Origin.String(),
			DateKey:              sample.DateKey,
			Time:                 clock.FormatOverride(sample.Parts),
			SecondsSinceMidnight: sample.SecondsSinceMidnight,
		},
		NextBoundary: models.BoundaryResponse{
			At:               snap.NextBoundary.At.UTC().Format(time.RFC3339),
			Label:            snap.NextBoundary.Label,
			Window:           snap.NextBoundary.Window.String(),
			CountdownSeconds: int64(snap.Countdown / time.Second),
		},
		Visible: models.VisibleResponse{
			Slot:          st.Transition.Visible.Slot(),
			SlotIndex:     st.Transition.Visible.SlotIndex,
			Phase:         st.Transition.Phase.String(),
			InTransition:  st.Transition.InTransition,
			ReducedMotion: st.Transition.ReduceMotion,
		},
	}
	if snap.SlotIndex >= 0 {
		idx := snap.SlotIndex
		resp.SlotIndex = &idx
	}
	if !snap.DegradedSince.IsZero() {
		since := snap.DegradedSince.UTC().Format(time.RFC3339)
		resp.DegradedSince = &since
	}
	return resp
}

func overrideResponse(value *string, sample clock.Sample) models.OverrideResponse {
	return models.OverrideResponse{
		Value: value,
		Time:  clock.FormatOverride(sample.Parts),
	}
}
