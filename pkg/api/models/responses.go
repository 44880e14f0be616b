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

package models

import "github.com/daily3albums/unlock/pkg/artifact"

type BoundaryResponse struct {
	At               string `json:"at"`
	Label            string `json:"label"`
	Window           string `json:"window"`
	CountdownSeconds int64  `json:"countdownSeconds"`
}

type ClockResponse struct {
	Override             *string `json:"override"`
	Origin               string  `json:"origin"`
	DateKey              string  `json:"dateKey"`
	Time                 string  `json:"time"`
	SecondsSinceMidnight int     `json:"secondsSinceMidnight"`
}

type VisibleResponse struct {
	Slot          *artifact.Slot `json:"slot"`
	Phase         string         `json:"phase"`
	SlotIndex     int            `json:"slotIndex"`
	InTransition  bool           `json:"inTransition"`
	ReducedMotion bool           `json:"reducedMotion"`
}

// StateResponse is the document served by GET /api/state.
type StateResponse struct {
	Artifact       *artifact.Artifact `json:"artifact"`
	DegradedSince  *string            `json:"degradedSince"`
	SlotIndex      *int               `json:"slotIndex"`
	Clock          ClockResponse      `json:"clock"`
	Connectivity   string             `json:"connectivity"`
	DisplaySource  string             `json:"displaySource"`
	Window         string             `json:"window"`
	Message        string             `json:"message,omitempty"`
	ArchiveMessage string             `json:"archiveMessage,omitempty"`
	Visible        VisibleResponse    `json:"visible"`
	NextBoundary   BoundaryResponse   `json:"nextBoundary"`
	HardEmpty      bool               `json:"hardEmpty"`
}

type OverrideResponse struct {
	Value *string `json:"value"`
	Time  string  `json:"time"`
}

type OverrideRequest struct {
	Value *string `json:"value" validate:"required,debugtime"`
}

type ShiftRequest struct {
	Seconds int64 `json:"seconds" validate:"required,gte=-31622400,lte=31622400"`
}

type RetryResponse struct {
	Connectivity string `json:"connectivity"`
	Joined       bool   `json:"joined"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
