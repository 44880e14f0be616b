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

import "encoding/json"

const (
	NotificationConnectivity = "engine.connectivity"
	NotificationArtifact     = "engine.artifact"
	NotificationWindow       = "clock.window"
	NotificationSwapped      = "transition.swapped"
	NotificationOverride     = "override.changed"
)

// Notification is a push message delivered to API subscribers.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type ConnectivityParams struct {
	DegradedSince *string `json:"degradedSince,omitempty"`
	State         string  `json:"state"`
	Previous      string  `json:"previous"`
	Message       string  `json:"message,omitempty"`
}

type ArtifactParams struct {
	Date   string `json:"date"`
	RunID  string `json:"runId"`
	Source string `json:"source"`
}

type WindowParams struct {
	SlotIndex *int   `json:"slotIndex,omitempty"`
	Window    string `json:"window"`
	Previous  string `json:"previous"`
	DateKey   string `json:"dateKey"`
}

type SwappedParams struct {
	Date      string `json:"date"`
	RunID     string `json:"runId"`
	SlotIndex int    `json:"slotIndex"`
	Staged    bool   `json:"staged"`
}

type OverrideParams struct {
	Value  *string `json:"value"`
	Origin string  `json:"origin"`
}
