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

package notifications

import (
	"encoding/json"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// sendNotification never blocks. If the channel is full the notification is
// dropped.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("failed to marshal notification payload")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification channel full, dropping notification")
	}
}

func ConnectivityChanged(ns chan<- models.Notification, payload models.ConnectivityParams) {
	sendNotification(ns, models.NotificationConnectivity, payload)
}

func ArtifactChanged(ns chan<- models.Notification, payload models.ArtifactParams) {
	sendNotification(ns, models.NotificationArtifact, payload)
}

func WindowChanged(ns chan<- models.Notification, payload models.WindowParams) {
	sendNotification(ns, models.NotificationWindow, payload)
}

func SlotSwapped(ns chan<- models.Notification, payload models.SwappedParams) {
	sendNotification(ns, models.NotificationSwapped, payload)
}

func OverrideChanged(ns chan<- models.Notification, payload models.OverrideParams) {
	sendNotification(ns, models.NotificationOverride, payload)
}
