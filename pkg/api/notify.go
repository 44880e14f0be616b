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
	"bytes"
	"context"
	"encoding/json"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

// retainedMethods are replayed to each new websocket session, in this
// order, so a client starts from the current state.
var retainedMethods = []string{
	models.NotificationConnectivity,
	models.NotificationWindow,
	models.NotificationArtifact,
	models.NotificationSwapped,
	models.NotificationOverride,
}

func (s *Server) broadcastNotifications(ctx context.Context) {
	notifications, id := s.notifier.Subscribe(notifyBuffer)
	defer s.notifier.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("api: notification broadcast stopped")
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(notif)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := s.melody.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

func (s *Server) handleConnect(session *melody.Session) {
	for _, method := range retainedMethods {
		notif, ok := s.notifier.Latest(method)
		if !ok {
			continue
		}
		data, err := json.Marshal(notif)
		if err != nil {
			log.Error().Err(err).Msg("marshalling retained notification")
			continue
		}
		if err := session.Write(data); err != nil {
			log.Debug().Err(err).Msg("api: failed to replay notification")
			return
		}
	}
}

// handleWSMessage answers heartbeats. The stream is otherwise one way.
func handleWSMessage(session *melody.Session, msg []byte) {
	if bytes.Equal(msg, []byte("ping")) {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}
	log.Debug().Int("size", len(msg)).Msg("api: ignoring websocket message")
}
