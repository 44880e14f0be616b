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
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNotification_NonBlocking(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		WindowChanged(ns, models.WindowParams{Window: "WINDOW_0"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("sendNotification blocked on a channel with no reader")
	}
}

func TestSendNotification_Payload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	ConnectivityChanged(ns, models.ConnectivityParams{State: "DEGRADED", Previous: "NOMINAL"})

	n := <-ns
	assert.Equal(t, models.NotificationConnectivity, n.Method)
	assert.JSONEq(t, `{"state": "DEGRADED", "previous": "NOMINAL"}`, string(n.Params))
}

func TestSendNotification_DropsWhenFull(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	ns <- models.Notification{Method: "prefill"}

	for range 5 {
		SlotSwapped(ns, models.SwappedParams{SlotIndex: 1})
	}

	require.Len(t, ns, 1)
	assert.Equal(t, "prefill", (<-ns).Method)
}
