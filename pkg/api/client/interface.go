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

package client

import (
	"context"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
)

// APIClient abstracts daemon communication for testability.
type APIClient interface {
	State(ctx context.Context) (*models.StateResponse, error)
	Retry(ctx context.Context) (*models.RetryResponse, error)
	Override(ctx context.Context) (*models.OverrideResponse, error)
	SetOverride(ctx context.Context, value string) (*models.OverrideResponse, error)
	ClearOverride(ctx context.Context) (*models.OverrideResponse, error)
	ShiftOverride(ctx context.Context, delta time.Duration) (*models.OverrideResponse, error)
	WaitNotification(ctx context.Context, timeout time.Duration, method string) (models.Notification, error)
}

var _ APIClient = (*Client)(nil)
