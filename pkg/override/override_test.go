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

package override

import (
	"net/url"
	"testing"
	"time"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, SessionStore) {
	t.Helper()
	session := NewMemoryStore()
	return NewStore(session, clock.NewResolver(clock.DefaultUTCOffset)), session
}

func TestInit_PersistsQueryOnce(t *testing.T) {
	t.Parallel()

	s, session := newTestStore(t)

	err := s.Init(url.Values{QueryParam: []string{"2024-03-20T06:00"}})
	require.NoError(t, err)

	v, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, "2024-03-20T06:00:00", v)

	stored, ok, err := session.Get(StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-20T06:00:00", stored)

	// later navigation without the parameter keeps the stored value
	require.NoError(t, s.Init(url.Values{}))
	v, ok = s.Load()
	require.True(t, ok)
	assert.Equal(t, "2024-03-20T06:00:00", v)

	// and a parameter on a later load is ignored
	require.NoError(t, s.Init(url.Values{QueryParam: []string{"2024-03-21T06:00"}}))
	v, _ = s.Load()
	assert.Equal(t, "2024-03-20T06:00:00", v)
}

func TestInit_RejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	err := s.Init(url.Values{QueryParam: []string{"2024-02-30T06:00"}})
	require.ErrorIs(t, err, clock.ErrOverrideParse)

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestSave(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	v := "2024-03-20T12:30"
	require.NoError(t, s.Save(&v))
	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, "2024-03-20T12:30:00", got)

	bad := "2024-03-20T25:00"
	require.ErrorIs(t, s.Save(&bad), clock.ErrOverrideParse)
	got, _ = s.Load()
	assert.Equal(t, "2024-03-20T12:30:00", got, "rejected value must not replace stored one")

	require.NoError(t, s.Save(nil))
	_, ok = s.Load()
	assert.False(t, ok)
}

func TestShift(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	got, err := s.Shift("2024-03-20T23:59:50", 20*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-21T00:00:10", got)

	got, err = s.Shift("2024-03-20T17:59:30", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20T18:00:30", got)

	_, err = s.Shift("garbage", time.Second)
	require.ErrorIs(t, err, clock.ErrOverrideParse)
}

func TestSource_Sample(t *testing.T) {
	t.Parallel()

	s, session := newTestStore(t)
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, 3, 20, 1, 0, 0, 0, time.UTC))
	src := NewSource(s, clock.NewResolver(clock.DefaultUTCOffset), fakeClock)

	sample := src.Sample()
	assert.Equal(t, clock.OriginReal, sample.Origin)
	assert.Equal(t, clock.Window0, sample.Window)
	assert.Equal(t, "2024-03-20", sample.DateKey)

	v := "2024-03-20T19:00"
	require.NoError(t, s.Save(&v))
	sample = src.Sample()
	assert.Equal(t, clock.OriginOverride, sample.Origin)
	assert.Equal(t, clock.Window2, sample.Window)

	// a corrupted stored value falls back to real time
	require.NoError(t, session.Set(StorageKey, "nonsense"))
	sample = src.Sample()
	assert.Equal(t, clock.OriginReal, sample.Origin)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, "/sessions/abc")

	_, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(StorageKey, "2024-03-20T06:00:00"))
	v, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-20T06:00:00", v)

	// a second store on the same directory sees the same session
	other := NewFileStore(fs, "/sessions/abc")
	v, ok, err = other.Get(StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-20T06:00:00", v)

	require.NoError(t, store.Delete(StorageKey))
	require.NoError(t, store.Delete(StorageKey))
	_, ok, err = store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.Error(t, store.Set("../escape", "x"))
}
