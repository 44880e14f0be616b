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

// Package override manages the operator supplied "pretend now" used to
// preview the unlock schedule.
package override

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// QueryParam is read from the initial page URL only.
	QueryParam = "debug_time"
	// StorageKey is the session storage key the override is kept under.
	StorageKey = "daily3albums.debug_time"
)

// Store reads and writes the debug override through a SessionStore.
type Store struct {
	session     SessionStore
	resolver    *clock.Resolver
	mu          syncutil.Mutex
	initialized bool
}

func NewStore(session SessionStore, resolver *clock.Resolver) *Store {
	return &Store{session: session, resolver: resolver}
}

// Init processes the initial load query. Only the first call has any
// effect; a debug_time parameter found there is validated and persisted
// immediately. Later navigation reads from storage only.
func (s *Store) Init(query url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true

	raw := strings.TrimSpace(query.Get(QueryParam))
	if raw == "" {
		return nil
	}
	parts, err := clock.ParseOverride(raw)
	if err != nil {
		return err
	}
	value := clock.FormatOverride(parts)
	if err := s.session.Set(StorageKey, value); err != nil {
		return fmt.Errorf("failed to persist override: %w", err)
	}
	log.Info().Str("override", value).Msg("override: set from query parameter")
	return nil
}

// Load returns the stored override, if any. Storage errors are treated as
// no override.
func (s *Store) Load() (string, bool) {
	v, ok, err := s.session.Get(StorageKey)
	if err != nil {
		log.Warn().Err(err).Msg("override: failed to read session store")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Save stores a new override, or clears it when value is nil. Invalid
// values are rejected and leave the stored override untouched.
func (s *Store) Save(value *string) error {
	if value == nil {
		if err := s.session.Delete(StorageKey); err != nil {
			return fmt.Errorf("failed to clear override: %w", err)
		}
		log.Info().Msg("override: cleared")
		return nil
	}

	parts, err := clock.ParseOverride(*value)
	if err != nil {
		return err
	}
	normalized := clock.FormatOverride(parts)
	if err := s.session.Set(StorageKey, normalized); err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	log.Info().Str("override", normalized).Msg("override: saved")
	return nil
}

// Shift returns current moved by delta. The store itself is not changed.
func (s *Store) Shift(current string, delta time.Duration) (string, error) {
	return s.resolver.Shift(current, delta)
}

// Source samples the clock, honouring any stored override.
type Source struct {
	store    *Store
	resolver *clock.Resolver
	clock    clockwork.Clock
}

func NewSource(store *Store, resolver *clock.Resolver, clk clockwork.Clock) *Source {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Source{store: store, resolver: resolver, clock: clk}
}

// Sample resolves the current moment. A stored override that no longer
// parses is ignored.
func (s *Source) Sample() clock.Sample {
	v, _ := s.store.Load()
	sample, err := s.resolver.Resolve(v, s.clock.Now())
	if err != nil {
		log.Warn().Err(err).Msg("override: ignoring stored value")
	}
	return sample
}
