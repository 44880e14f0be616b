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

// Package service runs the unlock engine: it samples the clock, feeds the
// freshness engine and keeps the transition orchestrator showing the slot
// the current window unlocks.
package service

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/api/notifications"
	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/helpers/syncutil"
	"github.com/daily3albums/unlock/pkg/lastgood"
	"github.com/daily3albums/unlock/pkg/override"
	"github.com/daily3albums/unlock/pkg/service/broker"
	"github.com/daily3albums/unlock/pkg/service/freshness"
	"github.com/daily3albums/unlock/pkg/service/transition"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleInterval = 250 * time.Millisecond

	notificationBuffer = 100
	watchBuffer        = 32
)

// Deps are the collaborators a Service runs on. Nil fields get in-memory
// or real-time defaults; Fetcher is required.
type Deps struct {
	Clock     clockwork.Clock
	Fetcher   freshness.Fetcher
	Preloader transition.Preloader
	LastGood  lastgood.Store
	Session   override.SessionStore
}

type Options struct {
	Freshness      freshness.Options
	Transition     transition.Options
	UTCOffset      time.Duration
	SampleInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		Freshness:      freshness.DefaultOptions(),
		Transition:     transition.DefaultOptions(),
		UTCOffset:      clock.DefaultUTCOffset,
		SampleInterval: DefaultSampleInterval,
	}
}

// State is everything a display needs to render.
type State struct {
	Override   *string
	Engine     freshness.Snapshot
	Transition transition.State
}

type Service struct {
	ctx       context.Context
	clock     clockwork.Clock
	resolver  *clock.Resolver
	overrides *override.Store
	source    *override.Source
	engine    *freshness.Engine
	orch      *transition.Orchestrator
	broker    *broker.Broker
	lastGood  lastgood.Store
	ns        chan models.Notification
	cancel    context.CancelFunc
	done      chan struct{}
	shownID   string
	wg        sync.WaitGroup
	interval  time.Duration
	shownSlot int
	mu        syncutil.Mutex
	shown     bool
	started   bool
	stopped   bool
}

//nolint:gocritic // options struct copied once at construction
func New(deps Deps, opts Options) *Service {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.LastGood == nil {
		deps.LastGood = lastgood.NewMemoryStore()
	}
	if deps.Session == nil {
		deps.Session = override.NewMemoryStore()
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultSampleInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	ns := make(chan models.Notification, notificationBuffer)
	resolver := clock.NewResolver(opts.UTCOffset)
	overrides := override.NewStore(deps.Session, resolver)

	s := &Service{
		ctx:       ctx,
		cancel:    cancel,
		clock:     deps.Clock,
		resolver:  resolver,
		overrides: overrides,
		source:    override.NewSource(overrides, resolver, deps.Clock),
		engine: freshness.NewEngine(
			deps.Clock, deps.Fetcher, deps.LastGood, resolver, ns, opts.Freshness,
		),
		orch:      transition.NewOrchestrator(deps.Clock, deps.Preloader, ns, opts.Transition),
		broker:    broker.NewBroker(ctx, ns),
		lastGood:  deps.LastGood,
		ns:        ns,
		done:      make(chan struct{}),
		interval:  opts.SampleInterval,
		shownSlot: -1,
	}
	s.broker.Start()
	return s
}

// Start mounts the engine and begins sampling the clock.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	sample := s.source.Sample()
	log.Info().Msgf("service: starting at %s %s (%s)",
		sample.DateKey, sample.Window, sample.Origin)
	s.engine.Start(sample)
	s.syncVisibleLocked()

	sub, _ := s.broker.Subscribe(watchBuffer)
	s.wg.Add(2)
	go s.sampleLoop()
	go s.watch(sub)
}

func (s *Service) sampleLoop() {
	defer s.wg.Done()
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			s.Tick()
		}
	}
}

// watch re-syncs the visible slot whenever the engine's display may have
// changed outside a clock tick.
func (s *Service) watch(sub <-chan models.Notification) {
	defer s.wg.Done()
	for n := range sub {
		switch n.Method {
		case models.NotificationArtifact, models.NotificationConnectivity:
			syncutil.Do(&s.mu, s.syncVisibleLocked)
		}
	}
}

// Tick samples the clock once and feeds the engine.
func (s *Service) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return
	}
	s.engine.Observe(s.source.Sample())
	s.syncVisibleLocked()
}

// syncVisibleLocked moves the orchestrator to the engine's display. A slot
// change within the same artifact is staged; anything else swaps at once.
func (s *Service) syncVisibleLocked() {
	if s.stopped {
		return
	}
	snap := s.engine.Snapshot()
	id := displayID(snap.Display)
	slot := snap.SlotIndex

	switch {
	case s.shown && id == s.shownID && slot == s.shownSlot:
		return
	case s.shown && id == s.shownID && s.shownSlot >= 0 && slot >= 0:
		log.Debug().Msgf("service: staging slot %d -> %d", s.shownSlot, slot)
		s.orch.OnSlotChange(snap.Display, slot)
	default:
		s.orch.Show(snap.Display, slot)
	}
	s.shown = true
	s.shownID = id
	s.shownSlot = slot
}

func displayID(art *artifact.Artifact) string {
	if art == nil {
		return ""
	}
	return art.Date + "/" + art.RunID
}

func (s *Service) State() State {
	st := State{
		Engine:     s.engine.Snapshot(),
		Transition: s.orch.State(),
	}
	if v, ok := s.overrides.Load(); ok {
		st.Override = &v
	}
	return st
}

// RetryNow asks the engine for an immediate fetch. joined reports whether
// a fetch already in flight was reused.
func (s *Service) RetryNow() (joined bool, state freshness.Connectivity) {
	joined = s.engine.RetryNow()
	return joined, s.engine.Snapshot().Connectivity
}

// InitOverride applies the debug_time query of the first request in a
// session. Later calls are no-ops.
func (s *Service) InitOverride(query url.Values) error {
	before, _ := s.overrides.Load()
	if err := s.overrides.Init(query); err != nil {
		return err
	}
	if after, _ := s.overrides.Load(); after != before {
		s.overrideChanged()
	}
	return nil
}

// Override returns the stored debug time, or nil.
func (s *Service) Override() *string {
	v, ok := s.overrides.Load()
	if !ok {
		return nil
	}
	return &v
}

// SetOverride stores a debug time, or clears it when value is nil.
// Invalid values return an error wrapping clock.ErrOverrideParse.
func (s *Service) SetOverride(value *string) error {
	if err := s.overrides.Save(value); err != nil {
		return err
	}
	s.overrideChanged()
	return nil
}

// ShiftOverride moves the debug time by delta. Without an override the
// shift starts from the real clock.
func (s *Service) ShiftOverride(delta time.Duration) (string, error) {
	current, ok := s.overrides.Load()
	if !ok {
		current = clock.FormatOverride(s.resolver.ToParts(s.clock.Now()))
	}
	shifted, err := s.overrides.Shift(current, delta)
	if err != nil {
		return "", err
	}
	if err := s.SetOverride(&shifted); err != nil {
		return "", err
	}
	return shifted, nil
}

func (s *Service) overrideChanged() {
	s.Tick()
	sample := s.source.Sample()
	notifications.OverrideChanged(s.ns, models.OverrideParams{
		Value:  s.Override(),
		Origin: sample.Origin.String(),
	})
}

// Sample resolves the current moment, honouring any override.
func (s *Service) Sample() clock.Sample {
	return s.source.Sample()
}

func (s *Service) Broker() *broker.Broker {
	return s.broker
}

// Done is closed once Stop has finished.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Stop halts sampling, the engine and the orchestrator, then closes the
// last-known-good store.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	s.mu.Unlock()

	log.Info().Msg("service: stopping")
	s.cancel()
	s.engine.Stop()
	s.orch.Stop()
	s.broker.Stop()
	s.wg.Wait()

	if err := s.lastGood.Close(); err != nil {
		log.Warn().Err(err).Msg("service: error closing last-known-good store")
	}
	log.Info().Msg("service: stopped")
	close(s.done)
}
