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

// Package freshness decides which artifact to show, and whether the data in
// hand is current, by comparing fetched artifacts against the locally
// computed date.
package freshness

import (
	"context"
	"sync"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/api/notifications"
	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/helpers/syncutil"
	"github.com/daily3albums/unlock/pkg/lastgood"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const currentKey = "current"

// Fetcher retrieves artifacts. Implementations must return promptly once
// ctx is cancelled.
type Fetcher interface {
	FetchCurrent(ctx context.Context) (*artifact.Artifact, error)
	FetchArchived(ctx context.Context, dateKey, runID string) (*artifact.Artifact, error)
}

// Engine is the connectivity state machine. All state lives behind one
// mutex; fetches run in goroutines and re-enter through a generation check
// so superseded or post-Stop results are dropped.
type Engine struct {
	ctx      context.Context
	clock    clockwork.Clock
	fetcher  Fetcher
	store    lastgood.Store
	resolver *clock.Resolver
	notify   chan<- models.Notification
	cancel   context.CancelFunc

	retryTimer  clockwork.Timer
	holdTimer   clockwork.Timer
	fetchCancel context.CancelFunc

	fresh    *artifact.Artifact
	lastGood *artifact.Artifact
	archived *artifact.Artifact
	raw      *artifact.Artifact

	lastErr    error
	archiveErr error

	degradedSince time.Time
	sample        clock.Sample
	flight        singleflight.Group
	wg            sync.WaitGroup
	opts          Options

	gen        uint64
	archiveGen uint64
	retrySeq   uint64
	holdSeq    uint64

	mu syncutil.Mutex

	state       Connectivity
	started     bool
	stopped     bool
	inFlight    bool
	completions int
}

// NewEngine creates an engine. notify may be nil.
func NewEngine(
	clk clockwork.Clock,
	fetcher Fetcher,
	store lastgood.Store,
	resolver *clock.Resolver,
	notify chan<- models.Notification,
	opts Options,
) *Engine {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if store == nil {
		store = lastgood.NewMemoryStore()
	}
	if resolver == nil {
		resolver = clock.NewResolver(clock.DefaultUTCOffset)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		ctx:      ctx,
		cancel:   cancel,
		clock:    clk,
		fetcher:  fetcher,
		store:    store,
		resolver: resolver,
		notify:   notify,
		opts:     opts.normalized(),
		state:    Nominal,
	}
}

// Start reads LastKnownGood once and issues the mount fetch: the current
// artifact, or while DORMANT the previous day's archive.
func (e *Engine) Start(sample clock.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.sample = sample

	lkg, err := e.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("freshness: ignoring unreadable last-known-good")
	} else if lkg != nil {
		e.lastGood = lkg
		log.Info().Msgf("freshness: loaded last-known-good for %s (%s)", lkg.Date, lkg.RunID)
	}

	if sample.Window.Active() {
		e.launchLocked("mount", true)
	} else {
		e.fetchArchiveLocked(false)
	}
}

// Observe feeds a new clock sample. Work is only triggered when the window
// or the date key changes.
func (e *Engine) Observe(sample clock.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.stopped {
		return
	}

	prev := e.sample
	windowChanged := prev.Window != sample.Window
	dateChanged := prev.DateKey != sample.DateKey
	if !windowChanged && !dateChanged {
		e.sample = sample
		return
	}
	prevDisplay, _ := e.displayLocked()
	e.sample = sample

	log.Info().Msgf("freshness: %s %s -> %s %s",
		prev.DateKey, prev.Window, sample.DateKey, sample.Window)
	e.publishWindowLocked(prev)

	// A committed artifact is only fresh for its own date.
	if dateChanged && e.fresh != nil && e.fresh.Date != sample.DateKey {
		log.Info().Msgf("freshness: %s artifact is no longer current", e.fresh.Date)
		e.fresh = nil
		e.publishLocked(e.state, prevDisplay)
	}

	if !sample.Window.Active() {
		e.stopRetryLocked()
		e.fetchArchiveLocked(false)
		return
	}
	if !prev.Window.Active() || dateChanged {
		e.launchLocked("boundary", true)
	}
}

// RetryNow performs an immediate out-of-band fetch. While NOMINAL or
// RECOVERED a fetch already in flight is joined instead and true is
// returned; while DEGRADED it is cancelled and replaced. While DORMANT the
// archive fetch is retried instead.
func (e *Engine) RetryNow() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.stopped {
		return false
	}
	if !e.sample.Window.Active() {
		e.fetchArchiveLocked(true)
		return false
	}
	return e.launchLocked("manual", e.state == Degraded)
}

// launchLocked starts a current fetch. A superseding launch cancels the
// fetch in flight; otherwise an in-flight fetch is joined.
func (e *Engine) launchLocked(reason string, supersede bool) (joined bool) {
	if e.inFlight && !supersede {
		log.Debug().Msgf("freshness: %s fetch joined in-flight request", reason)
		return true
	}
	if e.fetchCancel != nil {
		e.fetchCancel()
	}
	e.flight.Forget(currentKey)

	e.gen++
	gen := e.gen
	e.inFlight = true
	attempt := uuid.NewString()
	ctx, cancel := context.WithCancel(e.ctx)
	e.fetchCancel = cancel

	log.Debug().Str("attempt", attempt).Msgf("freshness: %s fetch of current artifact", reason)
	ch := e.flight.DoChan(currentKey, func() (any, error) {
		return e.fetcher.FetchCurrent(ctx)
	})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		res := <-ch
		art, _ := res.Val.(*artifact.Artifact)
		e.completeCurrent(gen, attempt, art, res.Err)
	}()
	return false
}

func (e *Engine) completeCurrent(gen uint64, attempt string, art *artifact.Artifact, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.gen {
		log.Debug().Str("attempt", attempt).Msg("freshness: discarding superseded fetch result")
		return
	}
	e.inFlight = false
	e.fetchCancel = nil
	e.completions++

	if err == nil && art == nil {
		err = &artifact.StructuralError{Source: artifact.CurrentPath}
	}
	if err == nil {
		e.raw = art
		if art.Date != e.sample.DateKey {
			err = &StalenessError{Got: art.Date, Want: e.sample.DateKey}
		}
	}
	if err != nil {
		log.Warn().Str("attempt", attempt).Err(err).Msg("freshness: fetch failed")
		e.degradeLocked(err)
		return
	}
	e.commitLocked(art)
}

func (e *Engine) commitLocked(art *artifact.Artifact) {
	prevState := e.state
	prevDisplay, _ := e.displayLocked()

	e.fresh = art
	e.lastErr = nil
	e.degradedSince = time.Time{}
	e.stopRetryLocked()

	if err := e.store.Save(art); err != nil {
		log.Error().Err(err).Msg("freshness: failed to persist last-known-good")
	}
	e.lastGood = art

	// A commit while RECOVERED keeps the running hold timer.
	if prevState == Degraded {
		e.state = Recovered
		e.scheduleHoldLocked()
	}

	log.Info().Msgf("freshness: committed %s (%s), %s", art.Date, art.RunID, e.state)
	e.publishLocked(prevState, prevDisplay)
}

func (e *Engine) degradeLocked(err error) {
	prevState := e.state
	prevDisplay, _ := e.displayLocked()

	e.lastErr = err
	if e.state != Degraded {
		e.state = Degraded
		e.stopHoldLocked()
	}
	if e.degradedSince.IsZero() {
		e.degradedSince = e.clock.Now()
	}
	e.scheduleRetryLocked()
	e.publishLocked(prevState, prevDisplay)
}

func (e *Engine) scheduleRetryLocked() {
	e.stopRetryLocked()
	if !e.sample.Window.Active() {
		return
	}
	delay := e.opts.RetryDelay(e.clock.Since(e.degradedSince))
	seq := e.retrySeq
	log.Debug().Msgf("freshness: retrying in %s", delay)
	e.retryTimer = e.clock.AfterFunc(delay, func() {
		e.onRetry(seq)
	})
}

func (e *Engine) onRetry(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || seq != e.retrySeq {
		return
	}
	e.retryTimer = nil
	if e.state != Degraded || !e.sample.Window.Active() {
		return
	}
	e.launchLocked("retry", false)
}

// stopRetryLocked cancels the pending retry. Bumping the sequence also
// voids a callback that already fired but has not taken the lock yet.
func (e *Engine) stopRetryLocked() {
	e.retrySeq++
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
}

func (e *Engine) scheduleHoldLocked() {
	e.stopHoldLocked()
	seq := e.holdSeq
	e.holdTimer = e.clock.AfterFunc(e.opts.RecoveredHold, func() {
		e.onHold(seq)
	})
}

func (e *Engine) onHold(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || seq != e.holdSeq || e.state != Recovered {
		return
	}
	e.holdTimer = nil
	prevDisplay, _ := e.displayLocked()
	e.state = Nominal
	log.Info().Msg("freshness: recovered, back to NOMINAL")
	e.publishLocked(Recovered, prevDisplay)
}

func (e *Engine) stopHoldLocked() {
	e.holdSeq++
	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}
}

// fetchArchiveLocked loads yesterday's archive for fallback content. With
// force, a previously loaded archive is fetched again.
func (e *Engine) fetchArchiveLocked(force bool) {
	date, err := clock.AddDays(e.sample.DateKey, -1)
	if err != nil {
		log.Error().Err(err).Msg("freshness: cannot compute archive date")
		return
	}
	if !force && e.archived != nil && e.archived.Date == date {
		return
	}

	runID := ""
	if e.lastGood != nil && e.lastGood.Date == date {
		runID = e.lastGood.RunID
	}

	e.archiveGen++
	gen := e.archiveGen
	key := "archive:" + date + ":" + runID
	if force {
		e.flight.Forget(key)
	}
	log.Debug().Msgf("freshness: fetching archive for %s", date)
	ch := e.flight.DoChan(key, func() (any, error) {
		return e.fetcher.FetchArchived(e.ctx, date, runID)
	})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		res := <-ch
		art, _ := res.Val.(*artifact.Artifact)
		e.completeArchive(gen, date, art, res.Err)
	}()
}

func (e *Engine) completeArchive(gen uint64, date string, art *artifact.Artifact, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen != e.archiveGen {
		return
	}
	if err == nil && art != nil && art.Date != date {
		err = &StalenessError{Got: art.Date, Want: date}
	}
	if err != nil || art == nil {
		e.archiveErr = err
		log.Warn().Err(err).Msgf("freshness: archive for %s unavailable", date)
		return
	}

	prevDisplay, _ := e.displayLocked()
	e.archived = art
	e.archiveErr = nil
	log.Info().Msgf("freshness: loaded archive for %s (%s)", art.Date, art.RunID)
	e.publishLocked(e.state, prevDisplay)
}

// displayLocked applies the display priority: fresh while NOMINAL or
// RECOVERED, then LastKnownGood, then the archive, then the raw result.
func (e *Engine) displayLocked() (*artifact.Artifact, Source) {
	switch {
	case e.state != Degraded && e.fresh != nil:
		return e.fresh, SourceFresh
	case e.lastGood != nil:
		return e.lastGood, SourceLastGood
	case e.archived != nil:
		return e.archived, SourceArchive
	case e.raw != nil:
		return e.raw, SourceRaw
	default:
		return nil, SourceNone
	}
}

// Snapshot returns the current caller-facing state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	display, source := e.displayLocked()
	slot, ok := e.sample.Window.SlotIndex()
	if !ok {
		slot = -1
	}
	pending := e.started && e.inFlight && e.completions == 0
	snap := Snapshot{
		Sample:        e.sample,
		Connectivity:  e.state,
		Display:       display,
		DisplaySource: source,
		LastGood:      e.lastGood,
		Archived:      e.archived,
		SlotIndex:     slot,
		DegradedSince: e.degradedSince,
		Message:       Message(e.lastErr),
		InFlight:      e.inFlight,
		Pending:       pending,
		HardEmpty:     display == nil && e.sample.Window.Active() && !pending,
	}
	if e.archiveErr != nil {
		snap.ArchiveMessage = e.archiveErr.Error()
	}
	if e.sample.DateKey != "" {
		snap.NextBoundary = e.resolver.NextBoundary(e.sample)
		snap.Countdown = e.resolver.Countdown(e.sample)
	}
	return snap
}

// Stop cancels timers and in-flight fetches and waits for them to finish.
// Nothing is committed afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.stopRetryLocked()
	e.stopHoldLocked()
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

func (e *Engine) publishLocked(prevState Connectivity, prevDisplay *artifact.Artifact) {
	if e.notify == nil {
		return
	}
	if prevState != e.state {
		params := models.ConnectivityParams{
			State:    e.state.String(),
			Previous: prevState.String(),
			Message:  Message(e.lastErr),
		}
		if !e.degradedSince.IsZero() {
			since := e.degradedSince.Format(time.RFC3339)
			params.DegradedSince = &since
		}
		notifications.ConnectivityChanged(e.notify, params)
	}
	display, source := e.displayLocked()
	if display != nil && !display.SameAs(prevDisplay) {
		notifications.ArtifactChanged(e.notify, models.ArtifactParams{
			Date:   display.Date,
			RunID:  display.RunID,
			Source: string(source),
		})
	}
}

func (e *Engine) publishWindowLocked(prev clock.Sample) {
	if e.notify == nil {
		return
	}
	params := models.WindowParams{
		Window:   e.sample.Window.String(),
		Previous: prev.Window.String(),
		DateKey:  e.sample.DateKey,
	}
	if idx, ok := e.sample.Window.SlotIndex(); ok {
		params.SlotIndex = &idx
	}
	notifications.WindowChanged(e.notify, params)
}
