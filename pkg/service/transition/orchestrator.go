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

// Package transition stages the visible slot change at a window boundary:
// preload the next slot's covers, swap after a short delay, then settle.
package transition

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/api/notifications"
	"github.com/daily3albums/unlock/pkg/artifact"
	"github.com/daily3albums/unlock/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPreloadTimeout = 2500 * time.Millisecond
	DefaultSwapDelay      = 180 * time.Millisecond
	DefaultSettleDelay    = 900 * time.Millisecond
)

// Phase is the orchestrator's position in a transition.
type Phase int

const (
	Idle Phase = iota
	Preloading
	SwapPending
	ActiveTransition
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case Preloading:
		return "PRELOADING"
	case SwapPending:
		return "SWAP_PENDING"
	case ActiveTransition:
		return "ACTIVE_TRANSITION"
	default:
		return fmt.Sprintf("PHASE(%d)", int(p))
	}
}

// Preloader warms a media reference. Implementations must return once ctx
// is done.
type Preloader interface {
	Preload(ctx context.Context, ref string) error
}

type Options struct {
	PreloadTimeout time.Duration
	SwapDelay      time.Duration
	SettleDelay    time.Duration
	ReduceMotion   bool
}

func DefaultOptions() Options {
	return Options{
		PreloadTimeout: DefaultPreloadTimeout,
		SwapDelay:      DefaultSwapDelay,
		SettleDelay:    DefaultSettleDelay,
	}
}

// Visible is the slot currently on screen.
type Visible struct {
	Artifact  *artifact.Artifact
	SlotIndex int
}

// Slot returns the visible slot, or nil.
func (v Visible) Slot() *artifact.Slot {
	return v.Artifact.SlotAt(v.SlotIndex)
}

type State struct {
	Visible      Visible
	Target       Visible
	Phase        Phase
	Swaps        uint64
	InTransition bool
	ReduceMotion bool
}

// Orchestrator owns the swap and settle timers. Every event bumps a
// sequence number; callbacks carrying an older number do nothing.
type Orchestrator struct {
	ctx       context.Context
	clock     clockwork.Clock
	preloader Preloader
	notify    chan<- models.Notification
	cancel    context.CancelFunc

	cancelPreload context.CancelFunc
	swapTimer     clockwork.Timer
	settleTimer   clockwork.Timer

	visible Visible
	target  Visible
	opts    Options
	wg      sync.WaitGroup
	seq     uint64
	swaps   uint64
	mu      syncutil.Mutex
	phase   Phase
	stopped bool
}

// NewOrchestrator creates an orchestrator. preloader and notify may be nil.
func NewOrchestrator(
	clk clockwork.Clock,
	preloader Preloader,
	notify chan<- models.Notification,
	opts Options,
) *Orchestrator {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	d := DefaultOptions()
	if opts.PreloadTimeout <= 0 {
		opts.PreloadTimeout = d.PreloadTimeout
	}
	if opts.SwapDelay < 0 {
		opts.SwapDelay = d.SwapDelay
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = d.SettleDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		ctx:       ctx,
		cancel:    cancel,
		clock:     clk,
		preloader: preloader,
		notify:    notify,
		opts:      opts,
		visible:   Visible{SlotIndex: -1},
		target:    Visible{SlotIndex: -1},
	}
}

// SetReduceMotion toggles staging. In-progress transitions are unaffected.
func (o *Orchestrator) SetReduceMotion(v bool) {
	syncutil.Do(&o.mu, func() {
		o.opts.ReduceMotion = v
	})
}

// Show swaps immediately, abandoning any transition in progress.
func (o *Orchestrator) Show(art *artifact.Artifact, slotIndex int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return
	}
	o.resetLocked()
	o.target = Visible{Artifact: art, SlotIndex: slotIndex}
	o.swapLocked(false)
	o.phase = Idle
}

// OnSlotChange starts a staged transition to a new slot. A transition
// already running is cancelled and only the newest target is swapped in.
func (o *Orchestrator) OnSlotChange(art *artifact.Artifact, slotIndex int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return
	}
	o.resetLocked()
	o.target = Visible{Artifact: art, SlotIndex: slotIndex}

	slot := art.SlotAt(slotIndex)
	if o.opts.ReduceMotion || slot == nil {
		log.Debug().Msgf("transition: immediate swap to slot %d", slotIndex)
		o.swapLocked(false)
		o.phase = Idle
		return
	}

	seq := o.seq
	o.phase = Preloading
	refs := slot.CoverURLs()
	if o.preloader == nil || len(refs) == 0 {
		o.armSwapLocked(seq)
		return
	}

	ctx, cancel := clockwork.WithTimeout(o.ctx, o.clock, o.opts.PreloadTimeout)
	o.cancelPreload = cancel
	log.Debug().Msgf("transition: preloading %d covers for slot %d", len(refs), slotIndex)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		done := o.preload(ctx, refs)
		select {
		case <-done:
		case <-ctx.Done():
			log.Debug().Msgf("transition: preload for slot %d cut short", slotIndex)
		}
		syncutil.Do(&o.mu, func() {
			if o.stopped || seq != o.seq {
				return
			}
			o.cancelPreload = nil
			o.armSwapLocked(seq)
		})
		cancel()
		<-done
	}()
}

// preload starts best-effort loads of every reference. The returned
// channel closes when all of them have finished.
func (o *Orchestrator) preload(ctx context.Context, refs []string) <-chan struct{} {
	var g errgroup.Group
	for _, ref := range refs {
		g.Go(func() error {
			if err := o.preloader.Preload(ctx, ref); err != nil {
				log.Debug().Err(err).Msgf("transition: preload of %s failed", ref)
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	return done
}

func (o *Orchestrator) armSwapLocked(seq uint64) {
	o.phase = SwapPending
	o.swapTimer = o.clock.AfterFunc(o.opts.SwapDelay, func() {
		o.onSwap(seq)
	})
}

func (o *Orchestrator) onSwap(seq uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped || seq != o.seq {
		return
	}
	o.swapTimer = nil
	o.swapLocked(true)
	o.phase = ActiveTransition
	o.settleTimer = o.clock.AfterFunc(o.opts.SettleDelay, func() {
		o.onSettle(seq)
	})
}

func (o *Orchestrator) onSettle(seq uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped || seq != o.seq {
		return
	}
	o.settleTimer = nil
	o.phase = Idle
}

func (o *Orchestrator) swapLocked(staged bool) {
	o.visible = o.target
	o.swaps++
	if o.notify == nil || o.visible.Artifact == nil {
		return
	}
	notifications.SlotSwapped(o.notify, models.SwappedParams{
		Date:      o.visible.Artifact.Date,
		RunID:     o.visible.Artifact.RunID,
		SlotIndex: o.visible.SlotIndex,
		Staged:    staged,
	})
}

// resetLocked voids every pending callback and stops both timers and the
// preload.
func (o *Orchestrator) resetLocked() {
	o.seq++
	if o.cancelPreload != nil {
		o.cancelPreload()
		o.cancelPreload = nil
	}
	if o.swapTimer != nil {
		o.swapTimer.Stop()
		o.swapTimer = nil
	}
	if o.settleTimer != nil {
		o.settleTimer.Stop()
		o.settleTimer = nil
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{
		Visible:      o.visible,
		Target:       o.target,
		Phase:        o.phase,
		Swaps:        o.swaps,
		InTransition: o.phase != Idle,
		ReduceMotion: o.opts.ReduceMotion,
	}
}

// Stop cancels everything in progress. No swap happens afterwards.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	o.resetLocked()
	o.phase = Idle
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
}
