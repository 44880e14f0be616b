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

package config

import "time"

// Freshness tunes the retry schedule. Empty values use the engine
// defaults.
type Freshness struct {
	FastRetry      string `toml:"fast_retry,omitempty"`
	SlowRetry      string `toml:"slow_retry,omitempty"`
	FastTierWindow string `toml:"fast_tier_window,omitempty"`
	RecoveredHold  string `toml:"recovered_hold,omitempty"`
}

// Transition tunes slot change staging.
type Transition struct {
	PreloadTimeout string `toml:"preload_timeout,omitempty"`
	SwapDelay      string `toml:"swap_delay,omitempty"`
	SettleDelay    string `toml:"settle_delay,omitempty"`
	ReduceMotion   bool   `toml:"reduce_motion"`
}

func (c *Instance) FastRetry() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("freshness.fast_retry", c.vals.Freshness.FastRetry)
}

func (c *Instance) SlowRetry() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("freshness.slow_retry", c.vals.Freshness.SlowRetry)
}

func (c *Instance) FastTierWindow() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("freshness.fast_tier_window", c.vals.Freshness.FastTierWindow)
}

func (c *Instance) RecoveredHold() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("freshness.recovered_hold", c.vals.Freshness.RecoveredHold)
}

func (c *Instance) PreloadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("transition.preload_timeout", c.vals.Transition.PreloadTimeout)
}

// SwapDelay returns -1 when unset so a configured "0s" can disable the
// delay.
func (c *Instance) SwapDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Transition.SwapDelay == "" {
		return -1
	}
	return parseDuration("transition.swap_delay", c.vals.Transition.SwapDelay)
}

// SettleDelay returns -1 when unset.
func (c *Instance) SettleDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Transition.SettleDelay == "" {
		return -1
	}
	return parseDuration("transition.settle_delay", c.vals.Transition.SettleDelay)
}

func (c *Instance) ReduceMotion() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Transition.ReduceMotion
}

func (c *Instance) SetReduceMotion(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Transition.ReduceMotion = v
}
