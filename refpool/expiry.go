// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refpool

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/background"
)

// expiry background
type expiryData struct {
	log   *logger.L
	pool  *Pool
	ttl   time.Duration
	cycle time.Duration
}

// NewExpiry - periodic eviction of stale pool entries
//
// run under the background package; every cycle evicts entries older
// than ttl together with their dependent subtrees
func NewExpiry(pool *Pool, ttl time.Duration, cycle time.Duration) background.Process {
	return &expiryData{
		log:   logger.New("refpool-expiry"),
		pool:  pool,
		ttl:   ttl,
		cycle: cycle,
	}
}

// Run - expiry loop
func (state *expiryData) Run(args interface{}, shutdown <-chan struct{}) {

	log := state.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-time.After(state.cycle):
			cutoff := time.Now().Add(-state.ttl).Unix()
			n := state.pool.Expire(cutoff)
			if n > 0 {
				log.Infof("expired: %d entries", n)
			}
		}
	}

	log.Info("finished")
}
