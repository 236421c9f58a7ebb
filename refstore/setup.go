// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refstore

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/fault"
)

// MaxLevels - ancestor walk limit
//
// the referral tree must never contain cycles; a walk that reaches
// this depth is treated as database corruption
const MaxLevels = 10000

// globals
type globalDataType struct {
	sync.RWMutex
	log         *logger.L
	initialised bool
}

// global storage
var globalData globalDataType

// Initialise - create the logger channel
//
// this must be called before any store operation
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("refstore")
	if nil == globalData.log {
		return fault.InvalidLoggerChannel
	}
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the store operations
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}
