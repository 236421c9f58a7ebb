// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/messagebus"
	"github.com/refnet-project/refnetd/refpool"
)

// subscriber sink: log pool entry events from the message bus
type eventDrain struct {
	log *logger.L
}

func newEventDrain() *eventDrain {
	return &eventDrain{
		log: logger.New("events"),
	}
}

// Run - event loop
func (d *eventDrain) Run(args interface{}, shutdown <-chan struct{}) {

	log := d.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case m := <-messagebus.Chan():
			switch item := m.Item.(type) {
			case refpool.EntryAdded:
				log.Infof("%s: added: %s", m.From, item.Referral.Address)
			case refpool.EntryRemoved:
				log.Infof("%s: removed: %s reason: %s", m.From, item.Referral.Address, item.Reason)
			default:
				log.Debugf("%s: %v", m.From, m.Item)
			}
		}
	}

	log.Info("finished")
}
