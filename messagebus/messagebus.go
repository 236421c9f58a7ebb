// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - queue for event delivery to subscriber sinks
//
// the referral pool announces entry additions and removals here; a
// single drain (the daemon) reads the channel
//
// sends never block: when the queue is full the new message is
// dropped and counted, so pool operations cannot stall on a slow
// subscriber
package messagebus

import (
	"sync/atomic"
)

// internal constants
const (
	queueSize = 1000
)

// Message - one queued event
type Message struct {
	From string
	Item interface{}
}

var (
	// for queueing data
	queue = make(chan Message, queueSize)

	// count of messages dropped on overflow
	dropped uint64
)

// Send - queue an event
func Send(from string, item interface{}) {
	select {
	case queue <- Message{From: from, Item: item}:
	default:
		atomic.AddUint64(&dropped, 1)
	}
}

// Chan - channel to read from
func Chan() <-chan Message {
	return queue
}

// Dropped - number of messages lost to overflow
func Dropped() uint64 {
	return atomic.LoadUint64(&dropped)
}
