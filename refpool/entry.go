// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refpool

import (
	"github.com/refnet-project/refnetd/referral"
)

// Entry - one unconfirmed referral with its pool bookkeeping
type Entry struct {
	Referral *referral.Referral
	Time     int64  // arrival time, unix seconds
	Height   uint64 // chain height at entry
	Weight   int
}

// NewEntry - wrap a referral for the pool
func NewEntry(ref *referral.Referral, time int64, height uint64) *Entry {
	return &Entry{
		Referral: ref,
		Time:     time,
		Height:   height,
		Weight:   referral.Weight(ref),
	}
}

// Size - virtual byte size of the entry
func (entry *Entry) Size() int {
	return referral.VirtualSize(entry.Weight)
}

// RemovalReason - why an entry left the pool
type RemovalReason int

// enumerate the removal reasons
const (
	ReasonUnknown RemovalReason = iota
	ReasonExpiry
	ReasonConflict
	ReasonBlock
)

func (reason RemovalReason) String() string {
	switch reason {
	case ReasonExpiry:
		return "expiry"
	case ReasonConflict:
		return "conflict"
	case ReasonBlock:
		return "block"
	default:
		return "unknown"
	}
}

// EntryAdded - message bus event for an accepted referral
type EntryAdded struct {
	Referral *referral.Referral
}

// EntryRemoved - message bus event for an evicted referral
type EntryRemoved struct {
	Referral *referral.Referral
	Reason   RemovalReason
}
