// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package refpool - the pool of validated but unconfirmed referrals
//
// entries are indexed three ways over one underlying set: by code
// hash (unique), by entry time (for expiry scans) and by beaconed
// address; a link table holds each entry's in-pool children so whole
// dependent subtrees can be evicted atomically
//
// parents are located once, at insertion: an entry added before its
// parent stays at the top of the link graph and is not adopted when
// the parent arrives later
//
// a single mutex guards all pool state; subscriber notifications are
// queued on the message bus and never block under the mutex
package refpool
