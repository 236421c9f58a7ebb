// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockhandler - apply a block's referral set
//
// the driver between block validation and the referral subsystem:
// order the block's referrals parents before children, write them
// through the view cache, drop the confirmed entries from the pool
// and flush the cache into the store
package blockhandler

import (
	"github.com/refnet-project/refnetd/refcache"
	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/refpool"
	"github.com/refnet-project/refnetd/refstore"
)

// Apply - process the referral set of a validated block
//
// an ordering failure rejects the block before anything is written;
// referrals whose descendants are not in the block leave those
// descendants pending in the pool
func Apply(refs []*referral.Referral, pool *refpool.Pool, cache *refcache.Cache) error {

	// reorder in place; an invalid forest rejects the block
	if err := refstore.OrderReferrals(refs); nil != err {
		return err
	}

	// parents are now guaranteed to precede children, so the flush
	// can insert in order without the allow-no-parent escape
	for _, ref := range refs {
		cache.InsertReferral(ref)
	}

	pool.RemoveForBlock(refs)

	return cache.Flush()
}
