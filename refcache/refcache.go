// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package refcache - read-through view over the referral store
//
// memoizes address -> referral and address -> referrer lookups and
// buffers referrals written through the cache until Flush pushes them
// into the store
//
// read-through memos carry an expiration and may be dropped at any
// time: the store re-supplies them on the next miss; pending inserts
// are pinned with no expiration until Flush writes them, in insertion
// order so parents always precede children
//
// reads release the cache lock before dispatching to the store; Flush
// holds the lock while it inserts the pending referrals
package refcache

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	gocache "github.com/patrickmn/go-cache"

	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/refstore"
)

// memo lifetime: stale entries are harmless, a miss re-reads the store
const (
	memoExpiration = 1 * time.Hour
	memoSweep      = 10 * time.Minute
)

// Cache - the view cache
//
// threaded as an explicit dependency of its users, not a process
// global
type Cache struct {
	sync.RWMutex
	log       *logger.L
	referrals *gocache.Cache // address -> *referral.Referral
	referrers *gocache.Cache // address -> referral.Address
	dirty     map[referral.Address]struct{}
	dirtyList []referral.Address
}

// New - create an empty cache over the store
func New() *Cache {
	return &Cache{
		log:       logger.New("refcache"),
		referrals: gocache.New(memoExpiration, memoSweep),
		referrers: gocache.New(memoExpiration, memoSweep),
		dirty:     make(map[referral.Address]struct{}),
	}
}

// addresses are fixed width so the raw bytes are the map key
func memoKey(address referral.Address) string {
	return string(address[:])
}

// GetReferral - fetch a referral, reading through to the store on miss
func (cache *Cache) GetReferral(address referral.Address) (*referral.Referral, bool) {
	cache.RLock()
	if obj, ok := cache.referrals.Get(memoKey(address)); ok {
		cache.RUnlock()
		return obj.(*referral.Referral), true
	}
	cache.RUnlock()

	if ref, ok := refstore.GetReferral(address); ok {
		cache.insertReferral(ref)
		return ref, true
	}
	return nil, false
}

// GetReferrer - fetch the referrer of an address, reading through on miss
func (cache *Cache) GetReferrer(address referral.Address) (referral.Address, bool) {
	cache.RLock()
	if obj, ok := cache.referrers.Get(memoKey(address)); ok {
		cache.RUnlock()
		return obj.(referral.Address), true
	}
	cache.RUnlock()

	if parent, ok := refstore.GetReferrer(address); ok {
		cache.insertWalletRelationship(address, parent)
		return parent, true
	}
	return referral.Address{}, false
}

// ReferralAddressExists - test whether an address is beaconed
func (cache *Cache) ReferralAddressExists(address referral.Address) bool {
	cache.RLock()
	if _, ok := cache.referrals.Get(memoKey(address)); ok {
		cache.RUnlock()
		return true
	}
	cache.RUnlock()

	if ref, ok := refstore.GetReferral(address); ok {
		cache.insertReferral(ref)
		return true
	}
	return false
}

// WalletIDExists - test whether an address is linked to a referrer
func (cache *Cache) WalletIDExists(address referral.Address) bool {
	cache.RLock()
	if _, ok := cache.referrers.Get(memoKey(address)); ok {
		cache.RUnlock()
		return true
	}
	cache.RUnlock()

	if parent, ok := refstore.GetReferrer(address); ok {
		cache.insertWalletRelationship(address, parent)
		return true
	}
	return false
}

// InsertReferral - write a referral through the cache
//
// the entry is pinned, exempt from memo expiry, until the next Flush
// pushes it into the store
func (cache *Cache) InsertReferral(ref *referral.Referral) {
	cache.Lock()
	cache.referrals.Set(memoKey(ref.Address), ref, gocache.NoExpiration)
	if _, ok := cache.dirty[ref.Address]; !ok {
		cache.dirty[ref.Address] = struct{}{}
		cache.dirtyList = append(cache.dirtyList, ref.Address)
	}
	cache.Unlock()
}

// RemoveReferral - evict from the cache and delete from the store
func (cache *Cache) RemoveReferral(ref *referral.Referral) error {
	cache.Lock()
	cache.referrals.Delete(memoKey(ref.Address))
	cache.referrers.Delete(memoKey(ref.Address))
	if _, ok := cache.dirty[ref.Address]; ok {
		delete(cache.dirty, ref.Address)
		kept := make([]referral.Address, 0, len(cache.dirtyList))
		for _, address := range cache.dirtyList {
			if address != ref.Address {
				kept = append(kept, address)
			}
		}
		cache.dirtyList = kept
	}
	cache.Unlock()

	return refstore.RemoveReferral(ref)
}

// Flush - push referrals written through the cache into the store
//
// only dirty entries are written; read-through memos already agree
// with the store and are simply dropped
func (cache *Cache) Flush() error {
	cache.Lock()
	defer cache.Unlock()

	for _, address := range cache.dirtyList {
		obj, ok := cache.referrals.Get(memoKey(address))
		if !ok {
			continue
		}
		cache.log.Debugf("flush referral: %s", address)
		if err := refstore.InsertReferral(obj.(*referral.Referral), false); nil != err {
			return err
		}
	}

	cache.referrals.Flush()
	cache.referrers.Flush()
	cache.dirty = make(map[referral.Address]struct{})
	cache.dirtyList = nil
	return nil
}

// internal population helpers

func (cache *Cache) insertReferral(ref *referral.Referral) {
	cache.Lock()
	// never downgrade a pinned pending insert to an expiring memo
	if _, ok := cache.dirty[ref.Address]; !ok {
		cache.referrals.Set(memoKey(ref.Address), ref, gocache.DefaultExpiration)
	}
	cache.Unlock()
}

func (cache *Cache) insertWalletRelationship(child referral.Address, parent referral.Address) {
	cache.Lock()
	cache.referrers.Set(memoKey(child), parent, gocache.DefaultExpiration)
	cache.Unlock()
}
