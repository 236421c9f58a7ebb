// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refpool

import (
	"bytes"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/emirpasic/gods/maps/treemap"

	"github.com/refnet-project/refnetd/messagebus"
	"github.com/refnet-project/refnetd/refcache"
	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/transactionrecord"
)

// message bus source tag
const busName = "refpool"

// rough per item heap costs for DynamicMemoryUsage
const (
	entryOverhead = 192 // entry + three index rows
	linkOverhead  = 64  // one child set element
)

// key of the entry time index
type timeKey struct {
	time int64
	hash referral.CodeHash
}

// ascending by time, hash breaks ties so keys are unique
func timeKeyComparator(a, b interface{}) int {
	ka := a.(timeKey)
	kb := b.(timeKey)
	switch {
	case ka.time < kb.time:
		return -1
	case ka.time > kb.time:
		return 1
	}
	return bytes.Compare(ka.hash[:], kb.hash[:])
}

// Pool - the unconfirmed referral pool
type Pool struct {
	sync.RWMutex
	log       *logger.L
	cache     *refcache.Cache
	entries   map[referral.CodeHash]*Entry
	byAddress map[referral.Address]referral.CodeHash
	byTime    *treemap.Map
	links     map[referral.CodeHash]map[referral.CodeHash]struct{}
	linkCount int
}

// New - create an empty pool over the view cache
func New(cache *refcache.Cache) *Pool {
	return &Pool{
		log:       logger.New(busName),
		cache:     cache,
		entries:   make(map[referral.CodeHash]*Entry),
		byAddress: make(map[referral.Address]referral.CodeHash),
		byTime:    treemap.NewWith(timeKeyComparator),
		links:     make(map[referral.CodeHash]map[referral.CodeHash]struct{}),
	}
}

// AddUnchecked - admit a referral that already passed validation
//
// the entry is linked under its parent when the parent is pooled;
// otherwise it stays at the top of the link graph as an orphan
//
// returns false for a duplicate hash
func (pool *Pool) AddUnchecked(hash referral.CodeHash, entry *Entry) bool {
	messagebus.Send(busName, EntryAdded{Referral: entry.Referral})

	pool.Lock()
	defer pool.Unlock()

	if _, ok := pool.entries[hash]; ok {
		return false
	}

	pool.entries[hash] = entry
	pool.byAddress[entry.Referral.Address] = hash
	pool.byTime.Put(timeKey{time: entry.Time, hash: hash}, entry)
	pool.links[hash] = make(map[referral.CodeHash]struct{})

	// check pooled referrals for a parent
	if parentHash, ok := pool.byAddress[entry.Referral.ParentAddress]; ok {
		pool.links[parentHash][hash] = struct{}{}
		pool.linkCount += 1
	}

	pool.log.Debugf("add: %s address: %s", hash, entry.Referral.Address)
	return true
}

// CalculateDescendants - the entry and everything depending on it
//
// breadth first over the link table; terminates because the link
// graph is a finite forest without cycles
func (pool *Pool) CalculateDescendants(hash referral.CodeHash) []*Entry {
	pool.RLock()
	defer pool.RUnlock()

	stage := make(map[referral.CodeHash]*Entry)
	pool.calculateDescendants(hash, stage)

	descendants := make([]*Entry, 0, len(stage))
	for _, entry := range stage {
		descendants = append(descendants, entry)
	}
	return descendants
}

// hold lock before calling
func (pool *Pool) calculateDescendants(hash referral.CodeHash, out map[referral.CodeHash]*Entry) {
	entry, ok := pool.entries[hash]
	if !ok {
		return
	}

	queue := []referral.CodeHash{hash}
	out[hash] = entry

	for 0 != len(queue) {
		current := queue[0]
		queue = queue[1:]

		for child := range pool.links[current] {
			if _, ok := out[child]; !ok {
				out[child] = pool.entries[child]
				queue = append(queue, child)
			}
		}
	}
}

// RemoveRecursive - evict a referral and all its pooled descendants
func (pool *Pool) RemoveRecursive(ref *referral.Referral, reason RemovalReason) {
	pool.Lock()
	defer pool.Unlock()

	hash := ref.CodeHash()
	if _, ok := pool.entries[hash]; !ok {
		return
	}

	stage := make(map[referral.CodeHash]*Entry)
	pool.calculateDescendants(hash, stage)
	pool.removeStaged(stage, reason)
}

// RemoveForBlock - drop the referrals confirmed by a block
//
// no recursion: descendants not in the block stay pending
func (pool *Pool) RemoveForBlock(refs []*referral.Referral) {
	pool.Lock()
	defer pool.Unlock()

	for _, ref := range refs {
		hash := ref.CodeHash()
		if entry, ok := pool.entries[hash]; ok {
			pool.removeUnchecked(hash, entry, ReasonBlock)
		}
	}
}

// Expire - evict entries older than the cutoff time
//
// descendants are swept with their ancestors even when newer than the
// cutoff; returns the eviction count
func (pool *Pool) Expire(cutoff int64) int {
	pool.Lock()
	defer pool.Unlock()

	aged := []referral.CodeHash{}
	iter := pool.byTime.Iterator()
	for iter.Next() {
		key := iter.Key().(timeKey)
		if key.time >= cutoff {
			break
		}
		aged = append(aged, key.hash)
	}

	stage := make(map[referral.CodeHash]*Entry)
	for _, hash := range aged {
		pool.calculateDescendants(hash, stage)
	}
	pool.removeStaged(stage, ReasonExpiry)

	return len(stage)
}

// hold lock before calling
func (pool *Pool) removeStaged(stage map[referral.CodeHash]*Entry, reason RemovalReason) {
	for hash, entry := range stage {
		pool.removeUnchecked(hash, entry, reason)
	}
}

// hold lock before calling
func (pool *Pool) removeUnchecked(hash referral.CodeHash, entry *Entry, reason RemovalReason) {
	messagebus.Send(busName, EntryRemoved{Referral: entry.Referral, Reason: reason})

	// unlink from a pooled parent
	if parentHash, ok := pool.byAddress[entry.Referral.ParentAddress]; ok {
		if children, ok := pool.links[parentHash]; ok {
			if _, ok := children[hash]; ok {
				delete(children, hash)
				pool.linkCount -= 1
			}
		}
	}
	pool.linkCount -= len(pool.links[hash])

	delete(pool.entries, hash)
	delete(pool.links, hash)
	pool.byTime.Remove(timeKey{time: entry.Time, hash: hash})
	if pool.byAddress[entry.Referral.Address] == hash {
		delete(pool.byAddress, entry.Referral.Address)
	}

	pool.log.Debugf("remove: %s reason: %s", hash, reason)
}

// Get - look up an entry by referral hash
func (pool *Pool) Get(hash referral.CodeHash) (*Entry, bool) {
	pool.RLock()
	defer pool.RUnlock()
	entry, ok := pool.entries[hash]
	return entry, ok
}

// GetWithAddress - look up a pooled referral beaconing an address
func (pool *Pool) GetWithAddress(address referral.Address) (*referral.Referral, bool) {
	pool.RLock()
	defer pool.RUnlock()
	if hash, ok := pool.byAddress[address]; ok {
		return pool.entries[hash].Referral, true
	}
	return nil, false
}

// ExistsWithAddress - test whether an address is beaconed in the pool
func (pool *Pool) ExistsWithAddress(address referral.Address) bool {
	pool.RLock()
	defer pool.RUnlock()
	_, ok := pool.byAddress[address]
	return ok
}

// Referrals - snapshot of all pooled referrals
func (pool *Pool) Referrals() []*referral.Referral {
	pool.RLock()
	defer pool.RUnlock()

	refs := make([]*referral.Referral, 0, len(pool.entries))
	for _, entry := range pool.entries {
		refs = append(refs, entry.Referral)
	}
	return refs
}

// ReferralsForTransaction - pooled referrals a transaction depends on
//
// for every output destination that is not already beaconed in the
// view cache, collect the pooled referral beaconing it; such
// referrals must accompany the transaction into a block
//
// the pool lock is not held across the cache dispatch
func (pool *Pool) ReferralsForTransaction(tx *transactionrecord.Transaction) []*referral.Referral {
	refs := []*referral.Referral{}
	seen := make(map[referral.Address]struct{})

	for _, output := range tx.Outputs {
		address, ok := transactionrecord.ExtractDestination(output.PkScript)
		if !ok {
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}

		// already beaconed on chain
		if pool.cache.WalletIDExists(address) {
			continue
		}

		if ref, ok := pool.GetWithAddress(address); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Count - number of pooled entries
func (pool *Pool) Count() int {
	pool.RLock()
	defer pool.RUnlock()
	return len(pool.entries)
}

// DynamicMemoryUsage - approximate heap footprint of the pool
func (pool *Pool) DynamicMemoryUsage() int {
	pool.RLock()
	defer pool.RUnlock()
	return entryOverhead*len(pool.entries) + linkOverhead*pool.linkCount
}

// Clear - drop every entry and link
func (pool *Pool) Clear() {
	pool.Lock()
	defer pool.Unlock()

	pool.entries = make(map[referral.CodeHash]*Entry)
	pool.byAddress = make(map[referral.Address]referral.CodeHash)
	pool.byTime.Clear()
	pool.links = make(map[referral.CodeHash]map[referral.CodeHash]struct{})
	pool.linkCount = 0
}
