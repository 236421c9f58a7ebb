// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refpool_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/refnet-project/refnetd/refcache"
	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/refpool"
	"github.com/refnet-project/refnetd/refstore"
	"github.com/refnet-project/refnetd/storage"
	"github.com/refnet-project/refnetd/transactionrecord"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test.leveldb"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func setup(t *testing.T) (*refpool.Pool, *refcache.Cache) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	err := storage.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	err = refstore.Initialise()
	if nil != err {
		t.Fatalf("refstore initialise error: %s", err)
	}
	cache := refcache.New()
	return refpool.New(cache), cache
}

func teardown(t *testing.T) {
	_ = refstore.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

func makeAddress(tag byte) referral.Address {
	address := referral.Address{}
	for i := 0; i < referral.AddressLength; i += 1 {
		address[i] = tag
	}
	return address
}

func makeRoot(tag byte) *referral.Referral {
	return &referral.Referral{
		AddressType:      referral.RewardablePubKey,
		Address:          makeAddress(tag),
		ParentAddress:    makeAddress(tag + 100),
		PreviousReferral: referral.NewCodeHash([]byte{tag + 100}),
		Signature:        bytes.Repeat([]byte{tag}, 64),
	}
}

func makeChild(tag byte, parent *referral.Referral) *referral.Referral {
	return &referral.Referral{
		AddressType:      referral.RewardablePubKey,
		Address:          makeAddress(tag),
		ParentAddress:    parent.Address,
		PreviousReferral: parent.CodeHash(),
		Signature:        bytes.Repeat([]byte{tag}, 64),
	}
}

// add a referral at a time, asserting acceptance
func addEntry(t *testing.T, pool *refpool.Pool, ref *referral.Referral, time int64) {
	ok := pool.AddUnchecked(ref.CodeHash(), refpool.NewEntry(ref, time, 1))
	assert.True(t, ok, "entry rejected: %s", ref.Address)
}

func TestAddAndLookup(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	addEntry(t, pool, p, 100)

	entry, ok := pool.Get(p.CodeHash())
	assert.True(t, ok, "entry not found by hash")
	assert.Equal(t, p.Address, entry.Referral.Address, "wrong entry")
	assert.True(t, entry.Weight > 0, "zero weight")
	assert.Equal(t, entry.Weight, 4*entry.Size(), "weight and size disagree")

	ref, ok := pool.GetWithAddress(p.Address)
	assert.True(t, ok, "entry not found by address")
	assert.Equal(t, p.Address, ref.Address, "wrong referral by address")
	assert.True(t, pool.ExistsWithAddress(p.Address), "address not beaconed")
	assert.False(t, pool.ExistsWithAddress(makeAddress(0x7f)), "phantom address beaconed")

	// duplicate hash is refused
	assert.False(t, pool.AddUnchecked(p.CodeHash(), refpool.NewEntry(p, 200, 2)), "duplicate accepted")
	assert.Equal(t, 1, pool.Count(), "wrong count")
	assert.True(t, pool.DynamicMemoryUsage() > 0, "zero memory usage")
}

func TestRemoveRecursive(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c1 := makeChild(0x0b, p)
	c2 := makeChild(0x0c, p)
	g := makeChild(0x0d, c1)

	addEntry(t, pool, p, 100)
	addEntry(t, pool, c1, 110)
	addEntry(t, pool, c2, 120)
	addEntry(t, pool, g, 130)

	descendants := pool.CalculateDescendants(p.CodeHash())
	assert.Equal(t, 4, len(descendants), "wrong descendant count")

	pool.RemoveRecursive(p, refpool.ReasonConflict)
	assert.Equal(t, 0, pool.Count(), "pool not empty after recursive removal")
	assert.Equal(t, 0, pool.DynamicMemoryUsage(), "usage not zero when empty")
}

func TestRemoveRecursiveSubtree(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c1 := makeChild(0x0b, p)
	c2 := makeChild(0x0c, p)
	g := makeChild(0x0d, c1)

	addEntry(t, pool, p, 100)
	addEntry(t, pool, c1, 110)
	addEntry(t, pool, c2, 120)
	addEntry(t, pool, g, 130)

	// removing c1 takes g but leaves p and c2
	pool.RemoveRecursive(c1, refpool.ReasonConflict)
	assert.Equal(t, 2, pool.Count(), "wrong count after subtree removal")

	_, ok := pool.Get(c1.CodeHash())
	assert.False(t, ok, "removed entry still pooled")
	_, ok = pool.Get(g.CodeHash())
	assert.False(t, ok, "descendant still pooled")
	_, ok = pool.Get(p.CodeHash())
	assert.True(t, ok, "parent swept by child removal")
	_, ok = pool.Get(c2.CodeHash())
	assert.True(t, ok, "sibling swept by child removal")
}

// add then remove with no descendants leaves an empty pool
func TestAddRemoveRoundTrip(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	addEntry(t, pool, p, 100)
	pool.RemoveRecursive(p, refpool.ReasonUnknown)

	assert.Equal(t, 0, pool.Count(), "pool not empty")
	assert.Equal(t, 0, pool.DynamicMemoryUsage(), "usage not zero")
}

func TestRemoveForBlock(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c := makeChild(0x0b, p)
	g := makeChild(0x0c, c)

	addEntry(t, pool, p, 100)
	addEntry(t, pool, c, 110)
	addEntry(t, pool, g, 120)

	// block confirms p and c only; g stays pending
	pool.RemoveForBlock([]*referral.Referral{p, c})

	assert.Equal(t, 1, pool.Count(), "wrong count after block removal")
	_, ok := pool.Get(g.CodeHash())
	assert.True(t, ok, "pending descendant swept by block removal")
}

func TestExpireCascade(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c := makeChild(0x0b, p)

	addEntry(t, pool, p, 100)
	addEntry(t, pool, c, 200)

	// cutoff between the two entry times: the descendant is swept
	// even though it is newer than the cutoff
	n := pool.Expire(150)
	assert.Equal(t, 2, n, "wrong eviction count")
	assert.Equal(t, 0, pool.Count(), "pool not empty after expiry")
}

func TestExpireKeepsFresh(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	old := makeRoot(0x0a)
	fresh := makeRoot(0x0b)

	addEntry(t, pool, old, 100)
	addEntry(t, pool, fresh, 200)

	n := pool.Expire(150)
	assert.Equal(t, 1, n, "wrong eviction count")

	_, ok := pool.Get(fresh.CodeHash())
	assert.True(t, ok, "fresh entry expired")
}

// an orphan added before its parent is not adopted later
func TestNoRetroactiveAdoption(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c := makeChild(0x0b, p)

	addEntry(t, pool, c, 100) // orphan: parent not pooled yet
	addEntry(t, pool, p, 110)

	pool.RemoveRecursive(p, refpool.ReasonConflict)

	// c was never linked under p so it survives
	_, ok := pool.Get(c.CodeHash())
	assert.True(t, ok, "orphan retroactively adopted")
}

func TestReferralsForTransaction(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	// beaconed on chain: in the store with a parent link
	rootRef := makeRoot(0x0a)
	chainRef := makeChild(0x0b, rootRef)
	assert.Nil(t, refstore.InsertReferral(rootRef, true), "insert root")
	assert.Nil(t, refstore.InsertReferral(chainRef, false), "insert chain referral")

	// beaconed only in the pool
	poolRef := makeChild(0x0c, chainRef)
	addEntry(t, pool, poolRef, 100)

	tx := &transactionrecord.Transaction{
		Outputs: []transactionrecord.Output{
			{Value: 10, PkScript: transactionrecord.PayToAddressScript(chainRef.Address)},
			{Value: 20, PkScript: transactionrecord.PayToAddressScript(poolRef.Address)},
			{Value: 30, PkScript: transactionrecord.PayToAddressScript(poolRef.Address)}, // duplicate
			{Value: 0, PkScript: []byte{0x6a, 0x01, 0xff}},                               // unspendable
			{Value: 40, PkScript: transactionrecord.PayToAddressScript(makeAddress(0x7f))},
		},
	}

	refs := pool.ReferralsForTransaction(tx)
	assert.Equal(t, 1, len(refs), "wrong attachment count")
	assert.Equal(t, poolRef.Address, refs[0].Address, "wrong attached referral")
}

func TestClear(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c := makeChild(0x0b, p)
	addEntry(t, pool, p, 100)
	addEntry(t, pool, c, 110)

	pool.Clear()
	assert.Equal(t, 0, pool.Count(), "pool not empty after clear")
	assert.Equal(t, 0, pool.DynamicMemoryUsage(), "usage not zero after clear")
	assert.False(t, pool.ExistsWithAddress(p.Address), "address index not cleared")
}

func TestReferralsSnapshot(t *testing.T) {
	pool, _ := setup(t)
	defer teardown(t)

	p := makeRoot(0x0a)
	c := makeChild(0x0b, p)
	addEntry(t, pool, p, 100)
	addEntry(t, pool, c, 110)

	refs := pool.Referrals()
	assert.Equal(t, 2, len(refs), "wrong snapshot size")
}
