// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refstore_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/refstore"
	"github.com/refnet-project/refnetd/storage"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test.leveldb"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func setup(t *testing.T) {
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
}

func teardown(t *testing.T) {
	_ = refstore.Finalise()
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

// helper to make a distinct address from a tag
func makeAddress(tag byte) referral.Address {
	address := referral.Address{}
	for i := 0; i < referral.AddressLength; i += 1 {
		address[i] = tag
	}
	return address
}

// helper to make a referral naming its referrer
func makeChild(tag byte, parent *referral.Referral) *referral.Referral {
	ref := &referral.Referral{
		AddressType:      referral.RewardablePubKey,
		Address:          makeAddress(tag),
		ParentAddress:    parent.Address,
		PreviousReferral: parent.CodeHash(),
		Signature:        bytes.Repeat([]byte{tag}, 64),
	}
	return ref
}

// helper to make a root referral with unknown ancestry
func makeRoot(tag byte) *referral.Referral {
	return &referral.Referral{
		AddressType:      referral.RewardablePubKey,
		Address:          makeAddress(tag),
		ParentAddress:    makeAddress(tag + 100),
		PreviousReferral: referral.NewCodeHash([]byte{tag + 100}),
		Signature:        bytes.Repeat([]byte{tag}, 64),
	}
}

// insert the chain A <- B <- C and return it
func insertChain(t *testing.T) (*referral.Referral, *referral.Referral, *referral.Referral) {
	a := makeRoot(0x0a)
	b := makeChild(0x0b, a)
	c := makeChild(0x0c, b)

	if err := refstore.InsertReferral(a, true); nil != err {
		t.Fatalf("insert a error: %s", err)
	}
	if err := refstore.InsertReferral(b, false); nil != err {
		t.Fatalf("insert b error: %s", err)
	}
	if err := refstore.InsertReferral(c, false); nil != err {
		t.Fatalf("insert c error: %s", err)
	}
	return a, b, c
}
