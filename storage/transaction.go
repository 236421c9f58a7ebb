// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
)

// Transaction - batched writes spanning any of the pools
//
// all writes staged between Begin and Commit reach the database as a
// single atomic batch; staged writes are visible to Get/Has through
// the staged-write map
type Transaction interface {
	Begin() error
	Abort()
	Commit() error
	InUse() bool
	Put(*PoolHandle, []byte, []byte)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	Has(*PoolHandle, []byte) bool
}

type transactionData struct {
	access Access
}

func newTransaction(access Access) Transaction {
	return &transactionData{
		access: access,
	}
}

func (t *transactionData) Begin() error {
	return t.access.Begin()
}

func (t *transactionData) Abort() {
	t.access.Abort()
}

func (t *transactionData) Commit() error {
	return t.access.Commit()
}

func (t *transactionData) InUse() bool {
	return t.access.InUse()
}

func (t *transactionData) Put(p *PoolHandle, key []byte, value []byte) {
	t.access.Put(p.prefixKey(key), value)
}

func (t *transactionData) Delete(p *PoolHandle, key []byte) {
	t.access.Delete(p.prefixKey(key))
}

func (t *transactionData) Get(p *PoolHandle, key []byte) []byte {
	value, err := t.access.Get(p.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("transaction.Get", err)
	return value
}

func (t *transactionData) Has(p *PoolHandle, key []byte) bool {
	value, err := t.access.Has(p.prefixKey(key))
	logger.PanicIfError("transaction.Has", err)
	return value
}
