// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/refnet-project/refnetd/fault"
)

// Access - database access with an optional open batch
//
// while a batch is open (Begin…Commit/Abort) puts and deletes are
// staged; the staged map keeps them visible to gets so an ANV walk
// reads its own pending writes
type Access interface {
	Begin() error
	Commit() error
	Abort()
	InUse() bool
	Put([]byte, []byte)
	Delete([]byte)
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	Iterator(*ldb_util.Range) iterator.Iterator
}

// a write queued in the open batch
type stagedWrite struct {
	deleted bool
	value   []byte
}

type accessData struct {
	sync.Mutex
	inUse  bool
	db     *leveldb.DB
	batch  *leveldb.Batch
	staged map[string]stagedWrite
}

func newAccess(db *leveldb.DB) Access {
	return &accessData{
		inUse:  false,
		db:     db,
		batch:  new(leveldb.Batch),
		staged: make(map[string]stagedWrite),
	}
}

func (d *accessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.TransactionAlreadyInUse
	}

	d.inUse = true
	return nil
}

func (d *accessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	d.reset()
	return err
}

func (d *accessData) Abort() {
	d.Lock()
	defer d.Unlock()
	d.reset()
}

// hold lock before calling
func (d *accessData) reset() {
	d.batch.Reset()
	d.staged = make(map[string]stagedWrite)
	d.inUse = false
}

func (d *accessData) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}

func (d *accessData) Put(key []byte, value []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.staged[string(key)] = stagedWrite{value: value}
		d.batch.Put(key, value)
		return
	}
	err := d.db.Put(key, value, nil)
	logger.PanicIfError("access.Put", err)
}

func (d *accessData) Delete(key []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.staged[string(key)] = stagedWrite{deleted: true}
		d.batch.Delete(key)
		return
	}
	err := d.db.Delete(key, nil)
	logger.PanicIfError("access.Delete", err)
}

func (d *accessData) Get(key []byte) ([]byte, error) {
	d.Lock()
	if w, ok := d.staged[string(key)]; ok {
		d.Unlock()
		if w.deleted {
			return nil, leveldb.ErrNotFound
		}
		return w.value, nil
	}
	d.Unlock()
	return d.db.Get(key, nil)
}

func (d *accessData) Has(key []byte) (bool, error) {
	d.Lock()
	if w, ok := d.staged[string(key)]; ok {
		d.Unlock()
		return !w.deleted, nil
	}
	d.Unlock()
	return d.db.Has(key, nil)
}

func (d *accessData) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}
