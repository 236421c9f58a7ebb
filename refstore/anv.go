// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refstore

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/fault"
	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/storage"
)

// AddressANV - per address aggregate network value
//
// the stored address type is never zero and the address is never null;
// the amount never goes negative
type AddressANV struct {
	AddressType uint8            `json:"addressType"`
	Address     referral.Address `json:"address"`
	Amount      int64            `json:"amount"`
}

// packed tuple: address type ++ address ++ amount (big endian, 8 bytes)
const anvValueLength = 1 + referral.AddressLength + 8

func (anv AddressANV) pack() []byte {
	buffer := make([]byte, 0, anvValueLength)
	buffer = append(buffer, anv.AddressType)
	buffer = append(buffer, anv.Address[:]...)
	amount := make([]byte, 8)
	binary.BigEndian.PutUint64(amount, uint64(anv.Amount))
	return append(buffer, amount...)
}

func anvFromBytes(buffer []byte) (AddressANV, error) {
	if anvValueLength != len(buffer) {
		return AddressANV{}, fault.WrongReferralRecordLength
	}
	anv := AddressANV{
		AddressType: buffer[0],
		Amount:      int64(binary.BigEndian.Uint64(buffer[1+referral.AddressLength:])),
	}
	copy(anv.Address[:], buffer[1:1+referral.AddressLength])
	return anv, nil
}

// UpdateANV - add a signed delta to an address and all its ancestors
//
// the change can be negative if there was a debit; every touched tuple
// is staged and committed as a single database batch
func UpdateANV(addressType uint8, start referral.Address, delta int64) error {
	globalData.log.Debugf("update ANV: type: %d %s %+d", addressType, start, delta)

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}

	address := start
	for level := 0; ; level += 1 {

		// the referral tree must never contain cycles
		if level >= MaxLevels {
			trx.Abort()
			logger.Panicf("refstore: ancestor walk from: %s exceeded %d levels: referral tree cycle", start, MaxLevels)
		}

		value := trx.Get(storage.Pool.ANVs, address[:])
		if nil == value {
			globalData.log.Errorf("missing ANV for: %s", address)
			trx.Abort()
			return fault.ReferralNotFound
		}

		anv, err := anvFromBytes(value)
		if nil != err {
			trx.Abort()
			return err
		}
		if 0 == anv.AddressType {
			trx.Abort()
			logger.Panicf("refstore: stored ANV for: %s has zero address type", address)
		}
		if anv.Address.IsNull() {
			trx.Abort()
			logger.Panicf("refstore: stored ANV for: %s has null address", address)
		}

		globalData.log.Debugf("  %d: %s %d %+d", level, anv.Address, anv.Amount, delta)

		anv.Amount += delta
		if anv.Amount < 0 {
			trx.Abort()
			logger.Panicf("refstore: ANV underflow for: %s", address)
		}
		trx.Put(storage.Pool.ANVs, address[:], anv.pack())

		parent := trx.Get(storage.Pool.Parents, address[:])
		if nil == parent {
			break
		}
		if err := referral.AddressFromBytes(&address, parent); nil != err {
			trx.Abort()
			return err
		}
	}

	return trx.Commit()
}

// GetANV - read the ANV tuple of a single address
func GetANV(address referral.Address) (AddressANV, bool) {
	value := storage.Pool.ANVs.Get(address[:])
	if nil == value {
		return AddressANV{}, false
	}
	anv, err := anvFromBytes(value)
	if nil != err {
		logger.Panicf("refstore: corrupt ANV record for: %s: %s", address, err)
	}
	return anv, true
}

// GetAllANVs - scan every ANV tuple in the store
func GetAllANVs() []AddressANV {
	return scanANVs(func(AddressANV) bool { return true })
}

// GetAllRewardableANVs - scan ANV tuples with a rewardable address type
func GetAllRewardableANVs() []AddressANV {
	return scanANVs(func(anv AddressANV) bool {
		return referral.RewardablePubKey == anv.AddressType ||
			referral.RewardableScript == anv.AddressType
	})
}

func scanANVs(keep func(AddressANV) bool) []AddressANV {
	anvs := []AddressANV{}
	err := storage.Pool.ANVs.Scan(func(key []byte, value []byte) error {
		anv, err := anvFromBytes(value)
		if nil != err {
			// skip rows that do not decode as ANV tuples
			return nil
		}
		if keep(anv) {
			anvs = append(anvs, anv)
		}
		return nil
	})
	logger.PanicIfError("refstore.scanANVs", err)
	return anvs
}
