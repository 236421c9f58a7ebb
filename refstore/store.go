// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refstore

import (
	"github.com/bitmark-inc/logger"

	"github.com/refnet-project/refnetd/referral"
	"github.com/refnet-project/refnetd/storage"
)

// GetReferral - read a referral by address
func GetReferral(address referral.Address) (*referral.Referral, bool) {
	packed := storage.Pool.Referrals.Get(address[:])
	if nil == packed {
		return nil, false
	}
	ref, err := referral.Packed(packed).Unpack()
	if nil != err {
		logger.Panicf("refstore: corrupt referral record for: %s: %s", address, err)
	}
	return ref, true
}

// GetReferrer - read the parent link of an address
func GetReferrer(address referral.Address) (referral.Address, bool) {
	value := storage.Pool.Parents.Get(address[:])
	if nil == value {
		return referral.Address{}, false
	}
	parent := referral.Address{}
	if err := referral.AddressFromBytes(&parent, value); nil != err {
		logger.Panicf("refstore: corrupt parent link for: %s: %s", address, err)
	}
	return parent, true
}

// GetChildren - read the ordered child list of an address
//
// empty on miss
func GetChildren(address referral.Address) []referral.Address {
	return unpackChildren(storage.Pool.Children.Get(address[:]))
}

// InsertReferral - store a referral and link it into the tree
//
// the referral row is keyed by address; a second row keyed by the code
// hash holds the address so existence by content is answerable
//
// parent/child linkage is only written when the parent referral is
// already stored; a missing parent is fatal unless allowNoParent is
// set (genesis roots only)
func InsertReferral(ref *referral.Referral, allowNoParent bool) error {
	packed, err := ref.Pack()
	if nil != err {
		return err
	}
	codeHash := ref.CodeHash()

	globalData.log.Debugf("insert referral: %s code: %s parent: %s", ref.Address, codeHash, ref.ParentAddress)

	storage.Pool.Referrals.Put(ref.Address[:], packed)
	storage.Pool.Referrals.Put(codeHash[:], ref.Address[:])

	anv := AddressANV{
		AddressType: ref.AddressType,
		Address:     ref.Address,
		Amount:      0,
	}
	storage.Pool.ANVs.Put(ref.Address[:], anv.pack())

	if parent, ok := GetReferral(ref.ParentAddress); ok {

		storage.Pool.Parents.Put(ref.Address[:], parent.Address[:])

		children := GetChildren(parent.Address)
		children = append(children, ref.Address)
		storage.Pool.Children.Put(parent.Address[:], packChildren(children))

	} else if !allowNoParent {
		logger.Panicf("refstore: parent referral missing for: %s parent: %s", ref.Address, ref.ParentAddress)
	} else {
		globalData.log.Warnf("parent missing for code: %s", ref.PreviousReferral)
	}

	return nil
}

// RemoveReferral - roll back a stored referral
//
// erases the referral row, its code hash alias and its parent link and
// removes the address from the parent's child list preserving order
//
// the ANV row is left for the caller to roll back with negated deltas
func RemoveReferral(ref *referral.Referral) error {
	globalData.log.Debugf("remove referral: %s", ref.Address)

	codeHash := ref.CodeHash()

	storage.Pool.Referrals.Delete(ref.Address[:])
	storage.Pool.Referrals.Delete(codeHash[:])
	storage.Pool.Parents.Delete(ref.Address[:])

	if parent, ok := GetReferral(ref.ParentAddress); ok {
		children := GetChildren(parent.Address)
		kept := make([]referral.Address, 0, len(children))
		for _, child := range children {
			if child != ref.Address {
				kept = append(kept, child)
			}
		}
		storage.Pool.Children.Put(parent.Address[:], packChildren(kept))
	}

	return nil
}

// ReferralCodeExists - test a referral's presence by content hash
func ReferralCodeExists(hash referral.CodeHash) bool {
	return storage.Pool.Referrals.Has(hash[:])
}

// ReferralAddressExists - test a referral's presence by address
func ReferralAddressExists(address referral.Address) bool {
	return storage.Pool.Referrals.Has(address[:])
}

// WalletIDExists - test whether an address is linked to a referrer
func WalletIDExists(address referral.Address) bool {
	return storage.Pool.Parents.Has(address[:])
}

// child lists are stored as concatenated addresses in insertion order

func packChildren(children []referral.Address) []byte {
	buffer := make([]byte, 0, referral.AddressLength*len(children))
	for _, child := range children {
		buffer = append(buffer, child[:]...)
	}
	return buffer
}

func unpackChildren(buffer []byte) []referral.Address {
	if 0 == len(buffer) {
		return nil
	}
	if 0 != len(buffer)%referral.AddressLength {
		logger.Panicf("refstore: corrupt child list: %d bytes", len(buffer))
	}
	children := make([]referral.Address, 0, len(buffer)/referral.AddressLength)
	for i := 0; i < len(buffer); i += referral.AddressLength {
		child := referral.Address{}
		copy(child[:], buffer[i:i+referral.AddressLength])
		children = append(children, child)
	}
	return children
}
