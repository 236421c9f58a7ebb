// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral_test

import (
	"bytes"
	"testing"

	"github.com/refnet-project/refnetd/fault"
	"github.com/refnet-project/refnetd/referral"
)

// helper to make an address from a short tag
func makeAddress(tag byte) referral.Address {
	address := referral.Address{}
	address[0] = tag
	address[referral.AddressLength-1] = tag
	return address
}

func makeReferral(tag byte) *referral.Referral {
	parent := makeAddress(tag + 1)
	return &referral.Referral{
		AddressType:      referral.RewardablePubKey,
		Address:          makeAddress(tag),
		PreviousReferral: referral.NewCodeHash([]byte{tag + 1}),
		ParentAddress:    parent,
		Signature:        bytes.Repeat([]byte{tag}, 64),
	}
}

func TestPackUnpack(t *testing.T) {

	ref := makeReferral(0x21)

	packed, err := ref.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}

	// expected layout: type ++ address ++ previous ++ parent ++ varint len ++ signature
	expectedLength := 1 + referral.AddressLength + referral.CodeHashLength +
		referral.AddressLength + 1 + len(ref.Signature)
	if len(packed) != expectedLength {
		t.Errorf("packed length: %d  expected: %d", len(packed), expectedLength)
	}
	if packed[0] != ref.AddressType {
		t.Errorf("address type: %d  expected: %d", packed[0], ref.AddressType)
	}

	unpacked, err := packed.Unpack()
	if nil != err {
		t.Fatalf("unpack error: %s", err)
	}
	if ref.AddressType != unpacked.AddressType ||
		ref.Address != unpacked.Address ||
		ref.PreviousReferral != unpacked.PreviousReferral ||
		ref.ParentAddress != unpacked.ParentAddress {
		t.Errorf("unpack field mismatch: %#v", unpacked)
	}
	if !bytes.Equal(ref.Signature, unpacked.Signature) {
		t.Errorf("unpack signature mismatch: %x  expected: %x", unpacked.Signature, ref.Signature)
	}

	// repack must be byte identical
	repacked, err := unpacked.Pack()
	if nil != err {
		t.Fatalf("repack error: %s", err)
	}
	if !bytes.Equal(packed, repacked) {
		t.Errorf("repack mismatch: %x  expected: %x", repacked, packed)
	}
}

func TestCodeHashStability(t *testing.T) {

	ref := makeReferral(0x42)
	hash := ref.CodeHash()

	// signature must not affect the content hash
	signed := *ref
	signed.Signature = bytes.Repeat([]byte{0x99}, 96)
	if hash != signed.CodeHash() {
		t.Errorf("code hash changed by signature")
	}

	// hash from the packed form must agree
	packed, err := ref.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}
	if hash != packed.MakeCodeHash() {
		t.Errorf("packed code hash mismatch")
	}

	// any content change must change the hash
	changed := *ref
	changed.ParentAddress = makeAddress(0x77)
	if hash == changed.CodeHash() {
		t.Errorf("code hash did not change with content")
	}
}

func TestPackErrors(t *testing.T) {

	ref := makeReferral(0x11)
	ref.AddressType = 0
	if _, err := ref.Pack(); fault.AddressTypeIsZero != err {
		t.Errorf("zero address type: %v  expected: %v", err, fault.AddressTypeIsZero)
	}

	ref = makeReferral(0x11)
	ref.Address = referral.Address{}
	if _, err := ref.Pack(); fault.AddressIsNull != err {
		t.Errorf("null address: %v  expected: %v", err, fault.AddressIsNull)
	}

	ref = makeReferral(0x11)
	ref.Signature = make(referral.Signature, 1025)
	if _, err := ref.Pack(); fault.SignatureTooLong != err {
		t.Errorf("oversize signature: %v  expected: %v", err, fault.SignatureTooLong)
	}
}

func TestUnpackErrors(t *testing.T) {

	// truncated record
	if _, err := (referral.Packed{0x01, 0x02}).Unpack(); fault.WrongReferralRecordLength != err {
		t.Errorf("truncated record: %v  expected: %v", err, fault.WrongReferralRecordLength)
	}

	// signature length beyond the buffer
	ref := makeReferral(0x33)
	packed, err := ref.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}
	if _, err := packed[:len(packed)-1].Unpack(); fault.WrongReferralRecordLength != err {
		t.Errorf("short signature: %v  expected: %v", err, fault.WrongReferralRecordLength)
	}
}

func TestWeight(t *testing.T) {

	ref := makeReferral(0x55)
	packed, err := ref.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}

	weight := referral.Weight(ref)
	if weight != 4*len(packed) {
		t.Errorf("weight: %d  expected: %d", weight, 4*len(packed))
	}
	if referral.VirtualSize(weight) != len(packed) {
		t.Errorf("virtual size: %d  expected: %d", referral.VirtualSize(weight), len(packed))
	}
	if 1 != referral.VirtualSize(1) {
		t.Errorf("virtual size rounding: %d  expected: 1", referral.VirtualSize(1))
	}
}
