// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral

import (
	"encoding/hex"

	"github.com/refnet-project/refnetd/fault"
	"github.com/refnet-project/refnetd/util"
)

// address types eligible for reward computation
const (
	RewardablePubKey = uint8(1)
	RewardableScript = uint8(2)
)

// byte sizes for various fields
const (
	maxSignatureLength = 1024

	// fixed part of a packed record: type + address + code hash + parent address
	packedFixedLength = 1 + AddressLength + CodeHashLength + AddressLength
)

// Signature - the opaque signature payload of a referral
type Signature []byte

// Referral - a signed record beaconing a new address into the tree
//
// immutable after creation; the code hash is derived, not stored
type Referral struct {
	AddressType      uint8     `json:"addressType"`
	Address          Address   `json:"address"`
	PreviousReferral CodeHash  `json:"previousReferral"`
	ParentAddress    Address   `json:"parentAddress"`
	Signature        Signature `json:"signature"`
}

// Packed - packed records are just a byte slice
type Packed []byte

// Pack - serialize a referral to its stable byte layout
//
// fields in struct order, signature last preceded by its Varint64 length
func (ref *Referral) Pack() (Packed, error) {
	if 0 == ref.AddressType {
		return nil, fault.AddressTypeIsZero
	}
	if ref.Address.IsNull() {
		return nil, fault.AddressIsNull
	}
	if len(ref.Signature) > maxSignatureLength {
		return nil, fault.SignatureTooLong
	}

	message := make(Packed, 0, packedFixedLength+util.Varint64MaximumBytes+len(ref.Signature))
	message = append(message, ref.AddressType)
	message = append(message, ref.Address[:]...)
	message = append(message, ref.PreviousReferral[:]...)
	message = append(message, ref.ParentAddress[:]...)
	message = append(message, util.ToVarint64(uint64(len(ref.Signature)))...)
	return append(message, ref.Signature...), nil
}

// Unpack - decode a packed record back to a referral
func (record Packed) Unpack() (*Referral, error) {
	if len(record) < packedFixedLength+1 {
		return nil, fault.WrongReferralRecordLength
	}

	ref := &Referral{
		AddressType: record[0],
	}
	n := 1
	copy(ref.Address[:], record[n:n+AddressLength])
	n += AddressLength
	copy(ref.PreviousReferral[:], record[n:n+CodeHashLength])
	n += CodeHashLength
	copy(ref.ParentAddress[:], record[n:n+AddressLength])
	n += AddressLength

	signatureLength, count := util.FromVarint64(record[n:])
	if 0 == count || signatureLength > maxSignatureLength {
		return nil, fault.WrongReferralRecordLength
	}
	n += count
	if uint64(len(record)-n) != signatureLength {
		return nil, fault.WrongReferralRecordLength
	}
	ref.Signature = make(Signature, signatureLength)
	copy(ref.Signature, record[n:])

	return ref, nil
}

// CodeHash - content identity of a referral
//
// the signature is excluded so the hash is stable across signing
func (ref *Referral) CodeHash() CodeHash {
	message := make([]byte, 0, packedFixedLength)
	message = append(message, ref.AddressType)
	message = append(message, ref.Address[:]...)
	message = append(message, ref.PreviousReferral[:]...)
	message = append(message, ref.ParentAddress[:]...)
	return NewCodeHash(message)
}

// MakeCodeHash - content identity of a packed record
func (record Packed) MakeCodeHash() CodeHash {
	return NewCodeHash(record[:packedFixedLength])
}

// MarshalText - convert a packed record to its hex JSON form
func (record Packed) MarshalText() ([]byte, error) {
	b := make([]byte, hex.EncodedLen(len(record)))
	hex.Encode(b, record)
	return b, nil
}

// UnmarshalText - convert a packed record from its hex JSON form
func (record *Packed) UnmarshalText(s []byte) error {
	*record = make([]byte, hex.DecodedLen(len(s)))
	_, err := hex.Decode(*record, s)
	return err
}
