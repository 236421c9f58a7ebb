// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transactionrecord - the slice of transaction structure the
// referral subsystem touches
//
// the pool needs to see the destination address of each output to
// decide which pending referrals must accompany a transaction; the
// rest of the transaction format is outside this repository
package transactionrecord

import (
	"github.com/refnet-project/refnetd/referral"
)

// Output - a single transaction output
type Output struct {
	Value    uint64 `json:"value"`
	PkScript []byte `json:"pkScript"`
}

// Transaction - outputs of a transaction under validation
type Transaction struct {
	Outputs []Output `json:"outputs"`
}

// script opcodes used for destination extraction
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opPushAddress = 0x14 // push of one 20 byte address
	opEqual       = 0x87
	opEqualVerify = 0x88
	opCheckSig    = 0xac
	opReturn      = 0x6a
)

// ExtractDestination - the address an output pays to
//
// recognises pay-to-pubkey-hash and pay-to-script-hash; unspendable
// scripts and nonstandard forms return false
func ExtractDestination(script []byte) (referral.Address, bool) {
	address := referral.Address{}

	if 0 == len(script) || opReturn == script[0] {
		return address, false
	}

	switch {
	case 25 == len(script) &&
		opDup == script[0] &&
		opHash160 == script[1] &&
		opPushAddress == script[2] &&
		opEqualVerify == script[23] &&
		opCheckSig == script[24]:
		copy(address[:], script[3:23])
		return address, true

	case 23 == len(script) &&
		opHash160 == script[0] &&
		opPushAddress == script[1] &&
		opEqual == script[22]:
		copy(address[:], script[2:22])
		return address, true
	}

	return address, false
}

// PayToAddressScript - build a pay-to-pubkey-hash script for an address
//
// the inverse of ExtractDestination, used by tests and tools
func PayToAddressScript(address referral.Address) []byte {
	script := make([]byte, 0, 25)
	script = append(script, opDup, opHash160, opPushAddress)
	script = append(script, address[:]...)
	return append(script, opEqualVerify, opCheckSig)
}
