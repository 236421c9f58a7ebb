// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral

import (
	"encoding/hex"

	"github.com/refnet-project/refnetd/fault"
)

// AddressLength - number of bytes in an address
const AddressLength = 20

// Address - fixed width identifier of a beaconed wallet
type Address [AddressLength]byte

// IsNull - true for the all-zero sentinel
func (address Address) IsNull() bool {
	return address == Address{}
}

// String - convert a binary address to hex string for use by the fmt package (for %s)
func (address Address) String() string {
	return hex.EncodeToString(address[:])
}

// GoString - convert a binary address to hex string for use by the fmt package (for %#v)
func (address Address) GoString() string {
	return "<address:" + hex.EncodeToString(address[:]) + ">"
}

// MarshalText - convert an address to hex text
func (address Address) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(AddressLength))
	hex.Encode(buffer, address[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into an address
func (address *Address) UnmarshalText(s []byte) error {
	if AddressLength != hex.DecodedLen(len(s)) {
		return fault.WrongAddressLength
	}
	buffer := make([]byte, AddressLength)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(address[:], buffer)
	return nil
}

// AddressFromBytes - convert and validate a byte slice to an address
func AddressFromBytes(address *Address, buffer []byte) error {
	if AddressLength != len(buffer) {
		return fault.WrongAddressLength
	}
	copy(address[:], buffer)
	return nil
}
