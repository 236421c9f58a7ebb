// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/refnet-project/refnetd/fault"
)

// CodeHashLength - number of bytes in the code hash
const CodeHashLength = 32

// CodeHash - SHA3-256 digest identifying a referral by content
type CodeHash [CodeHashLength]byte

// NewCodeHash - create a code hash from a byte slice
func NewCodeHash(record []byte) CodeHash {
	return sha3.Sum256(record)
}

// IsNull - true for the all-zero sentinel
func (hash CodeHash) IsNull() bool {
	return hash == CodeHash{}
}

// String - convert a binary code hash to hex string for use by the fmt package (for %s)
func (hash CodeHash) String() string {
	return hex.EncodeToString(hash[:])
}

// GoString - convert a binary code hash to hex string for use by the fmt package (for %#v)
func (hash CodeHash) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(hash[:]) + ">"
}

// MarshalText - convert a code hash to hex text
func (hash CodeHash) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(CodeHashLength))
	hex.Encode(buffer, hash[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a code hash
func (hash *CodeHash) UnmarshalText(s []byte) error {
	if CodeHashLength != hex.DecodedLen(len(s)) {
		return fault.WrongCodeHashLength
	}
	buffer := make([]byte, CodeHashLength)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(hash[:], buffer)
	return nil
}

// CodeHashFromBytes - convert and validate a byte slice to a code hash
func CodeHashFromBytes(hash *CodeHash, buffer []byte) error {
	if CodeHashLength != len(buffer) {
		return fault.WrongCodeHashLength
	}
	copy(hash[:], buffer)
	return nil
}
