// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package referral - the referral record and its primitive types
//
// a referral is a signed record that beacons a new address into the
// network, naming the referrer by code hash and by address
//
// the packed byte layout is stable and shared with the on-disk store:
//
//   address type      1 byte  (nonzero; 1 and 2 are rewardable)
//   address          20 bytes
//   previous referral 32 bytes (code hash of the referrer)
//   parent address   20 bytes (address of the referrer)
//   signature length  Varint64
//   signature         byte array
//
// the code hash is SHA3-256 over the packed record excluding the
// signature, so the hash identifies the referral by content and is
// stable before and after signing
package referral
