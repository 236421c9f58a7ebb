// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk referral data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. address      = 20 byte wallet identifier
// 4. code hash    = 32 byte SHA3-256(content)
// 5. amount       = big endian uint64 (8 bytes) holding a non-negative value
//
// Referrals:
//
//   r ++ address    - referral record
//                     data: packed referral
//   r ++ code hash  - content alias of a stored referral
//                     data: address
//
// Tree links:
//
//   p ++ address    - parent link
//                     data: parent address
//   c ++ address    - child list
//                     data: concatenated child addresses in insertion order
//
// Key ids:
//
//   k ++ key id     - reserved: index by key id
//
// Aggregate network value:
//
//   a ++ address    - ANV tuple
//                     data: address type ++ address ++ amount
package storage
