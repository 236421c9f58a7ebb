// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package refstore - persistent referral tree operations
//
// operates over the storage pools:
//   referrals keyed by address with a code hash alias row
//   parent links and ordered child lists
//   per address aggregate network value (ANV)
//
// every stored referral either has its parent referral in the store or
// was admitted as a root under the allow-no-parent flag; parent links
// terminate at a root within MaxLevels hops
//
// ANV updates walk the ancestor chain and commit all touched tuples as
// a single database batch so a failure part way leaves no partial state
package refstore
