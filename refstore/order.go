// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package refstore

import (
	"github.com/refnet-project/refnetd/fault"
	"github.com/refnet-project/refnetd/referral"
)

// OrderReferrals - reorder a block's referrals parents before children
//
// builds a dependency forest keyed by code hash and walks it breadth
// first; roots are the referrals whose referrer is already stored
//
// the slice is reordered in place; the relative order of roots and the
// first-seen order of children under each parent are preserved
//
// returns InvalidBlockReferrals when no root is resolvable or when the
// walk cannot cover every input (disconnected subtree, cycle in the
// block or orphaned child)
func OrderReferrals(refs []*referral.Referral) error {
	if 0 == len(refs) {
		return nil
	}

	roots := make([]*referral.Referral, 0, len(refs))
	disconnected := make([]*referral.Referral, 0, len(refs))
	for _, ref := range refs {
		if ReferralCodeExists(ref.PreviousReferral) {
			roots = append(roots, ref)
		} else {
			disconnected = append(disconnected, ref)
		}
	}

	// a block dangling entirely off unknown ancestry is invalid
	if 0 == len(roots) {
		return fault.InvalidBlockReferrals
	}

	graph := make(map[referral.CodeHash][]*referral.Referral, len(refs))
	for _, ref := range roots {
		graph[ref.CodeHash()] = nil
	}
	for _, ref := range disconnected {
		graph[ref.PreviousReferral] = append(graph[ref.PreviousReferral], ref)
	}

	queue := make([]*referral.Referral, len(roots), len(refs))
	copy(queue, roots)

	slot := 0
	for 0 != len(queue) && slot < len(refs) {
		ref := queue[0]
		queue = queue[1:]
		refs[slot] = ref
		slot += 1
		queue = append(queue, graph[ref.CodeHash()]...)
	}

	if slot != len(refs) || 0 != len(queue) {
		return fault.InvalidBlockReferrals
	}

	return nil
}
