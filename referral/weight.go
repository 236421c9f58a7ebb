// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral

// scale factor between raw serialized size and weight
const weightScaleFactor = 4

// Weight - consensus weight of a referral
//
// referrals carry no witness data so the weight is the serialized
// size at full scale
func Weight(ref *Referral) int {
	packed, err := ref.Pack()
	if nil != err {
		return 0
	}
	return weightScaleFactor * len(packed)
}

// VirtualSize - virtual byte size for a given weight, rounded up
func VirtualSize(weight int) int {
	return (weight + weightScaleFactor - 1) / weightScaleFactor
}
