// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/refnet-project/refnetd/fault"
)

// test that the error classes are distinguishable
func TestErrorClasses(t *testing.T) {

	if !fault.IsErrExists(fault.AlreadyInitialised) {
		t.Errorf("AlreadyInitialised is not an exists error")
	}
	if !fault.IsErrInvalid(fault.InvalidBlockReferrals) {
		t.Errorf("InvalidBlockReferrals is not an invalid error")
	}
	if !fault.IsErrNotFound(fault.ReferralNotFound) {
		t.Errorf("ReferralNotFound is not a not found error")
	}
	if fault.IsErrProcess(fault.ReferralNotFound) {
		t.Errorf("ReferralNotFound misreported as a process error")
	}
}

// errors must compare by identity
func TestErrorIdentity(t *testing.T) {

	err := func() error {
		return fault.MissingParentReferral
	}()

	if fault.MissingParentReferral != err {
		t.Errorf("identity comparison failed: %v", err)
	}
	if "missing parent referral" != err.Error() {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
