// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpiw

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_mpiw_init_single_rank_when_disallowed(tst *testing.T) {
	chk.PrintTitle("mpiw_init_single_rank_when_disallowed")
	c := Init(false)
	if c.Rank() != 0 || c.Size() != 1 {
		tst.Fatalf("expected rank 0 size 1, got rank=%d size=%d", c.Rank(), c.Size())
	}
	if c.Distributed() {
		tst.Fatal("expected non-distributed Comm when parallel is disallowed")
	}
}

func Test_mpiw_request_cancel_completes(tst *testing.T) {
	chk.PrintTitle("mpiw_request_cancel_completes")
	r := &Request{}
	if r.Test() {
		tst.Fatal("expected a freshly allocated request, never posted, to report incomplete")
	}
	r.Cancel()
	if !r.Test() {
		tst.Fatal("expected Test to report completion after Cancel")
	}
}
