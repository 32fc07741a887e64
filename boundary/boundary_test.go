// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package boundary

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_boundary_vacuum(tst *testing.T) {
	chk.PrintTitle("boundary_vacuum")
	var f Face = VacuumFace{}
	if f.Incoming(0, 0, 0) != 0 {
		tst.Fatalf("vacuum incoming must be zero")
	}
	if !f.Ready(0, 0) {
		tst.Fatalf("vacuum is always ready")
	}
}

func Test_boundary_isotropic_incident(tst *testing.T) {
	chk.PrintTitle("boundary_isotropic_incident")
	f := &IsotropicIncidentFace{Psi: [][]float64{{1.5, 2.5}}}
	chk.Scalar(tst, "psi[0][1]", 1e-15, f.Incoming(0, 1, 0), 2.5)
	chk.Scalar(tst, "psi[0][1] angle-invariant", 1e-15, f.Incoming(0, 1, 7), 2.5)
}

func Test_boundary_reflecting_pairs(tst *testing.T) {
	chk.PrintTitle("boundary_reflecting_pairs")
	// two angles mirroring each other: mu=+1 (angle 0) <-> mu=-1 (angle 1).
	f := NewReflectingFace(1, 1, 2, []int{1, 0})

	if f.Ready(0, 0) {
		tst.Fatalf("expected not ready before any deposit")
	}

	// angle 1 (mu=-1, outgoing at this boundary) deposits 3.0.
	f.SetOutgoing(0, 0, 1, 3.0)
	if !f.Ready(0, 0) {
		tst.Fatalf("expected angle 0 ready once its mirror (angle 1) deposited")
	}
	chk.Scalar(tst, "incoming angle0", 1e-15, f.Incoming(0, 0, 0), 3.0)

	f.Reset()
	if f.Ready(0, 0) {
		tst.Fatalf("expected not-ready after reset")
	}
	// value from last iteration must still be retrievable.
	chk.Scalar(tst, "incoming angle0 after reset", 1e-15, f.Incoming(0, 0, 0), 3.0)
}
