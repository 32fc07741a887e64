// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package quad

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_quad_slab1d_opposite_directions(tst *testing.T) {
	chk.PrintTitle("quad_slab1d_opposite_directions")
	q := Slab1D()
	if q.Count() != 2 {
		tst.Fatalf("expected 2 directions, got %d", q.Count())
	}
	if q.Directions[0].SignX != 1 || q.Directions[1].SignX != -1 {
		tst.Fatal("expected mu=+1 then mu=-1")
	}
}

func Test_quad_s2_directions_unit_and_symmetric(tst *testing.T) {
	chk.PrintTitle("quad_s2_directions_unit_and_symmetric")
	q := S2()
	if q.Count() != 8 {
		tst.Fatalf("expected 8 directions, got %d", q.Count())
	}
	sum := [3]float64{}
	for _, d := range q.Directions {
		n := math.Sqrt(d.Omega[0]*d.Omega[0] + d.Omega[1]*d.Omega[1] + d.Omega[2]*d.Omega[2])
		if math.Abs(n-1) > 1e-9 {
			tst.Fatalf("direction %v is not a unit vector (norm=%v)", d.Omega, n)
		}
		sum[0] += d.Omega[0]
		sum[1] += d.Omega[1]
		sum[2] += d.Omega[2]
	}
	for k := 0; k < 3; k++ {
		if math.Abs(sum[k]) > 1e-9 {
			tst.Fatalf("expected octant-symmetric direction set to sum to zero, got %v", sum)
		}
	}
}

func Test_quad_s4_weights_sum_to_4pi(tst *testing.T) {
	chk.PrintTitle("quad_s4_weights_sum_to_4pi")
	q := S4()
	if q.Count() != 24 {
		tst.Fatalf("expected 24 directions, got %d", q.Count())
	}
	sum := 0.0
	for _, d := range q.Directions {
		sum += d.Weight
	}
	if math.Abs(sum-4*math.Pi) > 1e-6 {
		tst.Fatalf("expected weights to sum to 4*pi, got %v", sum)
	}
}
