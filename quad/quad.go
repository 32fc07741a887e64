// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package quad implements the Quadrature upstream interface (spec §6) and a
// couple of fixed, built-in quadratures sufficient to drive the end-to-end
// test scenarios (§8 S1-S4). Quadrature construction proper (general
// level-symmetric / product rules) is out of scope (spec §1 Non-goals); we
// only need to produce a deterministic, literal direction set for tests.
package quad

import "math"

// Direction is one discrete ordinate (spec §3 "Direction Ω").
type Direction struct {
	Index      int        // index into the owning Quadrature's Omega/Weight slices
	Omega      [3]float64 // unit 3-vector
	Weight     float64    // quadrature weight
	SignX      int8       // sign(Ωx) in {-1,0,1}, tie-breaker
	SignY      int8       // sign(Ωy)
	SignZ      int8       // sign(Ωz)
}

func sign(v float64) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func newDirection(index int, x, y, z, w float64) Direction {
	n := math.Sqrt(x*x + y*y + z*z)
	if n > 0 {
		x, y, z = x/n, y/n, z/n
	}
	return Direction{
		Index:  index,
		Omega:  [3]float64{x, y, z},
		Weight: w,
		SignX:  sign(x),
		SignY:  sign(y),
		SignZ:  sign(z),
	}
}

// Quadrature is the consumed angular quadrature (spec §6).
type Quadrature struct {
	Directions []Direction
}

// Count returns the number of directions.
func (q *Quadrature) Count() int { return len(q.Directions) }

// Slab1D returns the 2-direction quadrature used by scenario S1: μ=+1 and
// μ=-1 along x, each with weight 1 (a 1-D slab has no angular integral
// beyond the two streaming directions in the test's reduced setting).
func Slab1D() *Quadrature {
	return &Quadrature{Directions: []Direction{
		newDirection(0, 1, 0, 0, 1),
		newDirection(1, -1, 0, 0, 1),
	}}
}

// S2 returns the level-symmetric S2 quadrature (one direction per octant,
// 8 directions total, equal weights summing to 4π), used by scenario S3.
func S2() *Quadrature {
	a := 1.0 / math.Sqrt(3)
	w := 4 * math.Pi / 8
	dirs := make([]Direction, 0, 8)
	idx := 0
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			for _, sz := range []float64{1, -1} {
				dirs = append(dirs, newDirection(idx, sx*a, sy*a, sz*a, w))
				idx++
			}
		}
	}
	return &Quadrature{Directions: dirs}
}

// S4 returns the level-symmetric S4 quadrature (3 directions per octant, 24
// directions total), used by scenario S2. Direction cosines are the
// standard S4 level-symmetric set.
func S4() *Quadrature {
	const (
		a = 0.2958759
		b = 0.9082483
	)
	// the three direction-cosine triples of one octant, each a permutation
	// of {a,a,b} (level-symmetric quadratures keep |Ω| components
	// permutation-symmetric within an octant).
	triples := [][3]float64{
		{a, a, b},
		{a, b, a},
		{b, a, a},
	}
	w := 4 * math.Pi / 24
	dirs := make([]Direction, 0, 24)
	idx := 0
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			for _, sz := range []float64{1, -1} {
				for _, t := range triples {
					dirs = append(dirs, newDirection(idx, sx*t[0], sy*t[1], sz*t[2], w))
					idx++
				}
			}
		}
	}
	return &Quadrature{Directions: dirs}
}
