// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orient

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/quad"
)

func Test_orient_classify_basic(tst *testing.T) {
	chk.PrintTitle("orient_classify_basic")
	if Classify([3]float64{1, 0, 0}, [3]float64{1, 0, 0}) != Outgoing {
		tst.Fatal("expected outgoing")
	}
	if Classify([3]float64{1, 0, 0}, [3]float64{-1, 0, 0}) != Incoming {
		tst.Fatal("expected incoming")
	}
	if Classify([3]float64{1, 0, 0}, [3]float64{0, 1, 0}) != Parallel {
		tst.Fatal("expected parallel")
	}
}

// unitCube builds a single axis-aligned unit-cube cell with six outward-
// normal faces, enough to exercise GaussCheck's divergence identity.
func unitCube() *grid.Cell {
	c := &grid.Cell{
		LocalID: 0, GlobalID: 0, Kind: grid.Polyhedron,
		Nodes: []grid.Node{
			{X: [3]float64{0, 0, 0}}, {X: [3]float64{1, 0, 0}},
			{X: [3]float64{1, 1, 0}}, {X: [3]float64{0, 1, 0}},
			{X: [3]float64{0, 0, 1}}, {X: [3]float64{1, 0, 1}},
			{X: [3]float64{1, 1, 1}}, {X: [3]float64{0, 1, 1}},
		},
		Diameter: 1.7320508075688772,
	}
	c.Faces = []grid.Face{
		{Nodes: []int{0, 3, 2, 1}, Normal: [3]float64{0, 0, -1}}, // bottom
		{Nodes: []int{4, 5, 6, 7}, Normal: [3]float64{0, 0, 1}},  // top
		{Nodes: []int{0, 1, 5, 4}, Normal: [3]float64{0, -1, 0}}, // front
		{Nodes: []int{3, 7, 6, 2}, Normal: [3]float64{0, 1, 0}},  // back
		{Nodes: []int{0, 4, 7, 3}, Normal: [3]float64{-1, 0, 0}}, // left
		{Nodes: []int{1, 2, 6, 5}, Normal: [3]float64{1, 0, 0}},  // right
	}
	return c
}

func Test_orient_gauss_check_cube(tst *testing.T) {
	chk.PrintTitle("orient_gauss_check_cube")
	cell := unitCube()
	for _, dir := range quad.S2().Directions {
		if !GaussCheck(cell, dir.Omega, 1e-9) {
			tst.Fatalf("Gauss check failed for direction %v", dir.Omega)
		}
	}
}

// Test_orient_parallel_tiebreak_symmetric checks that two cells sharing a
// face agree on which one is treated as outgoing when Omega is exactly
// parallel to the shared face (spec §4.C step 1 tie-break).
func Test_orient_parallel_tiebreak_symmetric(tst *testing.T) {
	chk.PrintTitle("orient_parallel_tiebreak_symmetric")
	left := &grid.Cell{
		LocalID: 0, GlobalID: 0,
		Nodes: []grid.Node{{X: [3]float64{0, 0, 0}}, {X: [3]float64{1, 0, 0}}},
		Faces: []grid.Face{
			{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}},
			{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}, HasNeighbor: true, NeighborID: 1},
		},
		Diameter: 1,
	}
	right := &grid.Cell{
		LocalID: 1, GlobalID: 1,
		Nodes: []grid.Node{{X: [3]float64{1, 0, 0}}, {X: [3]float64{2, 0, 0}}},
		Faces: []grid.Face{
			{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}, HasNeighbor: true, NeighborID: 0},
			{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}},
		},
		Diameter: 1,
	}
	gv := grid.NewGridView([]*grid.Cell{left, right}, nil)

	dir := quad.Direction{Omega: [3]float64{0, 1, 0}} // perpendicular to both faces' normals (mu = 0)
	out := CellFaceOrientations(gv, dir)

	leftSide := out[0][1]  // left cell's shared face
	rightSide := out[1][0] // right cell's shared face
	if leftSide == rightSide {
		tst.Fatalf("expected opposite classifications across the shared face, got %v on both sides", leftSide)
	}
}
