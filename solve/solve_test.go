// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solve

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/chunk"
	"github.com/cpmech/gofem-sweep/config"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/quad"
)

// slabMapping is the same trivial 1-D, 2-node-per-cell mapping used by the
// chunk package's own tests: face 0 (left) -> cell-node 0, face 1 (right)
// -> cell-node 1, diagonal system whose solution is upwind+source.
type slabMapping struct{}

func (slabMapping) FaceNodeMapping(f int) []int {
	if f == 0 {
		return []int{0}
	}
	return []int{1}
}
func (slabMapping) NumNodes() int           { return 2 }
func (slabMapping) FaceNodeCount(f int) int { return 1 }

func (slabMapping) Assemble(cell *grid.Cell, dir quad.Direction, group int, incoming map[int][]float64, sigmaT, source float64) ([][]float64, []float64) {
	upwind := 0.0
	for _, v := range incoming {
		if len(v) > 0 {
			upwind = v[0]
		}
	}
	return [][]float64{{1, 0}, {0, 1}}, []float64{upwind + source, upwind + source}
}

func slabChainCell(i, n int) *grid.Cell {
	c := &grid.Cell{
		LocalID: i, GlobalID: int64(i), Kind: grid.Slab,
		Nodes: []grid.Node{
			{X: [3]float64{float64(i), 0, 0}},
			{X: [3]float64{float64(i + 1), 0, 0}},
		},
		Diameter: 1,
	}
	left := grid.Face{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}}
	if i == 0 {
		left.NeighborID = -1
	} else {
		left.HasNeighbor, left.NeighborID = true, int64(i-1)
	}
	right := grid.Face{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}}
	if i == n-1 {
		right.NeighborID = -2
	} else {
		right.HasNeighbor, right.NeighborID = true, int64(i+1)
	}
	c.Faces = []grid.Face{left, right}
	return c
}

func slabChainGrid(n int) *grid.GridView {
	cells := make([]*grid.Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = slabChainCell(i, n)
	}
	return grid.NewGridView(cells, nil)
}

// Test_solve_two_cell_slab_converges drives a 2-cell, 2-direction (mu=+1 and
// mu=-1) slab to convergence and checks both sweep directions deposited the
// expected upwind+source chain into the flux accessor.
func Test_solve_two_cell_slab_converges(tst *testing.T) {
	chk.PrintTitle("solve_two_cell_slab_converges")

	gv := slabChainGrid(2)
	q := quad.Slab1D()
	reg := boundary.NewRegistry(map[int]boundary.Kind{
		-1: boundary.Vacuum,
		-2: boundary.Vacuum,
	})
	cfg := &config.SweepConfig{
		AllowCycles: false,
		Groupsets:   []config.GroupsetData{{Name: "g0", NumGroups: 1, Tolerance: 1e-10, MaxOuterIts: 5}},
	}
	sigmaT := func(*grid.Cell, int) float64 { return 1 }
	source := func(*grid.Cell, int) fun.Func { return chunk.ConstSource(2) }

	solver := NewSolver(gv, q, slabMapping{}, reg, cfg, nil, sigmaT, source)
	stats, flux := solver.Run()

	if stats.OuterIterations < 1 {
		tst.Fatalf("expected at least one outer iteration, got %d", stats.OuterIterations)
	}
	if stats.MaxDelta > 1e-9 {
		tst.Fatalf("expected convergence, got max delta %v", stats.MaxDelta)
	}

	// direction 0 (mu=+1): cell0 sees no incoming -> 0+2=2 both nodes;
	// cell1 sees cell0's outgoing=2 -> 2+2=4 both nodes.
	chk.Scalar(tst, "dir+1 cell1 node0", 1e-12, flux.Get(1, 0, 0, 0), 4)
	chk.Scalar(tst, "dir+1 cell1 node1", 1e-12, flux.Get(1, 1, 0, 0), 4)

	// direction 1 (mu=-1): cell1 sees no incoming -> 0+2=2; cell0 sees
	// cell1's outgoing=2 -> 2+2=4.
	chk.Scalar(tst, "dir-1 cell0 node0", 1e-12, flux.Get(0, 0, 1, 0), 4)
	chk.Scalar(tst, "dir-1 cell0 node1", 1e-12, flux.Get(0, 1, 1, 0), 4)
}
