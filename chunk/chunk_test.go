// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chunk

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/fluds"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/orient"
	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/spds"
)

// slabMapping is a trivial 1-D, 2-node-per-cell mapping: face 0 (left) maps
// to cell-node 0, face 1 (right) maps to cell-node 1; both faces carry a
// single node.
type slabMapping struct {
	sigmaT float64
	source float64
}

func (m *slabMapping) FaceNodeMapping(f int) []int {
	if f == 0 {
		return []int{0}
	}
	return []int{1}
}
func (m *slabMapping) NumNodes() int          { return 2 }
func (m *slabMapping) FaceNodeCount(f int) int { return 1 }

// Assemble builds a trivial diagonal system whose solution reproduces the
// upwind value plus a source term, enough to exercise the dense solve path
// without modeling real finite-element matrices.
func (m *slabMapping) Assemble(cell *grid.Cell, dir quad.Direction, group int, incoming map[int][]float64, sigmaT, source float64) ([][]float64, []float64) {
	upwind := 0.0
	if v, ok := incoming[0]; ok && len(v) > 0 {
		upwind = v[0]
	}
	A := [][]float64{{1, 0}, {0, 1}}
	b := []float64{upwind + source, upwind + source}
	return A, b
}

func chainCell(i, n int) *grid.Cell {
	c := &grid.Cell{
		LocalID:  i,
		GlobalID: int64(i),
		Kind:     grid.Slab,
		Nodes: []grid.Node{
			{X: [3]float64{float64(i), 0, 0}},
			{X: [3]float64{float64(i + 1), 0, 0}},
		},
		Diameter: 1,
	}
	left := grid.Face{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}}
	if i == 0 {
		left.HasNeighbor = false
		left.NeighborID = -1 // boundary id, resolved via BoundaryFaces
	} else {
		left.HasNeighbor = true
		left.NeighborID = int64(i - 1)
	}
	right := grid.Face{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}}
	if i == n-1 {
		right.HasNeighbor = false
		right.NeighborID = -2
	} else {
		right.HasNeighbor = true
		right.NeighborID = int64(i + 1)
	}
	c.Faces = []grid.Face{left, right}
	return c
}

func chainGrid(n int) *grid.GridView {
	cells := make([]*grid.Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = chainCell(i, n)
	}
	return grid.NewGridView(cells, nil)
}

func Test_chunk_run_vacuum_source(tst *testing.T) {
	chk.PrintTitle("chunk_run_vacuum_source")
	gv := chainGrid(2)
	dir := quad.Slab1D().Directions[0] // mu=+1
	s, err := spds.Build(gv, dir, spds.Options{AllowCycles: false})
	if err != nil {
		tst.Fatalf("unexpected spds error: %v", err)
	}
	t := fluds.BuildTemplate(gv, s, nil)
	fl := fluds.NewInstance(t, 1, 1)

	mapping := &slabMapping{}
	k := NewKernel(mapping)

	bndFaces := map[int]boundary.Face{
		-1: boundary.VacuumFace{},
		-2: boundary.VacuumFace{},
	}

	// sweep cell 0 then cell 1, following spls order.
	for _, gid := range s.SPLS {
		ci, _ := gv.LocalIndex(gid)
		cell := gv.LocalCells[ci]
		Run(k, RunInput{
			Template: t, Instance: fl, Cell: cell, LocalID: ci,
			Orientations: s.CellFaceOrientations[ci], Direction: dir,
			AngleIdx: 0, Group: 0, SigmaT: 1, Source: ConstSource(2),
			BoundaryFaces: bndFaces,
		})
	}

	// cell 0: no incoming (vacuum) -> outgoing = 0+2 = 2.
	// cell 1: incoming = cell0's outgoing = 2 -> outgoing = 2+2 = 4.
	off := fl.Offset(0, 0, 0)
	chk.Scalar(tst, "local flux at cell0->cell1 face", 1e-12, fl.Local[off], 2)
}
