// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/chunk"
	"github.com/cpmech/gofem-sweep/config"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/quad"
)

// scenario bundles a built-in problem's geometry, quadrature, cell mapping,
// boundary registry and material data so main can hand the whole thing to
// solve.NewSolver without the sweep core itself ever reading a mesh file
// (mesh generation/partitioning is out of scope for this core).
type scenario struct {
	defaultConfig func() *config.SweepConfig
	build         func() (*grid.GridView, *quad.Quadrature, sweepMapping, *boundary.Registry, func(*grid.Cell, int) float64, func(*grid.Cell, int) fun.Func)
}

var scenarios = map[string]scenario{
	"slab1d": {
		defaultConfig: slab1DConfig,
		build:         buildSlab1D,
	},
}

// sweepMapping is the chunk.CellMapping contract, named locally so this
// package doesn't need to import chunk just to spell the interface.
type sweepMapping interface {
	FaceNodeMapping(f int) []int
	NumNodes() int
	FaceNodeCount(f int) int
	Assemble(cell *grid.Cell, dir quad.Direction, group int, incoming map[int][]float64, sigmaT, source float64) ([][]float64, []float64)
}

// slabCellMapping is the 1-D, 2-node-per-cell mapping used by every
// analytical slab scenario (spec §8 S1): face 0 (left) maps to cell-node 0,
// face 1 (right) maps to cell-node 1, and Assemble reproduces the classic
// 1-D discrete-ordinates streaming-plus-removal balance
// (μ + Σt·L)·ψ = μ·ψ_upwind + S·L, collapsed here to the trivial
// per-cell diagonal form since the mapping owns no mesh-wide assembly.
type slabCellMapping struct {
	cellLength float64
}

func (m slabCellMapping) FaceNodeMapping(f int) []int {
	if f == 0 {
		return []int{0}
	}
	return []int{1}
}
func (m slabCellMapping) NumNodes() int           { return 2 }
func (m slabCellMapping) FaceNodeCount(f int) int { return 1 }

func (m slabCellMapping) Assemble(cell *grid.Cell, dir quad.Direction, group int, incoming map[int][]float64, sigmaT, source float64) ([][]float64, []float64) {
	upwind := 0.0
	for _, v := range incoming {
		if len(v) > 0 {
			upwind = v[0]
		}
	}
	mu := dir.Omega[0]
	if mu < 0 {
		mu = -mu
	}
	l := m.cellLength
	if l <= 0 {
		l = 1
	}
	rhs := mu*upwind + source*l
	a := mu + sigmaT*l
	return [][]float64{{a, 0}, {0, a}}, []float64{rhs, rhs}
}

func slab1DConfig() *config.SweepConfig {
	return &config.SweepConfig{
		AllowCycles: false,
		Scheduling:  config.DOG,
		AngleAggr:   config.Single,
		Groupsets: []config.GroupsetData{
			{Name: "default", NumGroups: 1, Tolerance: 1e-10, MaxOuterIts: 50},
		},
	}
}

// buildSlab1D builds a 10-cell slab of unit-length cells (x from 0 to 10)
// with vacuum boundaries on
// both ends, sigma_t=1 and a unit source everywhere (spec §8 S1).
func buildSlab1D() (*grid.GridView, *quad.Quadrature, sweepMapping, *boundary.Registry, func(*grid.Cell, int) float64, func(*grid.Cell, int) fun.Func) {
	const n = 10
	cells := make([]*grid.Cell, n)
	for i := 0; i < n; i++ {
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
		cells[i] = c
	}
	gv := grid.NewGridView(cells, nil)

	q := quad.Slab1D()
	reg := boundary.NewRegistry(map[int]boundary.Kind{
		-1: boundary.Vacuum,
		-2: boundary.Vacuum,
	})
	mapping := slabCellMapping{cellLength: 1}
	sigmaT := func(*grid.Cell, int) float64 { return 1 }
	source := func(*grid.Cell, int) fun.Func { return chunk.ConstSource(1) }
	return gv, q, mapping, reg, sigmaT, source
}
