// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build ignore

// This file drives a real 2-rank run end to end (run via
// `mpirun -np 2 go run t_distributed_main.go scenarios.go`), the only
// way to exercise mpiw.Comm.Distributed()==true, spds.SPDS.Level and
// fluds.BuildTemplate's NonLocal/Prelocal paths against a genuine
// ghost-cell-partitioned mesh instead of the single-rank loopback every
// go test run is restricted to. Modeled on fem's t_spo751_main.go: a bare
// testing.T, no go test harness, rank-0-only reporting, mpi.Stop on exit.
package main

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/chunk"
	"github.com/cpmech/gofem-sweep/config"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/mpiw"
	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/solve"
)

// twoRankSlabCell builds this rank's one local cell of a 2-cell slab split
// one-cell-per-rank, plus the one ghost cell it borders, owned by the other
// rank.
func twoRankSlabCell(rank int) (*grid.Cell, *grid.GhostCell) {
	c := &grid.Cell{
		LocalID: 0, GlobalID: int64(rank), Kind: grid.Slab,
		Nodes: []grid.Node{
			{X: [3]float64{float64(rank), 0, 0}},
			{X: [3]float64{float64(rank + 1), 0, 0}},
		},
		Diameter: 1,
	}
	left := grid.Face{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}}
	right := grid.Face{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}}
	var ghost *grid.GhostCell
	if rank == 0 {
		left.NeighborID = -1 // vacuum
		right.HasNeighbor, right.NeighborID = true, 1
		ghost = &grid.GhostCell{
			Cell:      grid.Cell{GlobalID: 1, Kind: grid.Slab, Diameter: 1},
			OwnerRank: 1,
		}
	} else {
		left.HasNeighbor, left.NeighborID = true, 0
		right.NeighborID = -2 // vacuum
		ghost = &grid.GhostCell{
			Cell:      grid.Cell{GlobalID: 0, Kind: grid.Slab, Diameter: 1},
			OwnerRank: 0,
		}
	}
	c.Faces = []grid.Face{left, right}
	return c, ghost
}

func main() {
	var tst testing.T
	defer func() {
		if mpi.Rank() == 0 {
			if err := recover(); err != nil {
				io.PfRed("ERROR: %v\n", err)
			}
			if tst.Failed() {
				io.PfRed("test failed\n")
			}
		}
		mpiw.Stop()
	}()
	comm := mpiw.Init(true)
	if comm.Size() != 2 {
		chk.Panic("t_distributed_main: must be run with exactly 2 ranks, got %d", comm.Size())
	}
	if !comm.Distributed() {
		tst.Fatal("expected a 2-rank run to report Distributed()==true")
		return
	}

	cell, ghost := twoRankSlabCell(comm.Rank())
	gv := grid.NewGridView([]*grid.Cell{cell}, []*grid.GhostCell{ghost})

	q := quad.Slab1D()
	reg := boundary.NewRegistry(map[int]boundary.Kind{
		-1: boundary.Vacuum,
		-2: boundary.Vacuum,
	})
	cfg := &config.SweepConfig{
		AllowCycles: false,
		Scheduling:  config.DOG,
		AngleAggr:   config.Single,
		Groupsets:   []config.GroupsetData{{Name: "g0", NumGroups: 1, Tolerance: 1e-10, MaxOuterIts: 10}},
	}
	mapping := slabCellMapping{cellLength: 1}
	sigmaT := func(*grid.Cell, int) float64 { return 1 }
	source := func(*grid.Cell, int) fun.Func { return chunk.ConstSource(2) }

	solver := solve.NewSolver(gv, q, mapping, reg, cfg, comm, sigmaT, source)
	stats, flux := solver.Run()

	if stats.MaxDelta > 1e-9 {
		tst.Errorf("expected convergence across ranks, got max delta %v", stats.MaxDelta)
	}

	// the cell that receives its upwind flux from the other rank (rank1 for
	// mu=+1, rank0 for mu=-1) must see 1.5 at both nodes once the cross-rank
	// transfer has actually happened over FLUDS/mpiw.
	want := 1.5
	if comm.Rank() == 1 {
		got := flux.Get(0, 0, 0, 0)
		if math.Abs(got-want) > 1e-9 {
			tst.Errorf("rank1 dir+1 node0: got %v, want %v", got, want)
		}
	} else {
		got := flux.Get(0, 0, 1, 0)
		if math.Abs(got-want) > 1e-9 {
			tst.Errorf("rank0 dir-1 node0: got %v, want %v", got, want)
		}
	}

	comm.Barrier()
	if comm.Rank() == 0 {
		io.Pf("t_distributed_main: 2-rank distributed sweep OK\n")
	}
}
