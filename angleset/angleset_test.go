// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package angleset

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/fluds"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/spds"
)

func chainCell(i, n int) *grid.Cell {
	c := &grid.Cell{LocalID: i, GlobalID: int64(i), Kind: grid.Slab,
		Nodes: []grid.Node{{X: [3]float64{float64(i), 0, 0}}, {X: [3]float64{float64(i + 1), 0, 0}}},
		Diameter: 1,
	}
	left := grid.Face{Nodes: []int{0}, Normal: [3]float64{-1, 0, 0}}
	if i == 0 {
		left.HasNeighbor = false
		left.NeighborID = -1
	} else {
		left.HasNeighbor, left.NeighborID = true, int64(i-1)
	}
	right := grid.Face{Nodes: []int{1}, Normal: [3]float64{1, 0, 0}}
	if i == n-1 {
		right.HasNeighbor = false
		right.NeighborID = -2
	} else {
		right.HasNeighbor, right.NeighborID = true, int64(i+1)
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

func Test_angleset_full_cycle_single_rank(tst *testing.T) {
	chk.PrintTitle("angleset_full_cycle_single_rank")
	gv := chainGrid(3)
	dir := quad.Slab1D().Directions[0]
	s, err := spds.Build(gv, dir, spds.Options{AllowCycles: false})
	if err != nil {
		tst.Fatalf("unexpected spds error: %v", err)
	}
	t := fluds.BuildTemplate(gv, s, nil)
	in := fluds.NewInstance(t, 1, 1)

	executed := 0
	as := New(0, []quad.Direction{dir}, s, t, in, nil, func(d quad.Direction) error {
		executed++
		return nil
	})

	if st := as.Advance(NoExecIfReady); st != Receiving {
		tst.Fatalf("expected RECEIVING, got %s", st)
	}
	if st := as.Advance(NoExecIfReady); st != ReadyToExecute {
		tst.Fatalf("expected READY_TO_EXECUTE (no distributed recvs to wait on), got %s", st)
	}
	if st := as.Advance(NoExecIfReady); st != ReadyToExecute {
		tst.Fatalf("NO_EXEC_IF_READY must not execute, got %s", st)
	}
	if executed != 0 {
		tst.Fatalf("expected 0 executions before EXECUTE permission, got %d", executed)
	}
	if st := as.Advance(Execute); st != Executed {
		tst.Fatalf("expected EXECUTED, got %s", st)
	}
	if executed != 1 {
		tst.Fatalf("expected 1 execution, got %d", executed)
	}
	if st := as.Advance(Execute); st != MessagesSent {
		tst.Fatalf("expected MESSAGES_SENT, got %s", st)
	}
	if st := as.Advance(Execute); st != Finished {
		tst.Fatalf("expected FINISHED, got %s", st)
	}

	as.Reset()
	if as.State() != NotFinished {
		tst.Fatalf("expected NOT_FINISHED after reset, got %s", as.State())
	}
}

func Test_angleset_cancel_resets(tst *testing.T) {
	chk.PrintTitle("angleset_cancel_resets")
	gv := chainGrid(2)
	dir := quad.Slab1D().Directions[0]
	s, err := spds.Build(gv, dir, spds.Options{AllowCycles: false})
	if err != nil {
		tst.Fatalf("unexpected spds error: %v", err)
	}
	t := fluds.BuildTemplate(gv, s, nil)
	in := fluds.NewInstance(t, 1, 1)
	as := New(0, []quad.Direction{dir}, s, t, in, nil, func(d quad.Direction) error { return nil })
	as.Advance(NoExecIfReady) // -> RECEIVING
	as.Cancel()
	if as.State() != NotFinished {
		tst.Fatalf("expected NOT_FINISHED after cancel, got %s", as.State())
	}
}
