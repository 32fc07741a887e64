// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solve

import "github.com/cpmech/gosl/chk"

// FluxAccessor is the AngularFluxAccessor downstream interface (spec §6):
// a read-only view of ψ indexed by (cell_local_id, node, angle, group),
// populated by a chunk.PhasePostCell hook during each outer iteration's
// sweep.
type FluxAccessor struct {
	nCells, nNodes, nAngles, nGroups int
	data                             []float64
}

// NewFluxAccessor allocates storage for nCells cells, each with up to
// nNodes nodes, across nAngles angles and nGroups groups.
func NewFluxAccessor(nCells, nNodes, nAngles, nGroups int) *FluxAccessor {
	return &FluxAccessor{
		nCells: nCells, nNodes: nNodes, nAngles: nAngles, nGroups: nGroups,
		data: make([]float64, nCells*nNodes*nAngles*nGroups),
	}
}

func (a *FluxAccessor) idx(cell, node, angle, group int) int {
	if cell < 0 || cell >= a.nCells || node < 0 || node >= a.nNodes {
		chk.Panic("solve: flux accessor index out of range: cell=%d node=%d", cell, node)
	}
	return ((cell*a.nNodes+node)*a.nAngles+angle)*a.nGroups + group
}

// Set stores ψ(cell, node, angle, group); called from the sweep's
// post-cell hook right after the chunk's dense solve.
func (a *FluxAccessor) Set(cell, node, angle, group int, psi float64) {
	a.data[a.idx(cell, node, angle, group)] = psi
}

// Get returns ψ(cell, node, angle, group).
func (a *FluxAccessor) Get(cell, node, angle, group int) float64 {
	return a.data[a.idx(cell, node, angle, group)]
}

// MaxDelta returns the largest absolute difference between a and prev,
// the Δψ convergence measure the outer Richardson loop checks against its
// tolerance.
func (a *FluxAccessor) MaxDelta(prev *FluxAccessor) float64 {
	max := 0.0
	for i, v := range a.data {
		d := v - prev.data[i]
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// Clone returns a deep copy, used by the outer loop to snapshot ψ before
// the next sweep so MaxDelta has something to compare against.
func (a *FluxAccessor) Clone() *FluxAccessor {
	cp := &FluxAccessor{nCells: a.nCells, nNodes: a.nNodes, nAngles: a.nAngles, nGroups: a.nGroups}
	cp.data = make([]float64, len(a.data))
	copy(cp.data, a.data)
	return cp
}
