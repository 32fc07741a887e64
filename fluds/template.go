// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fluds implements the Flux Data Structure (spec §4.D/E): the
// group/angle-independent upstream-flux index mapping built once per SPDS
// (Template), and the group/angle-scaled storage built from a template for
// one angle-set (Instance).
package fluds

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"

	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/orient"
	"github.com/cpmech/gofem-sweep/spds"
)

// FaceNodeRef addresses one upstream face-node slot: the local id of the
// cell that wrote it, the face index within that cell, and the node index
// within that face (spec §4.D "upstream cell's outgoing face slot and node").
type FaceNodeRef struct {
	CellLocalID int
	Face        int
	Node        int
}

// LocalIncoming maps a local cell's incoming face-node to the upstream
// writer (spec §4.D "for each local cell and each incoming face, a list of
// face-node index triples").
type LocalIncoming struct {
	CellLocalID int
	Face        int
	Node        int
	Upstream    FaceNodeRef
}

// NonLocalSlot is a monotonically assigned slot for an outbound non-local
// face (spec §4.D "slot index in the send buffer").
type NonLocalSlot struct {
	CellLocalID int
	Face        int
	DestRank    int
	SlotBase    int // first of FaceNodeCount contiguous slots for this face
}

// PrelocalSlot is the symmetric receive-side slot, built from the
// receiver's perspective using the same deterministic global ordering.
type PrelocalSlot struct {
	SrcRank    int
	NeighborID int64 // global id of the upstream (non-local) cell
	SlotBase   int

	CellLocalID int // local cell consuming this slot
	Face        int // that cell's incoming face
}

// Template is the per-SPDS, group/angle-independent index mapping
// (spec §4.D). It is built once per direction (or direction-class) and
// reused by every Instance scaled from it.
type Template struct {
	SPDS *spds.SPDS

	Local []LocalIncoming

	NonLocal  []NonLocalSlot  // outbound non-local faces, this rank's sends
	Prelocal  []PrelocalSlot  // inbound non-local faces, this rank's receives
	SlotCount int             // total non-local send slots (sum of face_nodes per NonLocal entry)
	PreCount  int

	DelayedLocal []LocalIncoming // incoming faces fed by a delayed edge
}

// NodeMatchTol is τ, the tolerance (relative to a cell's diameter) used to
// match face-node coordinates across a shared face (spec §4.D). Spec fixes
// this at 1e-12 of cell diameter.
const NodeMatchTol = 1e-12

// BuildTemplate walks spls in order and builds the Template for s (spec
// §4.D). ownerRank maps a non-local neighbor's global id to its owning
// rank; when it is nil, faces whose neighbor is not local get no
// NonLocal/Prelocal slot.
func BuildTemplate(gv *grid.GridView, s *spds.SPDS, ownerRank func(int64) int) *Template {
	t := &Template{SPDS: s}

	idx := make(map[int64]int, len(gv.LocalCells))
	for i, c := range gv.LocalCells {
		idx[c.GlobalID] = i
	}

	slot := 0
	preSlot := 0
	nonLocalByRank := map[int][]NonLocalSlot{}
	prelocalByRank := map[int][]PrelocalSlot{}

	for _, gid := range s.SPLS {
		ci := idx[gid]
		cell := gv.LocalCells[ci]
		for fi := range cell.Faces {
			f := &cell.Faces[fi]
			if !f.HasNeighbor {
				continue
			}
			o := s.CellFaceOrientations[ci][fi]
			switch o {
			case orient.Incoming:
				delayed := isDelayedEdge(s, f.NeighborID, cell.GlobalID)
				if gv.IsLocal(f.NeighborID) {
					nbIdx := idx[f.NeighborID]
					nb := gv.LocalCells[nbIdx]
					perm := matchFaceNodes(cell, f, nb)
					for node, up := range perm {
						li := LocalIncoming{CellLocalID: ci, Face: fi, Node: node, Upstream: up}
						if delayed {
							t.DelayedLocal = append(t.DelayedLocal, li)
						} else {
							t.Local = append(t.Local, li)
						}
					}
				} else if ownerRank != nil {
					src := ownerRank(f.NeighborID)
					base := preSlot
					preSlot += len(f.Nodes)
					prelocalByRank[src] = append(prelocalByRank[src], PrelocalSlot{
						SrcRank: src, NeighborID: f.NeighborID, SlotBase: base,
						CellLocalID: ci, Face: fi,
					})
				}
			case orient.Outgoing:
				if !gv.IsLocal(f.NeighborID) && ownerRank != nil {
					dst := ownerRank(f.NeighborID)
					base := slot
					slot += len(f.Nodes)
					nonLocalByRank[dst] = append(nonLocalByRank[dst], NonLocalSlot{
						CellLocalID: ci, Face: fi, DestRank: dst, SlotBase: base,
					})
				}
			}
		}
	}

	for rank := range nonLocalByRank {
		t.NonLocal = append(t.NonLocal, nonLocalByRank[rank]...)
	}
	for rank := range prelocalByRank {
		t.Prelocal = append(t.Prelocal, prelocalByRank[rank]...)
	}
	sort.Slice(t.NonLocal, func(i, j int) bool {
		if t.NonLocal[i].DestRank != t.NonLocal[j].DestRank {
			return t.NonLocal[i].DestRank < t.NonLocal[j].DestRank
		}
		return t.NonLocal[i].SlotBase < t.NonLocal[j].SlotBase
	})
	sort.Slice(t.Prelocal, func(i, j int) bool {
		if t.Prelocal[i].SrcRank != t.Prelocal[j].SrcRank {
			return t.Prelocal[i].SrcRank < t.Prelocal[j].SrcRank
		}
		return t.Prelocal[i].SlotBase < t.Prelocal[j].SlotBase
	})
	t.SlotCount = slot
	t.PreCount = preSlot
	return t
}

func isDelayedEdge(s *spds.SPDS, upstreamGlobalID, downstreamGlobalID int64) bool {
	return s.IsDelayedEdge(upstreamGlobalID, downstreamGlobalID)
}

// matchFaceNodes builds the node-to-node permutation between a cell's
// incoming face and its upstream neighbor's matching outgoing face, by
// matching vertices by position within NodeMatchTol of the cell's diameter
// (spec §4.D), using gm.Bins the way out/out.go bins mesh nodes/integration
// points for spatial queries.
func matchFaceNodes(cell *grid.Cell, face *grid.Face, upstream *grid.Cell) []FaceNodeRef {
	tol := NodeMatchTol * cell.Diameter
	if tol <= 0 {
		tol = NodeMatchTol
	}

	// find the upstream cell's face whose node set spatially coincides
	// with this face (the shared interface).
	var upFaceIdx = -1
	for ufi := range upstream.Faces {
		uf := &upstream.Faces[ufi]
		if len(uf.Nodes) != len(face.Nodes) {
			continue
		}
		if !uf.HasNeighbor || uf.NeighborID != cell.GlobalID {
			continue
		}
		upFaceIdx = ufi
		break
	}
	if upFaceIdx < 0 {
		chk.Panic("fluds: no matching upstream face found between cells %d and %d", cell.GlobalID, upstream.GlobalID)
	}
	uf := &upstream.Faces[upFaceIdx]

	lo, hi := bboxOf(upstream, uf)
	bins := gm.NewBins(lo[:], hi[:], []int{1, 1, 1})
	for k, un := range uf.Nodes {
		p := upstream.Nodes[un].X
		bins.Append(p[:], k)
	}

	perm := make([]FaceNodeRef, len(face.Nodes))
	for node, ni := range face.Nodes {
		p := cell.Nodes[ni].X
		id, sqDist := bins.FindClosest(p[:])
		if id < 0 || sqDist > tol*tol {
			chk.Panic("fluds: face node %d of cell %d has no upstream node within tolerance %g", node, cell.GlobalID, tol)
		}
		perm[node] = FaceNodeRef{CellLocalID: upstream.LocalID, Face: upFaceIdx, Node: id}
	}
	return perm
}

func bboxOf(cell *grid.Cell, f *grid.Face) (lo, hi [3]float64) {
	lo = [3]float64{1e300, 1e300, 1e300}
	hi = [3]float64{-1e300, -1e300, -1e300}
	for _, ni := range f.Nodes {
		p := cell.Nodes[ni].X
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	for k := 0; k < 3; k++ {
		if hi[k] <= lo[k] {
			hi[k] = lo[k] + 1
		}
	}
	return
}
