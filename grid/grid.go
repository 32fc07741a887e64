// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package grid defines the immutable per-process mesh view (spec §3 Data
// Model, §6 "GridView") consumed by the orientation oracle, the SPDS
// builder and the FLUDS template. Mesh generation and partitioning are
// out of scope (spec §1 Non-goals); grid only describes the shape a
// partitioned mesh view must already have.
package grid

import "github.com/cpmech/gosl/chk"

// CellKind classifies a cell's geometric type (spec §3 "Cell").
type CellKind int

const (
	Slab CellKind = iota
	Polygon
	Polyhedron
)

// Node is a mesh vertex position, shared by every cell/face that references it.
type Node struct {
	X [3]float64 // coordinates (2-D meshes leave X[2] == 0)
}

// Face is an ordered list of node indices with an outward unit normal and a
// neighbor reference (spec §3 "Face").
type Face struct {
	Nodes       []int      // indices into the owning Cell's node list, in face-local order
	GlobalNodes []int64    // global node ids, same order as Nodes, for cross-rank matching (§4.D)
	Normal      [3]float64 // outward unit normal
	NeighborID  int64      // neighbor cell's GlobalID if HasNeighbor; else a boundary id
	HasNeighbor bool       // false => NeighborID is a boundary id, not a cell id
}

// Cell is a mesh cell local to this process (spec §3 "Cell").
type Cell struct {
	LocalID    int      // dense id on this process, 0-based
	GlobalID   int64    // globally unique id, stable across ranks
	Kind       CellKind // slab / polygon / polyhedron
	MaterialID int      // material/cross-section id
	Nodes      []Node   // cell-local node coordinates, indexed by Face.Nodes
	Faces      []Face   // ordered faces
	Diameter   float64  // cell diameter, used to scale the FLUDS matching tolerance (§4.D)
}

// GhostCell is a read-only copy of a neighbor cell owned by another rank,
// carried only for geometry (orientation classification); its flux data
// arrives over FLUDS transfer buffers, not through this struct.
type GhostCell struct {
	Cell
	OwnerRank int
}

// GridView is the immutable per-process view of local + ghost cells and
// faces (spec §6 upstream interface). It is read-only after construction
// (spec §5 "Shared resources").
type GridView struct {
	LocalCells []*Cell
	ghosts     map[int64]*GhostCell
	id2local   map[int64]int // GlobalID -> index into LocalCells
}

// NewGridView validates and wraps a set of local cells and ghost cells into
// a GridView. It enforces the part of spec §9's open question we DO decide:
// no two faces of the same cell may reference the same neighbor id (that
// configuration's associated_face tie-break is undocumented upstream and we
// refuse to guess it), returning a BadGeometry-flavored panic instead.
func NewGridView(local []*Cell, ghosts []*GhostCell) *GridView {
	gv := &GridView{
		LocalCells: local,
		ghosts:     make(map[int64]*GhostCell, len(ghosts)),
		id2local:   make(map[int64]int, len(local)),
	}
	for _, g := range ghosts {
		gv.ghosts[g.GlobalID] = g
	}
	for i, c := range local {
		gv.id2local[c.GlobalID] = i
		seen := make(map[int64]bool, len(c.Faces))
		for _, f := range c.Faces {
			if !f.HasNeighbor {
				continue
			}
			if seen[f.NeighborID] {
				chk.Panic("grid: cell %d has two faces sharing neighbor %d; associated_face tie-break is undocumented and unimplemented by design", c.GlobalID, f.NeighborID)
			}
			seen[f.NeighborID] = true
		}
	}
	return gv
}

// GhostCell returns the ghost copy of a neighbor cell owned by another rank,
// or nil if globalID is not a ghost of this process.
func (gv *GridView) GhostCell(globalID int64) *GhostCell {
	return gv.ghosts[globalID]
}

// GhostGlobalIDs returns the global ids of every ghost cell known to this view.
func (gv *GridView) GhostGlobalIDs() []int64 {
	ids := make([]int64, 0, len(gv.ghosts))
	for id := range gv.ghosts {
		ids = append(ids, id)
	}
	return ids
}

// LocalIndex returns the LocalCells index of globalID and whether it was found.
func (gv *GridView) LocalIndex(globalID int64) (int, bool) {
	i, ok := gv.id2local[globalID]
	return i, ok
}

// IsLocal reports whether globalID names a cell on this process.
func (gv *GridView) IsLocal(globalID int64) bool {
	_, ok := gv.id2local[globalID]
	return ok
}
