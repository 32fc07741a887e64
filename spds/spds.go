// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package spds builds the Sweep Plan Data Structure (spec §4.C): the
// per-direction local DAG, its deterministic cycle breaking, the local
// topological order (SPLS) and the cross-process leveling that gives each
// rank its depth-of-graph priority.
package spds

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/core"

	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/orient"
	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/xerr"
)

func vid(globalID int64) string { return strconv.FormatInt(globalID, 10) }

func unvid(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// edge is a directed dependency u->v between two local, global cell ids.
type edge struct{ u, v int64 }

func (e edge) less(o edge) bool {
	if e.u != o.u {
		return e.u < o.u
	}
	return e.v < o.v
}

// SPDS is the per-direction sweep plan (spec §3 "SPDS").
type SPDS struct {
	Direction quad.Direction

	LocalDAG *core.Graph // vertices keyed by strconv of global cell id

	SPLS []int64 // local cells in valid topological order (global ids)

	// GlobalSweepPlanes[level] lists the ranks ready at that level.
	GlobalSweepPlanes [][]int
	Depth             int // depth-of-graph for this rank

	LocationSuccessors   []int // ranks this process sends to
	LocationPredecessors []int // ranks this process receives from

	CellFaceOrientations [][]orient.Orientation // [local_id][face]

	DelayedEdges                map[edge]bool
	DelayedLocationPredecessors []int
}

// Options groups the inputs the builder needs beyond the grid and direction
// (spec §4.C "Input: Ω, grid view, allow_cycles flag").
type Options struct {
	AllowCycles bool
	// OwnerRank maps a ghost cell's global id to its owning rank. Required
	// whenever the GridView carries ghosts (multi-rank runs).
	OwnerRank func(globalID int64) int
}

// Build runs the rank-local part of the SPDS construction (spec §4.C steps
// 1-4: orientations, local DAG, cycle breaking, SPLS). The cross-process
// leveling (steps 5-6) is done separately by Level.
func Build(gv *grid.GridView, dir quad.Direction, opt Options) (*SPDS, error) {
	s := &SPDS{
		Direction:     dir,
		CellFaceOrientations: orient.CellFaceOrientations(gv, dir),
		DelayedEdges:  make(map[edge]bool),
	}

	// step 2: local DAG
	s.LocalDAG = core.NewGraph(core.WithDirected(true))
	for _, c := range gv.LocalCells {
		if err := s.LocalDAG.AddVertex(vid(c.GlobalID)); err != nil {
			return nil, xerr.New(xerr.BadGeometry, "spds: duplicate cell id %d: %v", c.GlobalID, err)
		}
	}
	predRanks := make(map[int]bool)
	succRanks := make(map[int]bool)
	for ci, c := range gv.LocalCells {
		for fi := range c.Faces {
			f := &c.Faces[fi]
			if !f.HasNeighbor {
				continue
			}
			o := s.CellFaceOrientations[ci][fi]
			switch o {
			case orient.Outgoing:
				if gv.IsLocal(f.NeighborID) {
					if _, err := s.LocalDAG.AddEdge(vid(c.GlobalID), vid(f.NeighborID), 1); err != nil {
						return nil, xerr.New(xerr.BadGeometry, "spds: cannot add edge %d->%d: %v", c.GlobalID, f.NeighborID, err)
					}
				} else if opt.OwnerRank != nil {
					succRanks[opt.OwnerRank(f.NeighborID)] = true
				}
			case orient.Incoming:
				if !gv.IsLocal(f.NeighborID) && opt.OwnerRank != nil {
					predRanks[opt.OwnerRank(f.NeighborID)] = true
				}
			}
		}
	}
	s.LocationSuccessors = sortedKeys(succRanks)
	s.LocationPredecessors = sortedKeys(predRanks)

	// step 3: cycle handling
	if err := s.breakCycles(opt.AllowCycles); err != nil {
		return nil, err
	}

	// step 4: topological order -> SPLS
	spls, err := s.topoSort()
	if err != nil {
		return nil, err
	}
	s.SPLS = spls

	return s, nil
}

// LocalInterRankEdges derives this rank's contribution to the rank-level
// dependency DAG from the per-direction LocationSuccessors/Predecessors
// already computed by Build: one (rank, successor) edge per rank this
// process sends to. Gathering every rank's LocalInterRankEdges (e.g. via
// mpiw.Comm.AllGatherEdges) yields the full edge set Level needs; every
// rank must gather the identical union for spec invariant (iv) to hold.
func (s *SPDS) LocalInterRankEdges(rank int) [][2]int {
	edges := make([][2]int, 0, len(s.LocationSuccessors))
	for _, succ := range s.LocationSuccessors {
		edges = append(edges, [2]int{rank, succ})
	}
	return edges
}

// Level runs the cross-process leveling step (spec §4.C steps 5-6) given
// the full, gathered inter-rank edge set. It must be called with the same
// edges on every rank. A single-rank run (nproc<=1) leaves GlobalSweepPlanes
// as a single plane containing rank 0 and Depth at 1.
func (s *SPDS) Level(edges [][2]int, rank, nproc int) {
	if nproc <= 0 {
		nproc = 1
	}
	levels := levelRanks(edges, nproc)
	s.GlobalSweepPlanes = levels
	s.Depth = depthOfGraph(levels, rank)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// breakCycles detects SCCs via Tarjan and, when allowCycles is true, marks a
// deterministic minimal feedback edge set per non-trivial SCC as delayed
// (spec §4.C step 3). When allowCycles is false, the presence of ANY
// non-trivial SCC is itself the failure (cycle-breaking is a permission the
// caller must grant, not a fallback).
func (s *SPDS) breakCycles(allowCycles bool) error {
	sccs := tarjanSCCs(s.LocalDAG)
	nontrivial := make([][]string, 0)
	for _, scc := range sccs {
		if len(scc) > 1 || selfLoop(s.LocalDAG, scc) {
			nontrivial = append(nontrivial, scc)
		}
	}
	if len(nontrivial) == 0 {
		return nil
	}
	if !allowCycles {
		return xerr.New(xerr.CycleWithoutPermission, "spds: %d cyclic strongly-connected component(s) found and allow_cycles=false", len(nontrivial))
	}
	for _, scc := range nontrivial {
		s.breakSCC(scc)
	}
	return nil
}

// selfLoop reports whether the single-vertex SCC scc is in fact a self-loop.
func selfLoop(g *core.Graph, scc []string) bool {
	if len(scc) != 1 {
		return false
	}
	v := scc[0]
	nbrs, _ := g.NeighborIDs(v)
	for _, n := range nbrs {
		if n == v {
			return true
		}
	}
	return false
}

// breakSCC computes the minimal feedback edge set for one non-trivial SCC,
// chosen deterministically by edge ordering on (u.global_id, v.global_id)
// (spec §4.C step 3 / invariant (iii)): repeatedly remove the
// lexicographically-smallest remaining intra-SCC edge until the induced
// subgraph is acyclic, recomputing SCCs after each removal. Because every
// rank sees the same edge set and the same ordering, every rank makes the
// same choice.
func (s *SPDS) breakSCC(members []string) {
	inSCC := make(map[string]bool, len(members))
	for _, m := range members {
		inSCC[m] = true
	}
	for {
		var candidates []edge
		for _, u := range members {
			if !inSCC[u] {
				continue
			}
			nbrs, _ := s.LocalDAG.NeighborIDs(u)
			for _, v := range nbrs {
				e := edge{unvid(u), unvid(v)}
				if inSCC[v] && !s.DelayedEdges[e] {
					candidates = append(candidates, e)
				}
			}
		}
		if len(candidates) == 0 {
			return
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].less(candidates[j]) })
		// remove the smallest edge from consideration (mark delayed); we
		// do not physically remove it from LocalDAG so FLUDS can still
		// recognize it as an inter-cell dependency, only route its data
		// through the delayed buffer instead of requiring SPLS ordering.
		victim := candidates[0]
		s.DelayedEdges[victim] = true
		// recompute: treat victim as absent by excluding it from the
		// induced subgraph used to find the next candidate set. Removed
		// edges are tracked in DelayedEdges (skipped when candidates are
		// rebuilt above) instead of a second graph; re-run Tarjan on the
		// residual subgraph and stop once it is acyclic.
		if s.sccAcyclicIgnoringDelayed(members) {
			return
		}
	}
}

// sccAcyclicIgnoringDelayed checks whether the induced subgraph on members,
// with DelayedEdges removed, is free of non-trivial SCCs.
func (s *SPDS) sccAcyclicIgnoringDelayed(members []string) bool {
	inSCC := make(map[string]bool, len(members))
	for _, m := range members {
		inSCC[m] = true
	}
	adj := make(map[string][]string, len(members))
	for _, u := range members {
		nbrs, _ := s.LocalDAG.NeighborIDs(u)
		for _, v := range nbrs {
			if !inSCC[v] {
				continue
			}
			if s.DelayedEdges[edge{unvid(u), unvid(v)}] {
				continue
			}
			adj[u] = append(adj[u], v)
		}
	}
	for _, scc := range tarjanSCCsOf(members, adj) {
		if len(scc) > 1 {
			return false
		}
		if len(scc) == 1 {
			for _, v := range adj[scc[0]] {
				if v == scc[0] {
					return false
				}
			}
		}
	}
	return true
}

// topoSort returns a topological order of LocalDAG's vertices, ignoring
// edges marked delayed, with ties broken by global cell id (spec §4.C
// step 4, invariant (i)).
func (s *SPDS) topoSort() ([]int64, error) {
	verts := s.LocalDAG.Vertices()
	indeg := make(map[string]int, len(verts))
	adj := make(map[string][]string, len(verts))
	for _, u := range verts {
		indeg[u] = 0
	}
	for _, u := range verts {
		nbrs, _ := s.LocalDAG.NeighborIDs(u)
		for _, v := range nbrs {
			if s.DelayedEdges[edge{unvid(u), unvid(v)}] {
				continue
			}
			adj[u] = append(adj[u], v)
			indeg[v]++
		}
	}
	ready := make([]string, 0)
	for _, u := range verts {
		if indeg[u] == 0 {
			ready = append(ready, u)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return unvid(ready[i]) < unvid(ready[j]) })

	order := make([]int64, 0, len(verts))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return unvid(ready[i]) < unvid(ready[j]) })
		u := ready[0]
		ready = ready[1:]
		order = append(order, unvid(u))
		for _, v := range adj[u] {
			indeg[v]--
			if indeg[v] == 0 {
				ready = append(ready, v)
			}
		}
	}
	if len(order) != len(verts) {
		return nil, xerr.New(xerr.BadGeometry, "spds: residual cycle survives delayed-edge marking (%d of %d cells ordered)", len(order), len(verts))
	}
	return order, nil
}

// levelRanks constructs the inter-process DAG from edges (src rank -> dst
// rank, meaning dst depends on src) and levels it by longest-path-from-
// source (spec §4.C step 5). Every rank with no incoming edge is level 0.
func levelRanks(edges [][2]int, nproc int) [][]int {
	indeg := make([]int, nproc)
	adj := make([][]int, nproc)
	for _, e := range edges {
		src, dst := e[0], e[1]
		if src < 0 || src >= nproc || dst < 0 || dst >= nproc || src == dst {
			continue
		}
		adj[src] = append(adj[src], dst)
		indeg[dst]++
	}
	level := make([]int, nproc)
	ready := make([]int, 0)
	for r := 0; r < nproc; r++ {
		if indeg[r] == 0 {
			ready = append(ready, r)
		}
	}
	processed := 0
	for len(ready) > 0 {
		sort.Ints(ready)
		r := ready[0]
		ready = ready[1:]
		processed++
		for _, d := range adj[r] {
			if level[d] < level[r]+1 {
				level[d] = level[r] + 1
			}
			indeg[d]--
			if indeg[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	maxLevel := 0
	for _, l := range level {
		if l > maxLevel {
			maxLevel = l
		}
	}
	planes := make([][]int, maxLevel+1)
	for r := 0; r < nproc; r++ {
		planes[level[r]] = append(planes[level[r]], r)
	}
	for i := range planes {
		sort.Ints(planes[i])
	}
	return planes
}

// IsDelayedEdge reports whether the dependency upstream->downstream was
// marked delayed during cycle breaking (spec §4.C step 3). FLUDS uses this
// to route an incoming face through the delayed double-buffer rather than
// the ordinary local-flux buffer.
func (s *SPDS) IsDelayedEdge(upstream, downstream int64) bool {
	return s.DelayedEdges[edge{upstream, downstream}]
}

func depthOfGraph(planes [][]int, rank int) int {
	total := len(planes)
	for lvl, ranks := range planes {
		for _, r := range ranks {
			if r == rank {
				return total - lvl
			}
		}
	}
	return 0
}
