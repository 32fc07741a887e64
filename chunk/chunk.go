// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package chunk implements the Sweep Chunk kernel (spec §4.G): the
// per-cell, per-angle, per-group transport solve invoked by an angle-set
// while executing its SPLS. The chunk is re-entrant per angle-set call and
// retains no state between invocations (spec §4.G "must not retain state
// between calls").
package chunk

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/fluds"
	"github.com/cpmech/gofem-sweep/grid"
	"github.com/cpmech/gofem-sweep/orient"
	"github.com/cpmech/gofem-sweep/quad"
)

// ConstSource is a fun.Func adapter for a source term that is uniform in
// time and space, mirroring how ele/diffusion.go's Qt/QnL source fields fall
// back to a constant when a scenario has no genuine time/space profile.
type ConstSource float64

func (c ConstSource) F(t float64, x []float64) float64      { return float64(c) }
func (c ConstSource) G(t float64, x []float64) float64      { return 0 }
func (c ConstSource) H(t float64, x []float64) float64      { return 0 }
func (c ConstSource) Grad(t float64, x []float64) []float64 { return nil }

// cellCentroid averages a cell's node coordinates, the (t, x) spatial
// argument a fun.Func source term is evaluated at (spec §4.G has no notion
// of sub-cell quadrature points, so the centroid is the cell's single
// representative location).
func cellCentroid(cell *grid.Cell) []float64 {
	x := []float64{0, 0, 0}
	if len(cell.Nodes) == 0 {
		return x
	}
	for _, nd := range cell.Nodes {
		x[0] += nd.X[0]
		x[1] += nd.X[1]
		x[2] += nd.X[2]
	}
	n := float64(len(cell.Nodes))
	x[0] /= n
	x[1] /= n
	x[2] /= n
	return x
}

// CellMapping is the spatial-discretization collaborator the chunk reads
// finite-element data from (spec §6 upstream interface); piecewise-linear
// shape functions and their assembly are an external concern.
type CellMapping interface {
	// FaceNodeMapping returns, for face f of a cell, the cell-local node
	// index for each face-local node position.
	FaceNodeMapping(f int) []int
	// NumNodes returns the cell's total node count.
	NumNodes() int
	// FaceNodeCount returns the node count of face f.
	FaceNodeCount(f int) int
	// Assemble fills the dense cell system A·x=b for one (cell, angle,
	// group), given the already-read incoming flux on that cell's
	// incoming faces (incoming[face][node]), the cross section Σt for
	// this (cell material, group), and an external source term.
	Assemble(cell *grid.Cell, dir quad.Direction, group int, incoming map[int][]float64, sigmaT float64, source float64) (A [][]float64, b []float64)
}

// Phase is one stage of the per-cell kernel pipeline (spec §9 "Callbacks /
// kernel plug-ins ... a small enum of kernel phases"). Chunk pre-binds one
// function per phase so the innermost loop calls through a flat slice of
// handles instead of a virtual dispatch.
type Phase int

const (
	PhaseCellData Phase = iota
	PhaseDirection
	PhaseSurface
	PhaseMass
	PhaseFluxUpdate
	PhasePostCell
	numPhases
)

// Hook is a registered phase handle; nil entries are skipped.
type Hook func(*Context)

// Context is the state threaded through one cell's phase pipeline; it is
// allocated fresh by each Run call and is not retained by the Kernel,
// honoring the chunk's no-retained-state contract.
type Context struct {
	Cell      *grid.Cell
	LocalID   int
	Direction quad.Direction
	Group     int
	SigmaT    float64
	Source    fun.Func
	Incoming  map[int][]float64 // face -> per-node incoming flux
	Outgoing  map[int][]float64 // face -> per-node outgoing flux, filled by Run before PhaseFluxUpdate
	AngleIdx  int
	Solution  []float64 // the cell's solved nodal ψ, indexed by cell-local node, available to PhaseFluxUpdate/PhasePostCell
}

// Kernel bundles a CellMapping with the registered phase hooks and the
// dense-solve dispatch (spec §4.G steps 2-3).
type Kernel struct {
	Mapping CellMapping
	Hooks   [numPhases]Hook
}

// NewKernel builds a Kernel with the standard phase sequence: Assemble via
// mapping (cell-data + direction + surface + mass folded into one call,
// since the FE assembly itself is the external collaborator), dense solve,
// then flux update and the optional post-cell hook.
func NewKernel(mapping CellMapping) *Kernel {
	return &Kernel{Mapping: mapping}
}

// SetHook registers fcn for phase, overriding any previous registration
// (mirrors ele/factory.go's Set*-then-Get* pattern, generalized to phases).
func (k *Kernel) SetHook(phase Phase, fcn Hook) {
	k.Hooks[phase] = fcn
}

// RunInput groups one cell's per-(angle,group) execution context: its
// FLUDS template/instance, cached face orientations, the direction and
// group being swept, the cross section and source supplied by the outer
// solver, and the boundary faces keyed by the boundary id carried on
// grid.Face.NeighborID for faces with !HasNeighbor.
type RunInput struct {
	Template     *fluds.Template
	Instance     *fluds.Instance
	Cell         *grid.Cell
	LocalID      int
	Orientations []orient.Orientation
	Direction    quad.Direction
	AngleIdx     int
	Group        int
	SigmaT       float64
	Source       fun.Func
	BoundaryFaces map[int]boundary.Face
}

// Run executes one cell for one (angle, group) pair: read incoming ψ,
// assemble A·x=b, solve by dense Gaussian elimination, write outgoing ψ
// (spec §4.G). k.Mapping supplies the per-face node layout; in.Template and
// in.Instance are the angle-set's FLUDS pair.
func Run(k *Kernel, in RunInput) *Context {
	cell, localID, orientations := in.Cell, in.LocalID, in.Orientations
	dir, angleIdx, group := in.Direction, in.AngleIdx, in.Group
	t, fl, bndFaces := in.Template, in.Instance, in.BoundaryFaces
	sigmaT, source := in.SigmaT, in.Source

	ctx := &Context{
		Cell: cell, LocalID: localID, Direction: dir, Group: group,
		SigmaT: sigmaT, Source: source, AngleIdx: angleIdx,
		Incoming: map[int][]float64{},
		Outgoing: map[int][]float64{},
	}

	// step 1: read incoming psi on every INCOMING face.
	for fi, o := range orientations {
		if o != orient.Incoming {
			continue
		}
		f := &cell.Faces[fi]
		n := k.Mapping.FaceNodeCount(fi)
		vals := make([]float64, n)
		if !f.HasNeighbor {
			if bf, ok := bndFaces[int(f.NeighborID)]; ok {
				for node := 0; node < n; node++ {
					vals[node] = bf.Incoming(node, group, angleIdx)
				}
			}
		} else {
			vals = readLocalIncoming(t, fl, localID, fi, n, group, angleIdx)
		}
		ctx.Incoming[fi] = vals
	}

	if k.Hooks[PhaseCellData] != nil {
		k.Hooks[PhaseCellData](ctx)
	}
	if k.Hooks[PhaseDirection] != nil {
		k.Hooks[PhaseDirection](ctx)
	}
	if k.Hooks[PhaseSurface] != nil {
		k.Hooks[PhaseSurface](ctx)
	}
	if k.Hooks[PhaseMass] != nil {
		k.Hooks[PhaseMass](ctx)
	}

	// step 2-3: assemble and solve. The source term is a fun.Func evaluated
	// at the cell's centroid (spec §4.G has no sub-cell quadrature point),
	// the same F(t,x) contract ele/diffusion.go's Qt/QnL source fields use.
	sourceVal := 0.0
	if source != nil {
		sourceVal = source.F(0, cellCentroid(cell))
	}
	A, b := k.Mapping.Assemble(cell, dir, group, ctx.Incoming, sigmaT, sourceVal)
	x := solveDense(A, b)
	ctx.Solution = x

	// step 4: write outgoing psi per OUTGOING face, reading the solved
	// cell-node values back onto each face's node mapping.
	for fi, o := range orientations {
		if o != orient.Outgoing {
			continue
		}
		f := &cell.Faces[fi]
		mapping := k.Mapping.FaceNodeMapping(fi)
		out := make([]float64, len(mapping))
		for node, cellNode := range mapping {
			out[node] = x[cellNode]
		}
		ctx.Outgoing[fi] = out
		if !f.HasNeighbor {
			if bf, ok := bndFaces[int(f.NeighborID)]; ok {
				for node, v := range out {
					bf.SetOutgoing(node, group, angleIdx, v)
				}
			}
			continue
		}
		writeOutgoing(t, fl, localID, fi, out, group, angleIdx)
	}

	if k.Hooks[PhaseFluxUpdate] != nil {
		k.Hooks[PhaseFluxUpdate](ctx)
	}
	if k.Hooks[PhasePostCell] != nil {
		k.Hooks[PhasePostCell](ctx)
	}
	return ctx
}

// solveDense solves A·x=b by dense Gaussian elimination (spec §4.G step 3),
// grounded on gosl/la's dense matrix inversion rather than a hand-rolled
// elimination routine.
func solveDense(A [][]float64, b []float64) []float64 {
	n := len(b)
	if n == 0 {
		return nil
	}
	Ainv := la.MatAlloc(n, n)
	det := la.MatInv(Ainv, A, false)
	if det == 0 {
		chk.Panic("chunk: singular cell system (det=0)")
	}
	x := make([]float64, n)
	la.MatVecMul(x, 1, Ainv, b)
	return x
}

// readLocalIncoming locates the Template.Local entries for (localID, face)
// and gathers the stored upstream flux into a per-node slice; if no Local
// entry matches, the face is instead fed by a Prelocal (non-local) slot and
// the value is gathered from the Recv buffer.
func readLocalIncoming(t *fluds.Template, fl *fluds.Instance, localID, face, n, group, angle int) []float64 {
	out := make([]float64, n)
	found := false
	for slot, li := range t.Local {
		if li.CellLocalID != localID || li.Face != face {
			continue
		}
		found = true
		off := fl.Offset(slot, group, angle)
		out[li.Node] = fl.Local[off]
	}
	if found {
		return out
	}
	for _, ps := range t.Prelocal {
		if ps.CellLocalID != localID || ps.Face != face {
			continue
		}
		for node := 0; node < n; node++ {
			off := fl.Offset(ps.SlotBase+node, group, angle)
			out[node] = fl.Recv[off]
		}
		break
	}
	return out
}

// writeOutgoing stores out (one value per face-node) into every FLUDS slot
// that names (localID, face) as its upstream (spec §4.G step 4).
func writeOutgoing(t *fluds.Template, fl *fluds.Instance, localID, face int, out []float64, group, angle int) {
	for slot, li := range t.Local {
		if li.Upstream.CellLocalID != localID || li.Upstream.Face != face {
			continue
		}
		off := fl.Offset(slot, group, angle)
		fl.Local[off] = out[li.Upstream.Node]
	}
	for slot, ns := range t.NonLocal {
		if ns.CellLocalID != localID || ns.Face != face {
			continue
		}
		for node, v := range out {
			off := fl.Offset(ns.SlotBase+node, group, angle)
			fl.Send[off] = v
		}
	}
}
