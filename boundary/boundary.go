// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package boundary implements the tagged Boundary variant (spec §3
// "Boundary", §9 "Inheritance of boundary types"): Vacuum, IsotropicIncident
// and Reflecting, each satisfying the same read/write interface and
// dispatched by tag rather than by virtual method.
package boundary

import "github.com/cpmech/gosl/chk"

// Kind tags which of the three boundary arms a Face implements.
type Kind int

const (
	Vacuum Kind = iota
	IsotropicIncident
	Reflecting
)

func (k Kind) String() string {
	switch k {
	case Vacuum:
		return "VACUUM"
	case IsotropicIncident:
		return "ISOTROPIC_INCIDENT"
	case Reflecting:
		return "REFLECTING"
	default:
		return "UNKNOWN"
	}
}

// Face is the common read/write interface every boundary arm satisfies
// (spec §9: "each implementing the same read/write interface (get-incoming,
// set-outgoing, is-ready); dispatch by tag").
type Face interface {
	Kind() Kind
	// Incoming returns the incident flux at faceNode for (group, angle).
	Incoming(faceNode, group, angle int) float64
	// SetOutgoing records the flux leaving the domain at faceNode for
	// (group, angle); Reflecting uses this to seed the paired incoming
	// angle for next iteration instead of discarding it.
	SetOutgoing(faceNode, group, angle int, psi float64)
	// Ready reports whether Incoming has a valid value for (faceNode,
	// angle) this iteration (always true for Vacuum/IsotropicIncident;
	// for Reflecting, only after the paired outgoing angle was written).
	Ready(faceNode, angle int) bool
	// Reset clears per-iteration state (spec §3: "their state resets
	// between outer iterations").
	Reset()
}

// VacuumFace returns zero incident flux on every call and ignores writes.
type VacuumFace struct{}

func (VacuumFace) Kind() Kind                                    { return Vacuum }
func (VacuumFace) Incoming(faceNode, group, angle int) float64   { return 0 }
func (VacuumFace) SetOutgoing(faceNode, group, angle int, psi float64) {}
func (VacuumFace) Ready(faceNode, angle int) bool                { return true }
func (VacuumFace) Reset()                                        {}

// IsotropicIncidentFace supplies a fixed, externally-provided incident
// flux, constant across angle (isotropic) and addressed by face-node and
// group only.
type IsotropicIncidentFace struct {
	// Psi[faceNode][group] is the prescribed incident flux.
	Psi [][]float64
}

func (f *IsotropicIncidentFace) Kind() Kind { return IsotropicIncident }

func (f *IsotropicIncidentFace) Incoming(faceNode, group, angle int) float64 {
	if faceNode < 0 || faceNode >= len(f.Psi) {
		return 0
	}
	row := f.Psi[faceNode]
	if group < 0 || group >= len(row) {
		return 0
	}
	return row[group]
}

func (f *IsotropicIncidentFace) SetOutgoing(faceNode, group, angle int, psi float64) {}
func (f *IsotropicIncidentFace) Ready(faceNode, angle int) bool                       { return true }
func (f *IsotropicIncidentFace) Reset()                                              {}

// ReflectingFace pairs an incident direction with its specular reflection
// and carries the "angle-ready" bitmap coupling incoming-from-outgoing
// (spec §3, invariant 5: "ψ_in(θ_reflected) at iteration k equals
// ψ_out(θ_incident) at iteration k−1 at the same boundary node").
type ReflectingFace struct {
	// Mirror[angle] gives the index of the angle that reflects into angle.
	Mirror []int

	nFaceNodes int
	nGroups    int
	nAngles    int

	psi   []float64 // [faceNode][angle][group] flattened, flux deposited by SetOutgoing
	ready []bool    // [faceNode][angle] flattened
}

// NewReflectingFace allocates storage for a reflecting boundary spanning
// nFaceNodes face-nodes, nGroups groups and nAngles angles, with mirror
// giving each angle's reflected counterpart.
func NewReflectingFace(nFaceNodes, nGroups, nAngles int, mirror []int) *ReflectingFace {
	if len(mirror) != nAngles {
		chk.Panic("boundary: mirror table has %d entries, want %d angles", len(mirror), nAngles)
	}
	return &ReflectingFace{
		Mirror:     mirror,
		nFaceNodes: nFaceNodes,
		nGroups:    nGroups,
		nAngles:    nAngles,
		psi:        make([]float64, nFaceNodes*nGroups*nAngles),
		ready:      make([]bool, nFaceNodes*nAngles),
	}
}

func (f *ReflectingFace) Kind() Kind { return Reflecting }

func (f *ReflectingFace) idx(faceNode, group, angle int) int {
	return (faceNode*f.nAngles+angle)*f.nGroups + group
}

func (f *ReflectingFace) readyIdx(faceNode, angle int) int {
	return faceNode*f.nAngles + angle
}

// Incoming returns the flux reflected into (faceNode, angle) from last
// iteration's deposit at the mirrored angle.
func (f *ReflectingFace) Incoming(faceNode, group, angle int) float64 {
	src := f.Mirror[angle]
	return f.psi[f.idx(faceNode, group, src)]
}

// SetOutgoing deposits flux leaving at (faceNode, angle); it becomes next
// iteration's Incoming at the mirrored angle and marks that pairing ready.
func (f *ReflectingFace) SetOutgoing(faceNode, group, angle int, psi float64) {
	f.psi[f.idx(faceNode, group, angle)] = psi
	f.ready[f.readyIdx(faceNode, angle)] = true
}

// Ready reports whether the outgoing deposit that feeds (faceNode, angle)'s
// reflection has happened this iteration.
func (f *ReflectingFace) Ready(faceNode, angle int) bool {
	src := f.Mirror[angle]
	return f.ready[f.readyIdx(faceNode, src)]
}

// Reset clears the angle-ready bitmap between outer iterations (spec §3);
// the deposited flux itself is retained since it is what next iteration's
// Incoming must read (the "previous-iteration" half of the reflection).
func (f *ReflectingFace) Reset() {
	for i := range f.ready {
		f.ready[i] = false
	}
}
