// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package boundary

import "github.com/cpmech/gosl/chk"

// AllocatorType builds a Face for one boundary id, given the per-face sizing
// the caller already knows (face-node count, groups, angles) plus a mirror
// table for Reflecting arms (ignored by the other two).
type AllocatorType func(boundaryID int, nFaceNodes, nGroups, nAngles int, mirror []int) Face

// allocators maps a boundary id's registered Kind to its allocator (spec §9
// "dispatch by tag"; pattern mirrors ele/factory.go's infofactory map).
var allocators = map[Kind]AllocatorType{
	Vacuum: func(boundaryID, nFaceNodes, nGroups, nAngles int, mirror []int) Face {
		return VacuumFace{}
	},
	IsotropicIncident: func(boundaryID, nFaceNodes, nGroups, nAngles int, mirror []int) Face {
		psi := make([][]float64, nFaceNodes)
		for i := range psi {
			psi[i] = make([]float64, nGroups)
		}
		return &IsotropicIncidentFace{Psi: psi}
	},
	Reflecting: func(boundaryID, nFaceNodes, nGroups, nAngles int, mirror []int) Face {
		return NewReflectingFace(nFaceNodes, nGroups, nAngles, mirror)
	},
}

// Registry maps a boundary id (as carried on grid.Face.NeighborID when
// HasNeighbor is false) to the tagged Kind the caller's configuration
// assigned it (spec §6 "BoundaryFactory returning the variant per boundary
// id"). The mapping itself is supplied by the caller (out of scope: it is
// part of the problem's boundary-condition deck, not the sweep core).
type Registry struct {
	kindByID map[int]Kind
}

// NewRegistry builds a Registry from an explicit boundary-id -> Kind table.
func NewRegistry(kindByID map[int]Kind) *Registry {
	return &Registry{kindByID: kindByID}
}

// New allocates the Face for boundaryID, sized for nFaceNodes/nGroups/
// nAngles, with mirror consumed only by a Reflecting arm.
func (r *Registry) New(boundaryID, nFaceNodes, nGroups, nAngles int, mirror []int) Face {
	kind, ok := r.kindByID[boundaryID]
	if !ok {
		chk.Panic("boundary: no kind registered for boundary id %d", boundaryID)
	}
	fcn, ok := allocators[kind]
	if !ok {
		chk.Panic("boundary: no allocator registered for kind %s", kind)
	}
	return fcn(boundaryID, nFaceNodes, nGroups, nAngles, mirror)
}
