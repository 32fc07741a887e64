// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fluds

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Instance is the group/angle-scaled storage built from a Template for one
// angle-set (spec §4.E "Instance scaling"). Every slot in the template's
// non-local/prelocal index spaces becomes a contiguous tile of
// G_ss * N_as entries per face-node, addressed by the formula in spec §4.E:
//
//	offset = slot_base*G_ss*N_as + (angle_idx*G_ss + group_idx)
//
// Local and delayed-local storage is addressed the same way, one slot per
// LocalIncoming/DelayedLocal entry (each entry already names a single
// face-node, so its "face_nodes" span is 1).
type Instance struct {
	Template *Template

	Groups int // G_ss, groups in this groupset
	Angles int // N_as, angles in this angle-set

	Send  []float64 // NonLocal slots, scaled
	Recv  []float64 // Prelocal slots, scaled
	Local []float64 // Template.Local slots, scaled

	DelayedPrev []float64 // read this outer iteration
	DelayedCurr []float64 // written this outer iteration
}

// NewInstance allocates storage for one (groupset, angle-set) pair sharing
// template t (spec §4.E).
func NewInstance(t *Template, groups, angles int) *Instance {
	if groups <= 0 || angles <= 0 {
		chk.Panic("fluds: groups=%d and angles=%d must both be positive", groups, angles)
	}
	tile := groups * angles
	return &Instance{
		Template:    t,
		Groups:      groups,
		Angles:      angles,
		Send:        make([]float64, t.SlotCount*tile),
		Recv:        make([]float64, t.PreCount*tile),
		Local:       make([]float64, len(t.Local)*tile),
		DelayedPrev: make([]float64, len(t.DelayedLocal)*tile),
		DelayedCurr: make([]float64, len(t.DelayedLocal)*tile),
	}
}

// Offset computes the flat index for (slot, groupIdx, angleIdx) (spec §4.E
// addressing formula, specialized to face_nodes=1 since every slot here
// already addresses one face-node).
func (in *Instance) Offset(slot, groupIdx, angleIdx int) int {
	return slot*in.Groups*in.Angles + angleIdx*in.Groups + groupIdx
}

// instanceWire is the on-wire shape of an Instance's buffers, the part of
// the struct that actually needs to survive a checkpoint: Template is
// rebuilt from the grid/SPDS on restart, not serialized, mirroring how
// ele/solid's Rjoint.Encode carries only its internal state variables.
type instanceWire struct {
	Groups, Angles                              int
	Send, Recv, Local, DelayedPrev, DelayedCurr []float64
}

// Encode writes the instance's flux buffers, modeled on ele/solid's
// Rjoint.Encode restart pattern (gob-backed utl.Encoder).
func (in *Instance) Encode(enc utl.Encoder) (err error) {
	return enc.Encode(instanceWire{
		Groups: in.Groups, Angles: in.Angles,
		Send: in.Send, Recv: in.Recv, Local: in.Local,
		DelayedPrev: in.DelayedPrev, DelayedCurr: in.DelayedCurr,
	})
}

// Decode restores the instance's flux buffers in place, leaving Template
// untouched (the caller must have already rebuilt it against the same
// grid/SPDS the encoded state came from).
func (in *Instance) Decode(dec utl.Decoder) (err error) {
	var w instanceWire
	if err = dec.Decode(&w); err != nil {
		return
	}
	in.Groups, in.Angles = w.Groups, w.Angles
	in.Send, in.Recv, in.Local = w.Send, w.Recv, w.Local
	in.DelayedPrev, in.DelayedCurr = w.DelayedPrev, w.DelayedCurr
	return nil
}

// SwapDelayed exchanges DelayedPrev and DelayedCurr at the end of an outer
// iteration (spec §4.D "buffers swap at the end of each outer iteration"),
// so the next iteration reads what was just written without copying, and
// zeroes the new write buffer for cells that do not re-deposit this round.
func (in *Instance) SwapDelayed() {
	in.DelayedPrev, in.DelayedCurr = in.DelayedCurr, in.DelayedPrev
	for i := range in.DelayedCurr {
		in.DelayedCurr[i] = 0
	}
}
