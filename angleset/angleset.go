// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package angleset implements the AngleSet state machine (spec §3/§4.F): a
// group of directions sharing one SPDS/FLUDS pair, advanced through
// NOT_FINISHED -> RECEIVING -> READY_TO_EXECUTE -> EXECUTED ->
// MESSAGES_SENT -> FINISHED by repeated, non-blocking AngleSetAdvance calls.
package angleset

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/fluds"
	"github.com/cpmech/gofem-sweep/mpiw"
	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/spds"
)

// State is one node of the AngleSet state machine (spec §4.F).
type State int

const (
	NotFinished State = iota
	Receiving
	ReadyToExecute
	Executed
	MessagesSent
	Finished
)

func (s State) String() string {
	switch s {
	case NotFinished:
		return "NOT_FINISHED"
	case Receiving:
		return "RECEIVING"
	case ReadyToExecute:
		return "READY_TO_EXECUTE"
	case Executed:
		return "EXECUTED"
	case MessagesSent:
		return "MESSAGES_SENT"
	case Finished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

// Permission is the argument to AngleSetAdvance (spec §4.F/§4.H).
type Permission int

const (
	// NoExecIfReady lets every other state transition happen but stops
	// short of running the chunk even if READY_TO_EXECUTE, so the
	// scheduler can give every angle-set a chance at MPI progress first
	// (spec §4.H "NO_EXEC_IF_READY").
	NoExecIfReady Permission = iota
	Execute
)

// Executor runs the Sweep Chunk over every local cell in spls for this
// angle-set (spec §4.G); AngleSet itself owns no cell-loop logic.
type Executor func(dir quad.Direction) error

// AngleSet groups directions sharing one SPDS/FLUDS pair (glossary
// "Angle-set") and owns its non-blocking request handles.
type AngleSet struct {
	ID        int
	Directions []quad.Direction
	SPDS      *spds.SPDS
	Template  *fluds.Template
	Instance  *fluds.Instance

	state State

	recvs []*mpiw.Request
	sends []*mpiw.Request

	comm *mpiw.Comm
	run  Executor
}

// New builds an AngleSet in state NOT_FINISHED.
func New(id int, dirs []quad.Direction, s *spds.SPDS, t *fluds.Template, in *fluds.Instance, comm *mpiw.Comm, run Executor) *AngleSet {
	return &AngleSet{
		ID: id, Directions: dirs, SPDS: s, Template: t, Instance: in,
		state: NotFinished, comm: comm, run: run,
	}
}

// State returns the current state.
func (a *AngleSet) State() State { return a.state }

// Depth is the DOG scheduling priority (spec §4.H), taken directly from
// this angle-set's SPDS (shared by every direction in the set).
func (a *AngleSet) Depth() int { return a.SPDS.Depth }

// Advance drives one state-machine step (spec §4.F). It returns the state
// reached; the scheduler inspects the return value to decide whether to
// call again with Execute permission.
func (a *AngleSet) Advance(perm Permission) State {
	switch a.state {
	case NotFinished:
		a.postReceives()
		a.state = Receiving
	case Receiving:
		if a.allComplete(a.recvs) {
			a.state = ReadyToExecute
		}
	case ReadyToExecute:
		if perm == Execute {
			a.execute()
			a.state = Executed
		}
	case Executed:
		a.postSends()
		a.state = MessagesSent
	case MessagesSent:
		if a.allComplete(a.sends) {
			a.state = Finished
		}
	case Finished:
		// idle until Reset.
	}
	return a.state
}

func (a *AngleSet) postReceives() {
	if a.comm == nil || !a.comm.Distributed() {
		return
	}
	a.recvs = a.recvs[:0]
	for _, ps := range a.Template.Prelocal {
		buf := a.Instance.Recv // shared backing array; recv tags disambiguate sub-ranges in a real wire impl
		tag := a.ID*1000 + ps.SrcRank
		a.recvs = append(a.recvs, a.comm.IRecv(ps.SrcRank, tag, buf))
	}
}

func (a *AngleSet) postSends() {
	if a.comm == nil || !a.comm.Distributed() {
		return
	}
	a.sends = a.sends[:0]
	byRank := map[int]bool{}
	for _, ns := range a.Template.NonLocal {
		byRank[ns.DestRank] = true
	}
	for rank := range byRank {
		tag := a.ID*1000 + a.comm.Rank()
		a.sends = append(a.sends, a.comm.ISend(rank, tag, a.Instance.Send))
	}
}

func (a *AngleSet) allComplete(reqs []*mpiw.Request) bool {
	for _, r := range reqs {
		if !r.Test() {
			return false
		}
	}
	return true
}

func (a *AngleSet) execute() {
	if a.run == nil {
		chk.Panic("angleset %d: no executor registered", a.ID)
	}
	for _, dir := range a.Directions {
		if err := a.run(dir); err != nil {
			a.Cancel()
			chk.Panic("angleset %d: sweep chunk failed: %v", a.ID, err)
		}
	}
}

// Cancel aborts outstanding requests (spec §4.F "on fatal error, outstanding
// requests are canceled, then reset is invoked").
func (a *AngleSet) Cancel() {
	for _, r := range a.recvs {
		r.Cancel()
	}
	for _, r := range a.sends {
		r.Cancel()
	}
	a.Reset()
}

// Reset returns the angle-set to NOT_FINISHED at the end of an outer
// iteration (spec §4.F, §4.H main loop).
func (a *AngleSet) Reset() {
	a.state = NotFinished
	a.recvs = nil
	a.sends = nil
	a.Instance.SwapDelayed()
}
