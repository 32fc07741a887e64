// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sched implements the Depth-Of-Graph (DOG) Sweep Scheduler (spec
// §4.H): the concurrent driver that advances multiple angle-sets using
// non-blocking progress, ordered by depth then by direction-sign tie-break.
package sched

import (
	"sort"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gofem-sweep/angleset"
	"github.com/cpmech/gofem-sweep/boundary"
	"github.com/cpmech/gofem-sweep/mpiw"
	"github.com/cpmech/gofem-sweep/xerr"
)

// Scheduler drives a flat array of angle-sets through one sweep (glossary
// "Sweep": one pass over all angle-sets). It holds no per-angle-set
// hierarchy (spec §9 "Deeply nested object hierarchies ... flatten to ...
// scheduler works over flat ids").
type Scheduler struct {
	AngleSets  []*angleset.AngleSet
	Reflecting []*boundary.ReflectingFace

	Comm *mpiw.Comm

	// Verbose enables per-pass progress logging via gosl/io, matching
	// fem.Solver's io.Pf-gated diagnostics.
	Verbose bool

	// MaxStalledPasses bounds the optional hang detector (spec §4.H
	// "A hang detector (optional)"); 0 disables it.
	MaxStalledPasses int
}

// order sorts angle-set indices by (depth desc, signX desc, signY desc,
// signZ desc) using the first direction in each set as the tie-break
// source, since every direction in an angle-set shares sign class by
// construction (spec §4.H "Ordering").
func (s *Scheduler) order() []int {
	idx := make([]int, len(s.AngleSets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := s.AngleSets[idx[i]], s.AngleSets[idx[j]]
		if a.Depth() != b.Depth() {
			return a.Depth() > b.Depth()
		}
		da, db := a.Directions[0], b.Directions[0]
		if da.SignX != db.SignX {
			return da.SignX > db.SignX
		}
		if da.SignY != db.SignY {
			return da.SignY > db.SignY
		}
		return da.SignZ > db.SignZ
	})
	return idx
}

// Sweep runs one full outer-iteration pass: the NO_EXEC_IF_READY/EXECUTE
// main loop, a barrier, delayed-data flush, and a reset of every angle-set
// and reflecting boundary (spec §4.H "Main loop").
func (s *Scheduler) Sweep() error {
	order := s.order()

	stalledPasses := 0
	for {
		progressed := false
		notAllDone := false
		for _, i := range order {
			as := s.AngleSets[i]
			status := as.Advance(angleset.NoExecIfReady)
			if status == angleset.ReadyToExecute {
				as.Advance(angleset.Execute)
				progressed = true
			}
			if status != angleset.Finished {
				notAllDone = true
			}
		}
		if !notAllDone {
			break
		}
		if progressed {
			stalledPasses = 0
		} else {
			stalledPasses++
			if s.MaxStalledPasses > 0 && stalledPasses >= s.MaxStalledPasses {
				s.logStuck()
				if s.Comm != nil {
					s.Comm.Abort(xerr.MpiFailure)
				}
				return errStalled
			}
		}
		if s.Verbose {
			io.Pf("sched: pass complete, progressed=%v\n", progressed)
		}
	}

	if s.Comm != nil {
		s.Comm.Barrier()
	}
	s.flushDelayed()

	for _, as := range s.AngleSets {
		as.Reset()
	}
	for _, rf := range s.Reflecting {
		rf.Reset()
	}
	return nil
}

// flushDelayed drains any angle-set the main loop left short of FINISHED
// (spec §4.H "flush all send buffers; receive delayed data until
// quiescent"). The main loop only exits once every angle-set reports
// FINISHED, so in the common case this is a no-op; it exists as the
// explicit quiescence check the spec calls out as a separate step, rather
// than folding it silently into the loop-exit condition above.
func (s *Scheduler) flushDelayed() {
	for _, as := range s.AngleSets {
		for as.State() != angleset.Finished && as.State() != angleset.NotFinished {
			as.Advance(angleset.Execute)
		}
	}
}

func (s *Scheduler) logStuck() {
	for _, as := range s.AngleSets {
		if as.State() != angleset.Finished {
			io.Pf("sched: angle-set %d stuck in state %s (depth=%d)\n", as.ID, as.State(), as.Depth())
		}
	}
}

type stalledError string

func (e stalledError) Error() string { return string(e) }

const errStalled = stalledError("sched: no progress made in MaxStalledPasses consecutive passes")
