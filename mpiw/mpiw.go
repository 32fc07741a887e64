// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mpiw wraps github.com/cpmech/gosl/mpi behind one explicit,
// process-wide handle, threaded through constructors the way the rest of
// this rewrite threads a GridView or SPDS (Design Notes §9: "Singleton
// MPI info: model as an explicit process-wide handle ... no hidden
// global access inside hot loops").
package mpiw

import (
	"sync/atomic"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"

	"github.com/cpmech/gofem-sweep/xerr"
)

// Comm is the process-wide MPI handle. One is built at program start via
// Init and passed explicitly to every constructor that needs rank/size or
// point-to-point messaging (solve.NewSolver, AngleSet, Scheduler).
type Comm struct {
	on    bool
	rank  int
	nproc int
}

// Init starts MPI (if not already on) the way main.go/fem.NewFEM does via
// mpi.Start(false)/mpi.IsOn(), and returns the process's Comm handle.
// allowParallel mirrors fem.NewFEM's flag of the same name: when false, the
// sweep core runs single-rank regardless of whether MPI is compiled in.
func Init(allowParallel bool) *Comm {
	if !mpi.IsOn() {
		mpi.Start(false)
	}
	c := &Comm{}
	if mpi.IsOn() && allowParallel {
		c.on = true
		c.rank = mpi.Rank()
		c.nproc = mpi.Size()
	} else {
		c.rank = 0
		c.nproc = 1
	}
	return c
}

// Stop finalizes MPI, mirroring main.go's deferred mpi.Stop(false).
func Stop() {
	mpi.Stop(false)
}

// Rank returns this process's rank (0 when MPI is off or disallowed).
func (c *Comm) Rank() int { return c.rank }

// Size returns the number of ranks (1 when MPI is off or disallowed).
func (c *Comm) Size() int { return c.nproc }

// Distributed reports whether this Comm spans more than one rank.
func (c *Comm) Distributed() bool { return c.on && c.nproc > 1 }

// Request is a non-blocking send or receive in flight, tagged by
// (angle_set_id, source_rank) per spec §5 "Messages". gosl/mpi exposes only
// blocking SendOne/RecvOne, so a request is carried out by a dedicated
// goroutine running the blocking call, with done flipped by an atomic once
// it returns; Test polls that flag instead of suspending the caller.
// This mirrors the shape of fem's own background-goroutine use around
// blocking linear-solver calls, not a real MPI_Isend/Irecv, and it assumes
// the build's MPI library tolerates concurrent blocking calls issued from
// goroutines (no MPI_THREAD_MULTIPLE negotiation is attempted here).
type Request struct {
	tag  int
	done int32
	err  error
	// buf is retained so the caller (the FLUDS instance) keeps owning the
	// backing storage; mpiw never copies it (spec §5: "Buffers are owned
	// by the FLUDS instance; they must outlive the request").
	buf []float64
}

// ISend posts a non-blocking send of buf to destRank tagged with tag: the
// blocking mpi.SendOne runs in a background goroutine (see Request).
func (c *Comm) ISend(destRank, tag int, buf []float64) *Request {
	if !c.on {
		chk.Panic("mpiw: ISend called while not distributed")
	}
	r := &Request{tag: tag, buf: buf}
	go func() {
		mpi.SendOne(destRank, tag, buf)
		atomic.StoreInt32(&r.done, 1)
	}()
	return r
}

// IRecv posts a non-blocking receive from srcRank tagged with tag. buf is
// filled in place once the background goroutine's blocking RecvOne returns.
func (c *Comm) IRecv(srcRank, tag int, buf []float64) *Request {
	if !c.on {
		chk.Panic("mpiw: IRecv called while not distributed")
	}
	r := &Request{tag: tag, buf: buf}
	go func() {
		mpi.RecvOne(srcRank, tag, buf)
		atomic.StoreInt32(&r.done, 1)
	}()
	return r
}

// Test polls a request for completion (non-blocking; spec §5 "Only MPI
// test/wait calls suspend"; Test itself never suspends).
func (r *Request) Test() bool {
	return atomic.LoadInt32(&r.done) == 1
}

// Cancel marks a request done without waiting for its goroutine, for
// AngleSet cancellation on a fatal error where the peer rank is already
// aborting and no reply will ever arrive.
func (r *Request) Cancel() { atomic.StoreInt32(&r.done, 1) }

// Barrier blocks until every rank reaches this call.
func (c *Comm) Barrier() {
	if c.on {
		mpi.Barrier()
	}
}

// Abort performs the collective abort required by spec §7 on any fatal
// error kind, after the caller has printed its ranked diagnostic.
func (c *Comm) Abort(kind xerr.Kind) {
	if c.on {
		mpi.Abort()
	}
	panic(xerr.New(kind, "collective abort"))
}

// allGatherEdgesTag is a fixed tag for the edge-gather handshake; it is run
// once per direction, well outside the angle-set tag range (id*1000+rank),
// so it cannot collide with sweep traffic.
const allGatherEdgesTag = -1

// AllGatherEdges collects every rank's local inter-rank dependency edges
// (spds.SPDS.LocalInterRankEdges) into the full cross-process edge set every
// rank needs to run spds.SPDS.Level. gosl/mpi has no collective gather, so
// this is built out of the same blocking SendOne/RecvOne primitives ISend
// and IRecv use: each non-root rank sends its edge count then its flattened
// edges to rank 0, which assembles the union and broadcasts it back the
// same way. Single-rank runs skip the round trip entirely.
func (c *Comm) AllGatherEdges(local [][2]int) [][2]int {
	if !c.on {
		return local
	}
	if c.rank == 0 {
		all := append([][2]int{}, local...)
		for src := 1; src < c.nproc; src++ {
			n := make([]float64, 1)
			mpi.RecvOne(src, allGatherEdgesTag, n)
			count := int(n[0])
			if count > 0 {
				flat := make([]float64, 2*count)
				mpi.RecvOne(src, allGatherEdgesTag, flat)
				for i := 0; i < count; i++ {
					all = append(all, [2]int{int(flat[2*i]), int(flat[2*i+1])})
				}
			}
		}
		flat := flattenEdges(all)
		for dst := 1; dst < c.nproc; dst++ {
			n := []float64{float64(len(all))}
			mpi.SendOne(dst, allGatherEdgesTag, n)
			if len(all) > 0 {
				mpi.SendOne(dst, allGatherEdgesTag, flat)
			}
		}
		return all
	}
	n := []float64{float64(len(local))}
	mpi.SendOne(0, allGatherEdgesTag, n)
	if len(local) > 0 {
		mpi.SendOne(0, allGatherEdgesTag, flattenEdges(local))
	}
	countBuf := make([]float64, 1)
	mpi.RecvOne(0, allGatherEdgesTag, countBuf)
	count := int(countBuf[0])
	if count == 0 {
		return nil
	}
	flat := make([]float64, 2*count)
	mpi.RecvOne(0, allGatherEdgesTag, flat)
	all := make([][2]int, count)
	for i := 0; i < count; i++ {
		all[i] = [2]int{int(flat[2*i]), int(flat[2*i+1])}
	}
	return all
}

func flattenEdges(edges [][2]int) []float64 {
	flat := make([]float64, 2*len(edges))
	for i, e := range edges {
		flat[2*i], flat[2*i+1] = float64(e[0]), float64(e[1])
	}
	return flat
}
