// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solve

import "time"

// Stats is the SweepStats downstream interface (spec §6): counts, wall
// times per phase, peak memory, modeled on fem.Summary's role as the
// solver's own bookkeeping output.
type Stats struct {
	OuterIterations int
	Sweeps          int
	MaxDelta        float64 // final Δψ at convergence (or at MaxOuterIts cutoff)
	Wall            time.Duration
	PeakBufferWords int // largest FLUDS Send+Recv+Local allocation observed
}
