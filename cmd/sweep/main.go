// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sweep drives the discrete-ordinates sweep core over one of a
// small set of built-in scenarios (mesh generation and partitioning are out
// of scope for this core, so unlike gofem's own main.go there is no mesh
// file to read; the CLI instead selects a named built-in problem and an
// optional config file for the outer-iteration/scheduling options).
package main

import (
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gofem-sweep/config"
	"github.com/cpmech/gofem-sweep/mpiw"
	"github.com/cpmech/gofem-sweep/solve"
	"github.com/cpmech/gofem-sweep/xerr"
)

func main() {
	exitCode := 0

	defer func() {
		if err := recover(); err != nil {
			if xe, ok := err.(*xerr.Error); ok {
				io.PfRed("ERROR: %v\n", xe)
				exitCode = xe.Kind.ExitCode()
			} else {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
				exitCode = xerr.MpiFailure.ExitCode()
			}
		}
		mpiw.Stop()
		os.Exit(exitCode)
	}()

	comm := mpiw.Init(true)

	if comm.Rank() == 0 {
		io.PfWhite("\nsweep -- discrete-ordinates transport sweep core\n\n")
		io.Pf("Copyright 2016 The Gofem Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")
	}

	scenarioName := flag.String("scenario", "slab1d", "built-in scenario to run: slab1d")
	configDir := flag.String("configdir", ".", "directory holding the config file")
	configFile := flag.String("config", "", "config file name (empty uses scenario defaults)")
	verbose := flag.Bool("verbose", false, "enable per-pass scheduler logging")
	flag.Parse()

	scn, ok := scenarios[*scenarioName]
	if !ok {
		chk.Panic("sweep: unknown scenario %q", *scenarioName)
	}

	cfg := scn.defaultConfig()
	if *configFile != "" {
		cfg = config.ReadConfig(*configDir, *configFile)
	}
	cfg.Verbose = cfg.Verbose || *verbose

	gv, q, mapping, reg, sigmaT, source := scn.build()

	solver := solve.NewSolver(gv, q, mapping, reg, cfg, comm, sigmaT, source)
	stats, _ := solver.Run()

	if comm.Rank() == 0 {
		io.Pf("sweep: converged after %d outer iteration(s), %d sweep(s), max delta psi = %v\n",
			stats.OuterIterations, stats.Sweeps, stats.MaxDelta)
		io.Pf("sweep: wall time %v, peak FLUDS buffer words %d\n", stats.Wall, stats.PeakBufferWords)
	}
}
