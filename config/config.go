// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package config implements the input data read from a (.sweep) JSON file,
// modeled on gofem's inp.ReadSim: a single Read* constructor that validates
// eagerly and panics (via gosl/chk) on malformed input, leaving ordinary
// errors for conditions the caller can recover from.
package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gofem-sweep/xerr"
)

// SchedulingAlgorithm is the scheduling_algorithm CLI/config option (spec §6).
// DOG is the only member implemented by this core; the type exists so a
// config file that asks for something else fails validation instead of
// silently running DOG.
type SchedulingAlgorithm string

// DOG is Depth-Of-Graph scheduling, the only supported algorithm (spec §4.H).
const DOG SchedulingAlgorithm = "DOG"

// AngleAggregation is the angle_aggregation CLI/config option (spec §6).
type AngleAggregation string

const (
	Single    AngleAggregation = "SINGLE"
	Polar     AngleAggregation = "POLAR"
	Azimuthal AngleAggregation = "AZIMUTHAL"
	Octant    AngleAggregation = "OCTANT"
)

// GroupsetData describes one outer-iteration energy-group subset (glossary:
// Groupset), named the way inp.ElemData names a per-tag data block.
type GroupsetData struct {
	Name        string  `json:"name"`        // groupset name
	NumGroups   int     `json:"numgroups"`   // number of energy groups in this subset
	QuadFile    string  `json:"quadfile"`    // quadrature description; "" uses a built-in fixed quadrature
	Tolerance   float64 `json:"tolerance"`   // outer-iteration convergence tolerance (Δψ)
	MaxOuterIts int     `json:"maxouterits"` // cap on outer (Richardson) iterations
}

// SweepConfig holds the sweep core's options (spec §6, stated as out of
// scope for the CLI/scripting layer itself but consumed here). AngleAggr is
// validated, but solve.NewSolver always builds one angle-set per direction
// (SINGLE) whatever its value; MaxMpiMessageSize is read but not used.
type SweepConfig struct {
	AllowCycles        bool                `json:"allowcycles"`
	Scheduling         SchedulingAlgorithm `json:"scheduling"`
	AngleAggr          AngleAggregation    `json:"angleaggr"`
	MaxMpiMessageSize  int                 `json:"maxmpimessagesize"`
	Groupsets          []GroupsetData      `json:"groupsets"`
	DirOut             string              `json:"dirout"`
	Verbose            bool                `json:"verbose"`
}

// ReadConfig reads and validates a SweepConfig from a JSON file, mirroring
// inp.ReadSim's read-then-validate shape.
func ReadConfig(dir, fn string) (o *SweepConfig) {
	b, err := io.ReadFile(filepath.Join(dir, fn))
	if err != nil {
		chk.Panic("config: cannot read file %q:\n%v", fn, err)
	}
	o = new(SweepConfig)
	err = json.Unmarshal(b, o)
	if err != nil {
		chk.Panic("config: cannot parse file %q:\n%v", fn, err)
	}
	if verr := o.Validate(); verr != nil {
		chk.Panic("%v", verr)
	}
	return
}

// Validate checks the mismatched groupset/quadrature/partition conditions
// spec §7 calls out as InvalidConfiguration, surfaced to the caller (never
// panicked directly) so a library user can decide how to report it.
func (o *SweepConfig) Validate() error {
	if o.Scheduling == "" {
		o.Scheduling = DOG
	}
	if o.Scheduling != DOG {
		return xerr.New(xerr.InvalidConfiguration, "scheduling algorithm %q is not supported; only %q is", o.Scheduling, DOG)
	}
	if o.AngleAggr == "" {
		o.AngleAggr = Single
	}
	switch o.AngleAggr {
	case Single, Polar, Azimuthal, Octant:
	default:
		return xerr.New(xerr.InvalidConfiguration, "angle_aggregation %q is not recognized", o.AngleAggr)
	}
	if len(o.Groupsets) == 0 {
		return xerr.New(xerr.InvalidConfiguration, "at least one groupset is required")
	}
	for i, gs := range o.Groupsets {
		if gs.NumGroups < 1 {
			return xerr.New(xerr.InvalidConfiguration, "groupset %d (%s): numgroups must be >= 1", i, gs.Name)
		}
		if gs.MaxOuterIts < 1 {
			return xerr.New(xerr.InvalidConfiguration, "groupset %d (%s): maxouterits must be >= 1", i, gs.Name)
		}
	}
	return nil
}
