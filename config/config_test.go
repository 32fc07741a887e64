// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/xerr"
)

func Test_config_validate_fills_defaults(tst *testing.T) {
	chk.PrintTitle("config_validate_fills_defaults")
	o := &SweepConfig{Groupsets: []GroupsetData{{Name: "g0", NumGroups: 2, MaxOuterIts: 10}}}
	if err := o.Validate(); err != nil {
		tst.Fatalf("unexpected validation error: %v", err)
	}
	if o.Scheduling != DOG {
		tst.Fatalf("expected default scheduling DOG, got %q", o.Scheduling)
	}
	if o.AngleAggr != Single {
		tst.Fatalf("expected default angle aggregation SINGLE, got %q", o.AngleAggr)
	}
}

func Test_config_validate_rejects_unsupported_scheduling(tst *testing.T) {
	chk.PrintTitle("config_validate_rejects_unsupported_scheduling")
	o := &SweepConfig{
		Scheduling: "KBA",
		Groupsets:  []GroupsetData{{Name: "g0", NumGroups: 1, MaxOuterIts: 1}},
	}
	err := o.Validate()
	if err == nil {
		tst.Fatal("expected validation error for unsupported scheduling algorithm")
	}
	if xerr.KindOf(err) != xerr.InvalidConfiguration {
		tst.Fatalf("expected InvalidConfiguration, got %s", xerr.KindOf(err))
	}
}

func Test_config_validate_requires_groupset(tst *testing.T) {
	chk.PrintTitle("config_validate_requires_groupset")
	o := &SweepConfig{}
	if err := o.Validate(); err == nil {
		tst.Fatal("expected validation error for missing groupsets")
	}
}

func Test_config_validate_rejects_bad_groupset_fields(tst *testing.T) {
	chk.PrintTitle("config_validate_rejects_bad_groupset_fields")
	o := &SweepConfig{Groupsets: []GroupsetData{{Name: "g0", NumGroups: 0, MaxOuterIts: 1}}}
	if err := o.Validate(); err == nil {
		tst.Fatal("expected validation error for numgroups < 1")
	}
	o = &SweepConfig{Groupsets: []GroupsetData{{Name: "g0", NumGroups: 1, MaxOuterIts: 0}}}
	if err := o.Validate(); err == nil {
		tst.Fatal("expected validation error for maxouterits < 1")
	}
}
