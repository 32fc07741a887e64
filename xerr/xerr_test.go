// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xerr

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_xerr_exit_codes_distinct(tst *testing.T) {
	chk.PrintTitle("xerr_exit_codes_distinct")
	kinds := []Kind{BadGeometry, CycleWithoutPermission, PartitionPathology, MpiFailure, InvalidConfiguration}
	seen := map[int]Kind{}
	for _, k := range kinds {
		code := k.ExitCode()
		if code < 10 {
			tst.Fatalf("exit code %d for %s is below the reserved base 10", code, k)
		}
		if other, ok := seen[code]; ok {
			tst.Fatalf("exit code %d shared by %s and %s", code, k, other)
		}
		seen[code] = k
	}
}

func Test_xerr_new_roundtrips_kind(tst *testing.T) {
	chk.PrintTitle("xerr_new_roundtrips_kind")
	err := New(BadGeometry, "face %d has a degenerate normal", 3)
	if KindOf(err) != BadGeometry {
		tst.Fatalf("expected BadGeometry, got %s", KindOf(err))
	}
	if err.Error() == "" {
		tst.Fatal("expected non-empty error message")
	}
}

func Test_xerr_kind_of_unknown_defaults_mpi_failure(tst *testing.T) {
	chk.PrintTitle("xerr_kind_of_unknown_defaults_mpi_failure")
	plain := errorString("boom")
	if KindOf(plain) != MpiFailure {
		tst.Fatalf("expected MpiFailure default, got %s", KindOf(plain))
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
