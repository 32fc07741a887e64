// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fluds

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sweep/quad"
	"github.com/cpmech/gofem-sweep/spds"
)

// Test_fluds_instance_encode_decode_roundtrip checks that an Instance's
// buffers survive a gob-backed utl.Encoder/Decoder round trip byte-for-byte,
// the same contract ele/solid's Rjoint.Encode/Decode relies on for restart
// files.
func Test_fluds_instance_encode_decode_roundtrip(tst *testing.T) {
	chk.PrintTitle("fluds_instance_encode_decode_roundtrip")
	gv := chainGrid(4)
	dir := quad.Slab1D().Directions[0]
	s, err := spds.Build(gv, dir, spds.Options{AllowCycles: false})
	if err != nil {
		tst.Fatalf("unexpected spds error: %v", err)
	}
	t := BuildTemplate(gv, s, nil)
	in := NewInstance(t, 2, 1)
	for i := range in.Local {
		in.Local[i] = float64(i) + 0.5
	}

	var buf bytes.Buffer
	if err := in.Encode(gob.NewEncoder(&buf)); err != nil {
		tst.Fatalf("encode failed: %v", err)
	}

	out := &Instance{}
	if err := out.Decode(gob.NewDecoder(&buf)); err != nil {
		tst.Fatalf("decode failed: %v", err)
	}

	if out.Groups != in.Groups || out.Angles != in.Angles {
		tst.Fatalf("groups/angles mismatch: got (%d,%d), want (%d,%d)", out.Groups, out.Angles, in.Groups, in.Angles)
	}
	if len(out.Local) != len(in.Local) {
		tst.Fatalf("local buffer length mismatch: got %d, want %d", len(out.Local), len(in.Local))
	}
	for i := range in.Local {
		if out.Local[i] != in.Local[i] {
			tst.Fatalf("local[%d]: got %v, want %v", i, out.Local[i], in.Local[i])
		}
	}
}
