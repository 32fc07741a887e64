// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package xerr holds the fatal-error taxonomy shared by every sweep-core
// package (spec §7). Kinds are not Go types; they are a tag attached to
// an error built with gosl/chk so a caller can still chk.Err/chk.Panic
// the way the rest of the tree does, while a collective abort handler
// can branch on Kind.
package xerr

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// Kind enumerates the fatal-error taxonomy of spec §7.
type Kind int

const (
	// BadGeometry marks a degenerate face normal or inconsistent orientation.
	BadGeometry Kind = iota
	// CycleWithoutPermission marks an SCC that remains non-trivial with allow_cycles=false.
	CycleWithoutPermission
	// PartitionPathology marks a rank unreachable in the global leveling.
	PartitionPathology
	// MpiFailure marks a non-blocking send/recv or collective failure.
	MpiFailure
	// InvalidConfiguration marks a mismatched groupset/quadrature/partition at validation time.
	InvalidConfiguration
)

// ExitCode returns the process exit code associated with a fatal Kind (spec §7:
// "abort with distinct exit codes per kind").
func (k Kind) ExitCode() int {
	return 10 + int(k)
}

func (k Kind) String() string {
	switch k {
	case BadGeometry:
		return "BadGeometry"
	case CycleWithoutPermission:
		return "CycleWithoutPermission"
	case PartitionPathology:
		return "PartitionPathology"
	case MpiFailure:
		return "MpiFailure"
	case InvalidConfiguration:
		return "InvalidConfiguration"
	}
	return "Unknown"
}

// Error is a Kind-tagged error; its Error() prefixes the message with the
// Kind in brackets, the same "[Kind] msg" shape Panic produces.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
}

// New builds a Kind-tagged error with a gosl-style formatted message.
func New(kind Kind, msg string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...)}
}

// KindOf extracts the Kind from err, defaulting to MpiFailure for unrecognized
// errors reaching a collective-abort boundary (conservative: treat the unknown
// as "fatal and probably distributed" rather than silently downgrading it).
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return MpiFailure
}

// Panic raises a Kind-tagged fatal error through gosl/chk.Panic, matching the
// teacher's fem.NewFEM/main.go style of panicking on unrecoverable setup errors.
func Panic(kind Kind, msg string, args ...interface{}) {
	chk.Panic("[%s] "+msg, append([]interface{}{kind}, args...)...)
}
