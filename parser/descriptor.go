package parser

import (
	"github.com/reeflective/decree/nargs"
)

// Arg is a raw capture handed to a descriptor: either a PositionalArg or
// an OptionArg. The set of implementations is fixed.
type Arg interface {
	arg()
}

// PositionalArg is a bare command-line token captured for a positional
// descriptor.
type PositionalArg struct {
	Value string
}

func (PositionalArg) arg() {}

// OptionArg is a capture attributed to a flag. Value is only meaningful
// when HasValue is set: "--level=" carries an empty value, while "--level"
// carries none at all.
type OptionArg struct {
	Flag     string
	Value    string
	HasValue bool
}

func (OptionArg) arg() {}

// Descriptor is the engine-facing side of a parameter. The engine never
// inspects parameter semantics beyond these two methods: the arity drives
// how many tokens are claimed, and the probe vetoes individual captures.
//
// Matches must be cheap, free of side effects, and must not panic: it is
// called on speculative captures that may be discarded when the search
// backtracks. Returning false abandons the current search branch only.
type Descriptor interface {
	// Arity returns how many values the descriptor consumes.
	Arity() nargs.NArgs

	// Matches reports whether the descriptor accepts the capture.
	Matches(arg Arg) bool
}

// Option is a descriptor addressed by flags. Flag strings include their
// dashes ("-v", "--verbose"); secondary flags are alternate spellings that
// select the same descriptor, such as negative forms.
type Option interface {
	Descriptor

	Flags() []string
	SecondaryFlags() []string
}

// Argument is a descriptor filled by position. Metavar is only used to
// word suggestions for leftover tokens.
type Argument interface {
	Descriptor

	Metavar() string
}
