// Package nargs describes how many values a command parameter consumes.
//
// An arity is either fixed (exactly N values) or variadic (an inner arity
// repeated between Min and Max times). Variadic arities carry a greediness
// bit that decides which alternative the argument matcher explores first
// when a repetition may legally stop: greedy arities try to keep consuming,
// lazy arities try to stop as soon as their minimum is satisfied.
package nargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unbounded marks a variadic arity with no upper repetition limit.
const Unbounded = -1

// NArgs is the arity of a parameter. Implementations are immutable value
// types: Decrement and AsOptional return new arities and never modify the
// receiver.
type NArgs interface {
	// Decrement returns the arity that remains after consuming one unit,
	// or nil when nothing more may be consumed.
	Decrement() NArgs

	// AsOptional loosens the arity so that zero occurrences are accepted.
	AsOptional() NArgs

	// FormatMetavar renders the metavar the number of times a usage line
	// should display it, e.g. "SRC SRC" for Fixed{2} or "(SRC)*" for
	// an unbounded repetition.
	FormatMetavar(metavar string) string

	fmt.Stringer
}

// Fixed consumes exactly N values.
type Fixed struct {
	N int
}

// Exactly returns a fixed arity of n values.
func Exactly(n int) Fixed { return Fixed{N: n} }

// Decrement returns Fixed{N-1}, or nil once a single value (or none)
// remains to consume.
func (f Fixed) Decrement() NArgs {
	if f.N <= 1 {
		return nil
	}

	return Fixed{N: f.N - 1}
}

// AsOptional wraps the arity so that the whole group may be omitted.
func (f Fixed) AsOptional() NArgs {
	return Variadic{Inner: f, Min: 0, Max: 1, Greedy: true}
}

// FormatMetavar repeats the metavar N times while the result stays short,
// and falls back to a counted form such as "FILE{12}" otherwise.
func (f Fixed) FormatMetavar(metavar string) string {
	if len(metavar) > 0 && f.N <= 16/len(metavar) {
		parts := make([]string, f.N)
		for i := range parts {
			parts[i] = metavar
		}

		return strings.Join(parts, " ")
	}

	return fmt.Sprintf("%s{%d}", metavar, f.N)
}

// String implements fmt.Stringer.
func (f Fixed) String() string { return fmt.Sprintf("{%d}", f.N) }

// Variadic repeats Inner between Min and Max times. Max may be Unbounded.
type Variadic struct {
	Inner  NArgs
	Min    int
	Max    int
	Greedy bool
}

// Optional accepts zero or one value (the "?" literal).
func Optional() Variadic {
	return Variadic{Inner: Fixed{N: 1}, Min: 0, Max: 1, Greedy: true}
}

// ZeroOrMore accepts any number of values (the "*" literal).
func ZeroOrMore() Variadic {
	return Variadic{Inner: Fixed{N: 1}, Min: 0, Max: Unbounded, Greedy: true}
}

// OneOrMore accepts at least one value (the "+" literal).
func OneOrMore() Variadic {
	return Variadic{Inner: Fixed{N: 1}, Min: 1, Max: Unbounded, Greedy: true}
}

// AtLeast accepts min or more values.
func AtLeast(min int) Variadic {
	return Variadic{Inner: Fixed{N: 1}, Min: min, Max: Unbounded, Greedy: true}
}

// Between accepts between min and max values.
func Between(min, max int) Variadic {
	return Variadic{Inner: Fixed{N: 1}, Min: min, Max: max, Greedy: true}
}

// Lazy returns the arity with its greediness flipped off, so the matcher
// prefers stopping over consuming. Non-variadic arities are returned
// unchanged: a fixed arity has no choice to make.
func Lazy(n NArgs) NArgs {
	if v, ok := n.(Variadic); ok {
		v.Greedy = false

		return v
	}

	return n
}

// Decrement returns the repetition that remains after one full unit has
// been consumed. Min decrements toward zero, a bounded Max decrements
// alongside, and an exhausted repetition (Max == 1) returns nil.
func (v Variadic) Decrement() NArgs {
	if v.Max == 1 {
		return nil
	}

	next := Variadic{Inner: v.Inner, Min: v.Min, Max: v.Max, Greedy: v.Greedy}
	if next.Min > 0 {
		next.Min--
	}

	if next.Max > 0 {
		next.Max--
	}

	return next
}

// AsOptional returns the arity itself when zero repetitions are already
// accepted, and wraps it in an optional group otherwise.
func (v Variadic) AsOptional() NArgs {
	if v.Min == 0 {
		return v
	}

	return Variadic{Inner: v, Min: 0, Max: 1, Greedy: true}
}

func (v Variadic) formatRange() string {
	if v.Min == v.Max {
		return fmt.Sprintf("{%d}", v.Min)
	}

	max := ""
	if v.Max != Unbounded {
		max = strconv.Itoa(v.Max)
	}

	lazy := ""
	if !v.Greedy {
		lazy = "?"
	}

	return fmt.Sprintf("{%d,%s}%s", v.Min, max, lazy)
}

func (v Variadic) formatModifier() string {
	lazy := ""
	if !v.Greedy {
		lazy = "?"
	}

	switch {
	case v.Min == 0 && v.Max == 1:
		return "?" + lazy
	case v.Min == 0 && v.Max == Unbounded:
		return "*" + lazy
	case v.Min == 1 && v.Max == Unbounded:
		return "+" + lazy
	default:
		return v.formatRange()
	}
}

// FormatMetavar renders the repeated metavar for usage lines, collapsing
// degenerate repetitions: zero-width inners and {0,0} ranges disappear,
// {1,1} ranges render as the inner alone, and single-metavar inners with
// an exact repetition count render like the equivalent fixed arity.
func (v Variadic) FormatMetavar(metavar string) string {
	result := v.Inner.FormatMetavar(metavar)
	if result == "" {
		return ""
	}

	if v.Min == 0 && v.Max == 0 {
		return ""
	}

	if v.Min == 1 && v.Max == 1 {
		return result
	}

	if result == metavar && v.Min == v.Max {
		return Fixed{N: v.Min}.FormatMetavar(metavar)
	}

	if result != metavar {
		result = "(" + result + ")"
	}

	return result + v.formatModifier()
}

// String implements fmt.Stringer.
func (v Variadic) String() string {
	result := v.Inner.String()
	if result == "{0}" {
		return "{0}"
	}

	if v.Min == 0 && v.Max == 0 {
		return "{0}"
	}

	if v.Min == 1 && v.Max == 1 {
		return result
	}

	if result == "{1}" {
		return v.formatRange()
	}

	return "(" + result + ")" + v.formatModifier()
}

// Parse converts an arity literal to an NArgs value. Literals are either
// a non-negative integer or one of "?", "*", "+" and their lazy forms
// "??", "*?", "+?".
func Parse(literal string) (NArgs, error) {
	if n, err := strconv.Atoi(literal); err == nil {
		if n < 0 {
			return nil, errors.New("nargs cannot be negative")
		}

		return Fixed{N: n}, nil
	}

	switch literal {
	case "?":
		return Optional(), nil
	case "*":
		return ZeroOrMore(), nil
	case "+":
		return OneOrMore(), nil
	case "??":
		return Lazy(Optional()), nil
	case "*?":
		return Lazy(ZeroOrMore()), nil
	case "+?":
		return Lazy(OneOrMore()), nil
	}

	return nil, fmt.Errorf("invalid nargs literal: %q", literal)
}

// Validate checks the shape of an arity: fixed counts may not be negative,
// repetition bounds may not cross, and inner arities must be present and
// valid themselves. Arities built by this package's constructors are
// always valid; Validate guards values assembled by hand.
func Validate(n NArgs) error {
	switch a := n.(type) {
	case nil:
		return errors.New("nargs is missing")
	case Fixed:
		if a.N < 0 {
			return errors.New("nargs cannot be negative")
		}
	case Variadic:
		if a.Min < 0 {
			return errors.New("min values cannot be negative")
		}

		if a.Max != Unbounded && a.Min > a.Max {
			return errors.New("min values cannot be greater than max values")
		}

		if a.Inner == nil {
			return errors.New("variadic nargs requires an inner arity")
		}

		return Validate(a.Inner)
	}

	return nil
}
