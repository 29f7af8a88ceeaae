package parser

import (
	"github.com/reeflective/decree/nargs"
)

// frame is one pending consumption obligation: a descriptor that still has
// to claim values according to the remaining arity. Option frames remember
// the flag that created them; inlineOnly frames may not take raw tokens
// from the argument list, either because the flag already bound an inline
// value or because the flag sits before the end of a short-flag cluster.
type frame struct {
	desc       Descriptor
	arity      nargs.NArgs
	flag       string
	value      string
	hasValue   bool
	inlineOnly bool
}

type capture struct {
	desc Descriptor
	arg  Arg
}

// state is one thread of the backtracking search. All collections are
// persistent stacks, so clone is a plain struct copy and forked states
// share everything up to the point of divergence.
type state struct {
	args        *stack[string]
	positionals *stack[Argument]
	parseFlags  bool
	deferred    *stack[string]
	captured    *stack[capture]
	frames      *stack[frame]
}

func newState(args []string, positionals []Argument) *state {
	return &state{
		args:        stackOf(args),
		positionals: stackOf(positionals),
		parseFlags:  true,
	}
}

// clone forks the thread in O(1).
func (s *state) clone() *state {
	c := *s

	return &c
}

func (s *state) pushArg(arg string) {
	s.args = s.args.push(arg)
}

func (s *state) popArg() (string, bool) {
	arg, rest, ok := s.args.pop()
	s.args = rest

	return arg, ok
}

func (s *state) popPositional() (Argument, bool) {
	desc, rest, ok := s.positionals.pop()
	s.positionals = rest

	return desc, ok
}

func (s *state) deferArg(arg string) {
	s.deferred = s.deferred.push(arg)
}

// replayDeferred puts tokens set aside during interspersed flag parsing
// back at the front of the argument list, in their original order.
func (s *state) replayDeferred() {
	for s.deferred != nil {
		arg, rest, _ := s.deferred.pop()
		s.deferred = rest
		s.args = s.args.push(arg)
	}
}

func (s *state) pushFrame(fr frame) {
	s.frames = s.frames.push(fr)
}

func (s *state) popFrame() (frame, bool) {
	fr, rest, ok := s.frames.pop()
	s.frames = rest

	return fr, ok
}

func (s *state) captureArg(desc Descriptor, arg Arg) {
	s.captured = s.captured.push(capture{desc: desc, arg: arg})
}

// frameArg acquires the value for one fixed-arity consumption step. Option
// frames satisfy zero arities bare and unit arities from their inline
// value; everything else takes the next raw token, unless the frame is
// restricted to inline values only.
func (s *state) frameArg(fr frame, n nargs.Fixed) (Arg, error) {
	if fr.flag != "" {
		if n.N == 0 && !fr.hasValue {
			return OptionArg{Flag: fr.flag}, nil
		}

		if n.N == 1 && fr.hasValue {
			return OptionArg{Flag: fr.flag, Value: fr.value, HasValue: true}, nil
		}
	}

	if fr.inlineOnly {
		return nil, errNoMatch
	}

	value, ok := s.popArg()
	if !ok {
		return nil, errNoMatch
	}

	if fr.flag != "" {
		return OptionArg{Flag: fr.flag, Value: value, HasValue: true}, nil
	}

	return PositionalArg{Value: value}, nil
}

// capturedArgs groups the capture log by descriptor. Occurrences keep
// their consumption order within each group; the returned order slice
// lists descriptors by first capture.
func (s *state) capturedArgs() (map[Descriptor][]Arg, []Descriptor) {
	log := s.captured.slice() // newest first

	grouped := make(map[Descriptor][]Arg, len(log))
	order := make([]Descriptor, 0, len(log))

	for i := len(log) - 1; i >= 0; i-- {
		c := log[i]

		if _, seen := grouped[c.desc]; !seen {
			order = append(order, c.desc)
		}

		grouped[c.desc] = append(grouped[c.desc], c.arg)
	}

	return grouped, order
}

// loss ranks failed threads: fewer unsatisfied positionals win, then fewer
// unconsumed tokens. Deferred tokens are deliberately not counted.
type loss struct {
	positionals int
	args        int
}

func (l loss) less(other loss) bool {
	if l.positionals != other.positionals {
		return l.positionals < other.positionals
	}

	return l.args < other.args
}

func (s *state) loss() loss {
	return loss{positionals: s.positionals.len(), args: s.args.len()}
}
