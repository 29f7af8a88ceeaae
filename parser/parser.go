// Package parser matches raw command-line tokens against a set of
// parameter descriptors.
//
// The matcher is a backtracking search over immutable parse states. Flags
// and positionals with variadic arities make token ownership ambiguous
// ("--files a b c out": how many tokens belong to --files?), so whenever a
// repetition may legally stop, the search forks the current state and
// explores both alternatives. Greedy arities try to keep consuming first,
// lazy arities try to stop first. States share their token, frame and
// capture stacks structurally, which makes a fork a single struct copy.
//
// The engine performs no value conversion and no semantic validation: it
// only decides which tokens belong to which descriptor, records the
// captures, and reports what was left over. Callers convert and validate
// captured values afterwards.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/exp/maps"

	"github.com/reeflective/decree/nargs"
)

// Construction errors. The engine refuses descriptor sets it could not
// match deterministically against its flag tables.
var (
	// ErrDuplicateFlag indicates that two options registered the same flag.
	ErrDuplicateFlag = errors.New("duplicate flag")

	// ErrInvalidFlag indicates a flag string that is neither a valid short
	// flag ("-x") nor a valid long flag ("--name").
	ErrInvalidFlag = errors.New("invalid flag")

	// ErrInvalidArity indicates a descriptor arity with an invalid or
	// unsupported shape.
	ErrInvalidArity = errors.New("invalid arity")

	// ErrUnsupportedDescriptor indicates a descriptor that is neither an
	// Option nor an Argument.
	ErrUnsupportedDescriptor = errors.New("unsupported descriptor")
)

// errNoMatch abandons the current search thread. It never escapes Parse:
// the engine falls back to other pending threads, and ultimately to the
// best-ranked failed state.
var errNoMatch = errors.New("no match")

// unexpectedFlagError aborts the whole search when an unknown flag is hit.
// Unlike a local mismatch there is no alternative interpretation to try:
// no descriptor owns the flag in any branch.
type unexpectedFlagError struct {
	token string
}

func (e *unexpectedFlagError) Error() string {
	return fmt.Sprintf("unexpected flag: %s", e.token)
}

// Engine matches token lists against a fixed set of descriptors. Engines
// are immutable after construction and safe for concurrent use; every
// Parse call runs on fresh state.
type Engine struct {
	short       map[string]Option
	long        map[string]Option
	positionals []Argument
}

// New builds an engine from the given descriptors. Options are indexed by
// their flags, positionals are matched in the order they appear here.
// Duplicate flags, malformed flag strings, invalid arity shapes and
// unknown descriptor kinds are rejected.
func New(descriptors ...Descriptor) (*Engine, error) {
	eng := &Engine{
		short: make(map[string]Option),
		long:  make(map[string]Option),
	}

	for _, desc := range descriptors {
		if err := eng.add(desc); err != nil {
			return nil, err
		}
	}

	return eng, nil
}

func (e *Engine) add(desc Descriptor) error {
	if err := validateArity(desc.Arity()); err != nil {
		return err
	}

	switch d := desc.(type) {
	case Argument:
		e.positionals = append(e.positionals, d)

	case Option:
		for _, flag := range append(d.Flags(), d.SecondaryFlags()...) {
			if err := e.addFlag(flag, d); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedDescriptor, desc)
	}

	return nil
}

func (e *Engine) addFlag(flag string, opt Option) error {
	switch {
	case isShortFlag(flag):
		if _, ok := e.short[flag]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateFlag, flag)
		}

		e.short[flag] = opt

	case isLongFlag(flag):
		if _, ok := e.long[flag]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateFlag, flag)
		}

		e.long[flag] = opt

	default:
		return fmt.Errorf("%w: %s", ErrInvalidFlag, flag)
	}

	return nil
}

// validateArity checks the shape of an arity and that the engine knows how
// to drive it. Only the fixed and variadic implementations from the nargs
// package can be decremented by the search.
func validateArity(n nargs.NArgs) error {
	if err := nargs.Validate(n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArity, err)
	}

	switch v := n.(type) {
	case nargs.Fixed:
		return nil
	case nargs.Variadic:
		return validateArity(v.Inner)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidArity, n)
	}
}

// Parse matches the token list against the engine's descriptors and
// returns the captures of the winning thread, or of the best-ranked
// failed thread when no interpretation consumes everything.
//
// With interspersed set, positional tokens found between flags are set
// aside and replayed once flag parsing ends; otherwise the first
// positional token ends flag parsing on the spot. Parse never fails:
// unknown flags and unclaimed tokens are reported through the result.
// The search is exhaustive over arity alternatives, so callers expose it
// to untrusted input at their own pace.
func (e *Engine) Parse(args []string, interspersed bool) *Result {
	best := newState(args, e.positionals)
	threads := []*state{best}

	for len(threads) > 0 {
		st := threads[len(threads)-1]
		threads = threads[:len(threads)-1]

		err := e.parseThread(&threads, st, interspersed)
		if err == nil {
			return e.finish(st)
		}

		var unexpected *unexpectedFlagError
		if errors.As(err, &unexpected) {
			st.pushArg(unexpected.token)

			return e.finish(st)
		}

		if st.loss().less(best.loss()) {
			best = st
		}
	}

	return e.finish(best)
}

// parseThread drives one state until it either consumes everything it is
// entitled to (nil), hits a local mismatch (errNoMatch), or stumbles on a
// flag nobody owns (unexpectedFlagError). Fork alternatives are appended
// to threads along the way.
func (e *Engine) parseThread(threads *[]*state, st *state, interspersed bool) error {
	for {
		for {
			fr, ok := st.popFrame()
			if !ok {
				break
			}

			if err := e.parseFrame(threads, st, fr); err != nil {
				return err
			}
		}

		switch {
		case st.parseFlags:
			if err := e.parseToken(threads, st, interspersed); err != nil {
				return err
			}

		case st.positionals != nil:
			st.replayDeferred()
			e.parsePositional(threads, st)

		default:
			return nil
		}
	}
}

// pushFrame schedules a consumption obligation on the state, forking first
// when the arity allows zero repetitions. For greedy arities the fork
// parks the stop-now alternative and the current thread keeps the frame;
// for lazy arities the fork parks the keep-going alternative and the
// current thread drops the frame.
func (e *Engine) pushFrame(threads *[]*state, st *state, fr frame) {
	if fr.arity == nil {
		return
	}

	if v, ok := fr.arity.(nargs.Variadic); ok && v.Min == 0 {
		if v.Greedy {
			*threads = append(*threads, st.clone())
		} else {
			forked := st.clone()
			forked.pushFrame(fr)
			*threads = append(*threads, forked)

			return
		}
	}

	st.pushFrame(fr)
}

func (e *Engine) parseFrame(threads *[]*state, st *state, fr frame) error {
	switch n := fr.arity.(type) {
	case nargs.Fixed:
		return e.parseFixedFrame(threads, st, fr, n)
	case nargs.Variadic:
		return e.parseVariadicFrame(threads, st, fr, n)
	default:
		// Unreachable: arities are validated at construction.
		return errNoMatch
	}
}

// parseFixedFrame consumes one value, submits it to the descriptor's
// probe, records the capture and reschedules the decremented remainder.
func (e *Engine) parseFixedFrame(threads *[]*state, st *state, fr frame, n nargs.Fixed) error {
	arg, err := st.frameArg(fr, n)
	if err != nil {
		return err
	}

	if !fr.desc.Matches(arg) {
		return errNoMatch
	}

	st.captureArg(fr.desc, arg)

	e.pushFrame(threads, st, frame{desc: fr.desc, arity: n.Decrement(), flag: fr.flag})

	return nil
}

// parseVariadicFrame runs one unit of the repetition immediately, then
// reschedules the decremented repetition, which re-evaluates the fork
// rule for the next round.
func (e *Engine) parseVariadicFrame(threads *[]*state, st *state, fr frame, v nargs.Variadic) error {
	child := frame{desc: fr.desc, arity: v.Inner, flag: fr.flag}

	if err := e.parseFrame(threads, st, child); err != nil {
		return err
	}

	e.pushFrame(threads, st, frame{desc: fr.desc, arity: v.Decrement(), flag: fr.flag})

	return nil
}

// parseToken inspects the next raw token during flag parsing. Flags push
// frames, "--" turns flag parsing off for good, and positional-looking
// tokens are either deferred (interspersed mode) or end flag parsing.
func (e *Engine) parseToken(threads *[]*state, st *state, interspersed bool) error {
	tok, ok := st.popArg()
	if !ok {
		st.parseFlags = false

		return nil
	}

	if tok == "--" {
		st.parseFlags = false

		return nil
	}

	flag, value, hasValue := strings.Cut(tok, "=")

	switch {
	case isShortArg(flag):
		return e.parseShort(threads, st, tok, flag, value, hasValue)

	case isLongFlag(flag):
		return e.parseLong(threads, st, tok, flag, value, hasValue)

	case interspersed:
		st.deferArg(tok)

	default:
		st.parseFlags = false
		st.pushArg(tok)
	}

	return nil
}

// parseShort resolves a short token such as "-xvf" or "-n=3". Frames are
// pushed right to left so the leftmost flag is consumed first; only the
// last flag of a cluster may bind the inline value, and every other flag
// is barred from taking raw tokens of its own.
func (e *Engine) parseShort(threads *[]*state, st *state, token, flags, value string, hasValue bool) error {
	runes := []rune(flags[1:])

	for i := len(runes) - 1; i >= 0; i-- {
		short := "-" + string(runes[i])

		opt, ok := e.short[short]
		if !ok {
			return &unexpectedFlagError{token: token}
		}

		last := i == len(runes)-1

		fr := frame{desc: opt, arity: opt.Arity(), flag: short}
		if last && hasValue {
			fr.value = value
			fr.hasValue = true
		}

		fr.inlineOnly = !last || hasValue

		e.pushFrame(threads, st, fr)
	}

	return nil
}

func (e *Engine) parseLong(threads *[]*state, st *state, token, flag, value string, hasValue bool) error {
	opt, ok := e.long[flag]
	if !ok {
		return &unexpectedFlagError{token: token}
	}

	e.pushFrame(threads, st, frame{
		desc:       opt,
		arity:      opt.Arity(),
		flag:       flag,
		value:      value,
		hasValue:   hasValue,
		inlineOnly: hasValue,
	})

	return nil
}

func (e *Engine) parsePositional(threads *[]*state, st *state) {
	desc, ok := st.popPositional()
	if !ok {
		return
	}

	e.pushFrame(threads, st, frame{desc: desc, arity: desc.Arity()})
}

// finish materializes a search state into a Result. The offending token is
// remembered before deferred tokens are replayed: replay can put deferred
// tokens in front of the token that actually stopped the search.
func (e *Engine) finish(st *state) *Result {
	offending, found := st.args.peek()

	st.replayDeferred()

	if !found {
		offending, _ = st.args.peek()
	}

	captured, order := st.capturedArgs()

	next, _ := st.positionals.peek()

	return &Result{
		captured:  captured,
		order:     order,
		leftover:  st.args.slice(),
		offending: offending,
		next:      next,
	}
}

// Suggestions proposes corrections for the unexpected token of a result:
// close long-flag spellings for a mistyped long flag, the metavar of the
// next unsatisfied positional for a stray value, and nothing for unknown
// short flags, where guessing is hopeless.
func (e *Engine) Suggestions(res *Result) []string {
	tok, ok := res.Unexpected()
	if !ok {
		return nil
	}

	flag, _, _ := strings.Cut(tok, "=")

	if isShortFlag(flag) {
		return nil
	}

	if isLongFlag(flag) {
		return closeMatches(flag, maps.Keys(e.long))
	}

	if res.next != nil {
		return []string{res.next.Metavar()}
	}

	return nil
}

//
// Token classification ------------------------------------------------------- //
//

// isShortFlag reports whether arg is a dash followed by a single letter.
func isShortFlag(arg string) bool {
	runes := []rune(arg)

	return len(runes) == 2 && runes[0] == '-' && unicode.IsLetter(runes[1])
}

// isShortArg reports whether arg is a dash followed by one or more
// letters: a short flag or a cluster of them. "-1" and "-x1" are not
// flag-shaped and parse as positionals.
func isShortArg(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}

	for _, r := range arg[1:] {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// isLongFlag reports whether arg is a double dash followed by an
// identifier-like name, with hyphens and spaces treated as word
// separators. "--foo.bar", "--123" and "--" itself do not qualify.
func isLongFlag(arg string) bool {
	return strings.HasPrefix(arg, "--") && isIdentifier(toSnake(arg[2:]))
}

func toSnake(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}

		return r
	}, name)
}

func isIdentifier(name string) bool {
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}

		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	return name != ""
}
