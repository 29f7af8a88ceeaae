package parser

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeflective/decree/nargs"
)

//
// Test descriptors ------------------------------------------------------------ //
//

// testOption is a minimal flag-addressed descriptor. A nil probe accepts
// everything, which is also how real options behave: once their flag is
// seen they are committed.
type testOption struct {
	arity     nargs.NArgs
	flags     []string
	secondary []string
	probe     func(Arg) bool
}

func (o *testOption) Arity() nargs.NArgs { return o.arity }

func (o *testOption) Matches(arg Arg) bool {
	if o.probe == nil {
		return true
	}

	return o.probe(arg)
}

func (o *testOption) Flags() []string          { return o.flags }
func (o *testOption) SecondaryFlags() []string { return o.secondary }

type testArgument struct {
	arity   nargs.NArgs
	metavar string
	probe   func(Arg) bool
}

func (a *testArgument) Arity() nargs.NArgs { return a.arity }

func (a *testArgument) Matches(arg Arg) bool {
	if a.probe == nil {
		return true
	}

	return a.probe(arg)
}

func (a *testArgument) Metavar() string { return a.metavar }

func flag0(flags ...string) *testOption {
	return &testOption{arity: nargs.Fixed{N: 0}, flags: flags}
}

func opt1(flags ...string) *testOption {
	return &testOption{arity: nargs.Fixed{N: 1}, flags: flags}
}

func arg(metavar string, arity nargs.NArgs) *testArgument {
	return &testArgument{arity: arity, metavar: metavar}
}

// intProbe accepts positional captures whose text parses as an integer.
func intProbe(a Arg) bool {
	pos, ok := a.(PositionalArg)
	if !ok {
		return false
	}

	_, err := strconv.Atoi(pos.Value)

	return err == nil
}

func mustEngine(t *testing.T, descriptors ...Descriptor) *Engine {
	t.Helper()

	eng, err := New(descriptors...)
	require.NoError(t, err)

	return eng
}

func values(args []Arg) []string {
	out := make([]string, 0, len(args))

	for _, a := range args {
		switch arg := a.(type) {
		case PositionalArg:
			out = append(out, arg.Value)
		case OptionArg:
			if arg.HasValue {
				out = append(out, arg.Value)
			} else {
				out = append(out, arg.Flag)
			}
		}
	}

	return out
}

//
// Construction ---------------------------------------------------------------- //
//

// TestConstruction checks the error classes raised while building an
// engine: duplicate flags, malformed flag strings, bad arity shapes and
// descriptors of no known role.
func TestConstruction(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	_, err := New(opt1("-a", "--alpha"), arg("X", nargs.Fixed{N: 1}))
	pt.NoError(err)

	_, err = New(opt1("-a"), flag0("-a"))
	pt.ErrorIs(err, ErrDuplicateFlag)

	_, err = New(opt1("--alpha"), flag0("--alpha"))
	pt.ErrorIs(err, ErrDuplicateFlag)

	_, err = New(opt1("alpha"))
	pt.ErrorIs(err, ErrInvalidFlag, "flags must carry their dashes")

	_, err = New(opt1("-ab"))
	pt.ErrorIs(err, ErrInvalidFlag, "short flags are single letters")

	_, err = New(opt1("--1st"))
	pt.ErrorIs(err, ErrInvalidFlag)

	_, err = New(arg("X", nargs.Variadic{Inner: nargs.Fixed{N: 1}, Min: 3, Max: 2}))
	pt.ErrorIs(err, ErrInvalidArity)

	_, err = New(arg("X", nil))
	pt.ErrorIs(err, ErrInvalidArity)

	_, err = New(struct{ Descriptor }{arg("X", nargs.Fixed{N: 1})})
	pt.ErrorIs(err, ErrUnsupportedDescriptor)
}

// TestSecondaryFlagsRoute checks that secondary flags select the same
// descriptor and that captures remember which spelling was used.
func TestSecondaryFlagsRoute(t *testing.T) {
	t.Parallel()

	color := &testOption{arity: nargs.Fixed{N: 0}, flags: []string{"--color"}, secondary: []string{"--no-color"}}
	eng := mustEngine(t, color)

	res := eng.Parse([]string{"--color", "--no-color"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())

	captured := res.Captured(color)
	require.Len(t, captured, 2)
	pt.Equal(OptionArg{Flag: "--color"}, captured[0])
	pt.Equal(OptionArg{Flag: "--no-color"}, captured[1])
}

//
// Flags, clusters and values --------------------------------------------------- //
//

// TestFixedParse is the deterministic base case: fixed arities everywhere,
// exactly one interpretation, no search.
func TestFixedParse(t *testing.T) {
	t.Parallel()

	output := opt1("-o", "--output")
	verbose := flag0("-v", "--verbose")
	src := arg("SRC", nargs.Fixed{N: 1})
	dst := arg("DST", nargs.Fixed{N: 1})

	eng := mustEngine(t, output, verbose, src, dst)
	res := eng.Parse([]string{"a", "-o", "out.txt", "-v", "b"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"out.txt"}, values(res.Captured(output)))
	pt.Equal([]string{"-v"}, values(res.Captured(verbose)))
	pt.Equal([]string{"a"}, values(res.Captured(src)))
	pt.Equal([]string{"b"}, values(res.Captured(dst)))
}

// TestShortClusterEquivalence checks that "-xyz next" parses exactly like
// "-x -y -z next" when x and y take no value and z takes one.
func TestShortClusterEquivalence(t *testing.T) {
	t.Parallel()

	x := flag0("-x")
	y := flag0("-y")
	z := opt1("-z")

	for _, args := range [][]string{
		{"-xyz", "next"},
		{"-x", "-y", "-z", "next"},
	} {
		eng := mustEngine(t, x, y, z)
		res := eng.Parse(args, true)

		pt := assert.New(t)
		pt.Empty(res.Leftover())
		pt.Equal([]string{"-x"}, values(res.Captured(x)))
		pt.Equal([]string{"-y"}, values(res.Captured(y)))
		pt.Equal([]string{"next"}, values(res.Captured(z)))
	}
}

// TestInlineValues checks "=" binding: to a long flag, to the last flag of
// a cluster, and the empty-but-present value of a trailing "=".
func TestInlineValues(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	level := opt1("--level", "-n")
	quiet := flag0("-q")

	eng := mustEngine(t, level, quiet)

	res := eng.Parse([]string{"--level=3"}, true)
	pt.Equal([]Arg{OptionArg{Flag: "--level", Value: "3", HasValue: true}}, res.Captured(level))

	res = eng.Parse([]string{"--level="}, true)
	pt.Equal([]Arg{OptionArg{Flag: "--level", Value: "", HasValue: true}}, res.Captured(level),
		"an explicit empty value is still a value")

	res = eng.Parse([]string{"-qn=3"}, true)
	pt.Equal([]Arg{OptionArg{Flag: "-q"}}, res.Captured(quiet))
	pt.Equal([]Arg{OptionArg{Flag: "-n", Value: "3", HasValue: true}}, res.Captured(level))
}

// TestClusterInnerFlagCannotConsume checks that a value-taking flag buried
// in a cluster may not claim the next raw token: only the final flag of a
// cluster may consume beyond the cluster itself.
func TestClusterInnerFlagCannotConsume(t *testing.T) {
	t.Parallel()

	a := opt1("-a")
	b := opt1("-b")

	eng := mustEngine(t, a, b)
	res := eng.Parse([]string{"-ab=v", "w"}, true)

	pt := assert.New(t)
	pt.Empty(res.Captured(a), "-a is not last in the cluster and has no inline value")
	pt.Empty(res.Captured(b))
	pt.Equal([]string{"w"}, res.Leftover())
}

// TestZeroArityRejectsInlineValue checks that "--flag=x" fails for a flag
// that consumes no value, without the flag being captured.
func TestZeroArityRejectsInlineValue(t *testing.T) {
	t.Parallel()

	verbose := flag0("--verbose")
	eng := mustEngine(t, verbose)

	res := eng.Parse([]string{"--verbose=x", "rest"}, true)

	pt := assert.New(t)
	pt.Empty(res.Captured(verbose))
	pt.Equal([]string{"rest"}, res.Leftover())
}

// TestRepeatedOptionAccumulates checks that repeated occurrences pile up
// in command-line order under a variadic repetition driven per occurrence.
func TestRepeatedOptionAccumulates(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v", "--verbose")
	tag := opt1("-t")

	eng := mustEngine(t, verbose, tag)
	res := eng.Parse([]string{"-v", "-t", "one", "--verbose", "-t", "two", "-vv"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"-v", "--verbose", "-v", "-v"}, values(res.Captured(verbose)))
	pt.Equal([]string{"one", "two"}, values(res.Captured(tag)))
}

// TestOptionConsumesFlagLookalike checks that a value-taking option claims
// the next token even when it looks like a flag: "--opt --" captures "--".
func TestOptionConsumesFlagLookalike(t *testing.T) {
	t.Parallel()

	opt := opt1("--opt")
	eng := mustEngine(t, opt)

	res := eng.Parse([]string{"--opt", "--"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]Arg{OptionArg{Flag: "--opt", Value: "--", HasValue: true}}, res.Captured(opt))
}

//
// Terminator, ordering modes, token shapes ------------------------------------- //
//

// TestDoubleDashTerminator checks that a bare "--" is consumed silently and
// turns flag parsing off for the rest of the line, for good.
func TestDoubleDashTerminator(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v")
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, verbose, rest)
	res := eng.Parse([]string{"-v", "--", "-v", "--not-a-flag", "x"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"-v"}, values(res.Captured(verbose)))
	pt.Equal([]string{"-v", "--not-a-flag", "x"}, values(res.Captured(rest)),
		"everything after -- is positional text")
}

// TestNonFlagShapes checks the token grammar boundary: numbers and mixed
// alphanumerics after a dash are positionals, not flags.
func TestNonFlagShapes(t *testing.T) {
	t.Parallel()

	x := flag0("-x")
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, x, rest)
	res := eng.Parse([]string{"-1", "-x1", "--foo.bar", "--", "--9"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Empty(res.Captured(x))
	pt.Equal([]string{"-1", "-x1", "--foo.bar", "--9"}, values(res.Captured(rest)))
}

// TestInterspersedDeferral checks that positional tokens between flags are
// set aside and replayed in original order once flags are done.
func TestInterspersedDeferral(t *testing.T) {
	t.Parallel()

	num := opt1("-n")
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, num, rest)
	res := eng.Parse([]string{"a", "-n", "1", "b", "c"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"1"}, values(res.Captured(num)))
	pt.Equal([]string{"a", "b", "c"}, values(res.Captured(rest)))
}

// TestNonInterspersedStopsAtFirstPositional checks that without
// interspersed parsing, the first positional token ends flag mode and
// later flag-shaped tokens are plain values.
func TestNonInterspersedStopsAtFirstPositional(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v")
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, verbose, rest)
	res := eng.Parse([]string{"-v", "sub", "-v", "x"}, false)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"-v"}, values(res.Captured(verbose)), "only the leading flag is parsed as a flag")
	pt.Equal([]string{"sub", "-v", "x"}, values(res.Captured(rest)))
}

//
// Backtracking ----------------------------------------------------------------- //
//

// TestGreedyLeavesRoomForFixedTail checks the canonical backtracking case:
// an unbounded greedy positional followed by a fixed one. The greedy
// repetition overshoots, fails downstream, and the search falls back to
// the alternative that reserves exactly one trailing token.
func TestGreedyLeavesRoomForFixedTail(t *testing.T) {
	t.Parallel()

	files := arg("FILE", nargs.ZeroOrMore())
	dest := arg("DEST", nargs.Fixed{N: 1})

	eng := mustEngine(t, files, dest)
	res := eng.Parse([]string{"a", "b", "c", "out"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"a", "b", "c"}, values(res.Captured(files)))
	pt.Equal([]string{"out"}, values(res.Captured(dest)))
}

// TestGreedyWinsWhenBothFit checks exploration order: with two unbounded
// repetitions in a row, the first (greedy) one takes everything.
func TestGreedyWinsWhenBothFit(t *testing.T) {
	t.Parallel()

	first := arg("A", nargs.ZeroOrMore())
	second := arg("B", nargs.ZeroOrMore())

	eng := mustEngine(t, first, second)
	res := eng.Parse([]string{"a", "b"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"a", "b"}, values(res.Captured(first)))
	pt.Empty(res.Captured(second))
}

// TestLazyTakesMinimum checks that a lazy repetition stops as soon as its
// minimum is satisfied, leaving the rest to whoever comes next.
func TestLazyTakesMinimum(t *testing.T) {
	t.Parallel()

	few := arg("FEW", nargs.Lazy(nargs.OneOrMore()))
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, few, rest)
	res := eng.Parse([]string{"a", "b", "c"}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"a"}, values(res.Captured(few)))
	pt.Equal([]string{"b", "c"}, values(res.Captured(rest)))
}

// TestProbeRedirectsCapture checks that a probe rejection is not fatal:
// the search reroutes the token to the next candidate. An optional
// integer-only positional passes on text it cannot accept.
func TestProbeRedirectsCapture(t *testing.T) {
	t.Parallel()

	count := &testArgument{arity: nargs.Optional(), metavar: "COUNT", probe: intProbe}
	name := arg("NAME", nargs.Fixed{N: 1})

	eng := mustEngine(t, count, name)

	res := eng.Parse([]string{"7", "hello"}, true)
	pt := assert.New(t)
	pt.Equal([]string{"7"}, values(res.Captured(count)))
	pt.Equal([]string{"hello"}, values(res.Captured(name)))

	res = eng.Parse([]string{"hello"}, true)
	pt.Empty(res.Captured(count), "the probe rejects non-numeric text, so the optional slot stays empty")
	pt.Equal([]string{"hello"}, values(res.Captured(name)))
	pt.Empty(res.Leftover())
}

// TestVariadicOfPairs checks repetitions whose unit is itself a fixed
// group: tokens are claimed two at a time, and an odd token is left over
// rather than split across a unit.
func TestVariadicOfPairs(t *testing.T) {
	t.Parallel()

	pairs := arg("KV", nargs.Variadic{Inner: nargs.Fixed{N: 2}, Min: 0, Max: nargs.Unbounded, Greedy: true})

	eng := mustEngine(t, pairs)

	res := eng.Parse([]string{"k1", "v1", "k2", "v2"}, true)
	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"k1", "v1", "k2", "v2"}, values(res.Captured(pairs)))

	res = eng.Parse([]string{"k1", "v1", "k2"}, true)
	pt.Equal([]string{"k1", "v1"}, values(res.Captured(pairs)))
	pt.Equal([]string{"k2"}, res.Leftover(), "a half pair rolls back to the previous full unit")
}

// TestOptionalWrappedPlus checks the arity produced by loosening a
// one-or-more repetition: all or nothing.
func TestOptionalWrappedPlus(t *testing.T) {
	t.Parallel()

	items := arg("ITEM", nargs.OneOrMore().AsOptional())

	eng := mustEngine(t, items)

	res := eng.Parse(nil, true)
	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Empty(res.Captured(items))

	res = eng.Parse([]string{"a", "b"}, true)
	pt.Empty(res.Leftover())
	pt.Equal([]string{"a", "b"}, values(res.Captured(items)))
}

// TestAllOptionalEmptyInput checks that a grammar of only zero-minimum
// descriptors accepts an empty command line with no captures.
func TestAllOptionalEmptyInput(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v")
	items := arg("ITEM", nargs.ZeroOrMore())

	eng := mustEngine(t, verbose, items)
	res := eng.Parse([]string{}, true)

	pt := assert.New(t)
	pt.Empty(res.Leftover())
	pt.Empty(res.Captured(verbose))
	pt.Empty(res.Captured(items))
	pt.Nil(res.NextArgument(), "the optional positional was still considered")
}

//
// Leftovers, unknown flags, suggestions ----------------------------------------- //
//

// TestUnknownLongFlagStopsSearch checks that an unknown flag ends the
// search immediately, keeps the captures made so far, and reports the
// offending token with everything after it left over.
func TestUnknownLongFlagStopsSearch(t *testing.T) {
	t.Parallel()

	color := opt1("--color")
	eng := mustEngine(t, color)

	res := eng.Parse([]string{"--color", "red", "--colour", "blue"}, true)

	pt := assert.New(t)
	pt.Equal([]string{"red"}, values(res.Captured(color)))
	pt.Equal([]string{"--colour", "blue"}, res.Leftover())

	tok, ok := res.Unexpected()
	require.True(t, ok)
	pt.Equal("--colour", tok)
	pt.Equal([]string{"--color"}, eng.Suggestions(res))
}

// TestUnexpectedBehindDeferred checks that the offending token is reported
// correctly even when replayed deferred tokens precede it in the leftover
// list.
func TestUnexpectedBehindDeferred(t *testing.T) {
	t.Parallel()

	color := opt1("--color")
	eng := mustEngine(t, color)

	res := eng.Parse([]string{"pos", "--colour"}, true)

	pt := assert.New(t)
	pt.Equal([]string{"pos", "--colour"}, res.Leftover())

	tok, ok := res.Unexpected()
	require.True(t, ok)
	pt.Equal("--colour", tok, "the deferred positional is replayed in front, but the flag is what stopped us")
}

// TestSuggestionsForShortFlag checks that unknown single-letter flags get
// no suggestions.
func TestSuggestionsForShortFlag(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v")
	eng := mustEngine(t, verbose)

	res := eng.Parse([]string{"-w"}, true)

	_, ok := res.Unexpected()
	require.True(t, ok)
	assert.Empty(t, eng.Suggestions(res))
}

// TestSuggestionsMetavar checks that a stray value with positional slots
// still unsatisfied suggests the next positional's metavar.
func TestSuggestionsMetavar(t *testing.T) {
	t.Parallel()

	first := &testArgument{arity: nargs.Fixed{N: 1}, metavar: "NUM", probe: intProbe}
	second := &testArgument{arity: nargs.Fixed{N: 1}, metavar: "DEST", probe: intProbe}

	eng := mustEngine(t, first, second)
	res := eng.Parse([]string{"abc", "def"}, true)

	pt := assert.New(t)
	pt.Equal([]string{"def"}, res.Leftover())
	pt.Same(second, res.NextArgument())
	pt.Equal([]string{"DEST"}, eng.Suggestions(res))
}

// TestLossRanking checks that among failed interpretations, the one that
// satisfied more positionals and consumed more tokens is reported.
func TestLossRanking(t *testing.T) {
	t.Parallel()

	count := &testArgument{arity: nargs.Optional(), metavar: "COUNT", probe: intProbe}
	num := &testArgument{arity: nargs.Fixed{N: 1}, metavar: "NUM", probe: intProbe}

	eng := mustEngine(t, count, num)
	res := eng.Parse([]string{"x"}, true)

	pt := assert.New(t)
	pt.Empty(res.Captured(count))
	pt.Empty(res.Captured(num))
	pt.Empty(res.Leftover(), "the token was consumed by the attempt that got furthest")
	pt.Nil(res.NextArgument())
}

//
// Engine behavior -------------------------------------------------------------- //
//

// TestEngineReuse checks that an engine can parse repeatedly and
// concurrently: all search state lives in the per-call threads.
func TestEngineReuse(t *testing.T) {
	t.Parallel()

	tag := opt1("-t")
	eng := mustEngine(t, tag)

	done := make(chan struct{})

	go func() {
		defer close(done)

		res := eng.Parse([]string{"-t", "from-goroutine"}, true)
		assert.Equal(t, []string{"from-goroutine"}, values(res.Captured(tag)))
	}()

	res := eng.Parse([]string{"-t", "from-main"}, true)
	assert.Equal(t, []string{"from-main"}, values(res.Captured(tag)))

	<-done
}

// TestCapturedOrder checks Result.Descriptors: first-capture order, with
// descriptors that captured nothing absent.
func TestCapturedOrder(t *testing.T) {
	t.Parallel()

	verbose := flag0("-v")
	tag := opt1("-t")
	unused := flag0("-u")
	rest := arg("REST", nargs.ZeroOrMore())

	eng := mustEngine(t, verbose, tag, unused, rest)
	res := eng.Parse([]string{"a", "-t", "x", "-v"}, true)

	assert.Equal(t, []Descriptor{tag, verbose, rest}, res.Descriptors(),
		"positional captures happen after flag parsing ends")
}
