package types

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

//
// Choices ---------------------------------------------------------------------- //
//

// TestChoices checks set membership validation and display.
func TestChoices(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	format := Choices(String(), "json", "text")

	pt.Equal("json|text", format.Metavar())
	pt.NoError(format.Validate("json"))
	pt.EqualError(format.Validate("xml"), "xml is not one of json, text")

	enum, ok := format.(Enumerated)
	pt.True(ok, "choice sets drive completion")
	pt.Equal([]string{"json", "text"}, enum.Enum())
}

//
// Range ------------------------------------------------------------------------ //
//

// TestRange checks bound validation and clamping.
func TestRange(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	level := Range(Int(), 1, 10)
	pt.Equal("1<=int<=10", level.Name())

	pt.NoError(level.Validate(5))
	pt.EqualError(level.Validate(0), "0 is smaller than the minimum value of 1")
	pt.EqualError(level.Validate(11), "11 is greater than the maximum value of 10")

	value, _, err := level.Process([]parser.Arg{pos("42")})
	rq.NoError(err)
	pt.Equal(42, value, "without clamping values pass through for Validate")

	clamped := level.Clamp()

	value, _, err = clamped.Process([]parser.Arg{pos("42")})
	rq.NoError(err)
	pt.Equal(10, value)

	value, err = clamped.ParseEnv("0")
	rq.NoError(err)
	pt.Equal(1, value)

	value, err = clamped.ParseConfig(int64(99))
	rq.NoError(err)
	pt.Equal(10, value)
}

//
// Length ----------------------------------------------------------------------- //
//

// TestLength checks length validation and arity narrowing.
func TestLength(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	files := Length(NewList(String()).WithArity(nargs.ZeroOrMore()), 2, 3)
	pt.Equal(nargs.Between(2, 3), files.Arity(),
		"a variadic arity narrows to the length bounds")

	open := Length(NewList(String()).WithArity(nargs.OneOrMore()), 2, nargs.Unbounded)
	pt.Equal(nargs.AtLeast(2), open.Arity())

	word := Length(String(), 2, nargs.Unbounded)
	pt.Equal(nargs.Exactly(1), word.Arity(), "fixed arities stay untouched")

	pt.NoError(files.Validate([]any{"a", "b"}))
	pt.Error(files.Validate([]any{"a"}))
	pt.Error(files.Validate([]any{"a", "b", "c", "d"}))

	pt.NoError(word.Validate("ab"))
	pt.Error(word.Validate("a"), "string lengths count too")
}

//
// Lazy ------------------------------------------------------------------------- //
//

// TestLazyType checks that the variadic arity flips to lazy.
func TestLazyType(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	lazy := Lazy(NewList(String()).WithArity(nargs.OneOrMore()))

	arity, ok := lazy.Arity().(nargs.Variadic)
	pt.True(ok)
	pt.False(arity.Greedy)

	pt.Equal(nargs.Exactly(1), Lazy(String()).Arity(), "fixed arities stay untouched")
}

//
// WithValidator ---------------------------------------------------------------- //
//

// TestWithValidator checks the extra validation hook.
func TestWithValidator(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	even := WithValidator(Int(), func(value any) error {
		if value.(int)%2 != 0 {
			return fmt.Errorf("%v is not even", value)
		}

		return nil
	})

	pt.NoError(even.Validate(2))
	pt.EqualError(even.Validate(3), "3 is not even")
	pt.Error(even.Validate("x"), "the inner validation still runs first")
}

//
// FromPflag -------------------------------------------------------------------- //
//

// countValue is a pflag style boolean value, as written for the spf13
// ecosystem.
type countValue int

func (c *countValue) Set(val string) error {
	if val == "" || val == "true" {
		*c++
		return nil
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return err
	}

	*c = countValue(parsed)

	return nil
}

func (c *countValue) String() string   { return strconv.Itoa(int(*c)) }
func (c *countValue) Type() string     { return "count" }
func (c *countValue) IsBoolFlag() bool { return true }
func (c *countValue) Get() any         { return int(*c) }

// TestFromPflag checks the bridge around real pflag values.
func TestFromPflag(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("level", 0, "")

	bridge := FromPflag(flags.Lookup("level").Value)
	pt.Equal("int", bridge.Name())
	pt.Equal(nargs.Exactly(1), bridge.Arity())
	pt.True(bridge.Matches(optArg("--level", "3")))
	pt.False(bridge.Matches(bare("--level")))

	value, ok, err := bridge.Process([]parser.Arg{optArg("--level", "3")})
	rq.NoError(err)
	rq.True(ok)
	pt.Equal("3", value, "values without a getter read back as strings")

	level, err := flags.GetInt("level")
	rq.NoError(err)
	pt.Equal(3, level, "the bridge writes through to the flag set")

	_, _, err = bridge.Process([]parser.Arg{optArg("--level", "x")})
	pt.Error(err)
}

// TestFromPflagBool checks boolean style pflag values.
func TestFromPflagBool(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	count := countValue(0)
	bridge := FromPflag(&count)

	pt.Equal(nargs.Exactly(0), bridge.Arity())
	pt.True(bridge.Matches(bare("-v")))
	pt.False(bridge.Matches(optArg("-v", "2")))

	value, ok, err := bridge.Process([]parser.Arg{bare("-v"), bare("-v")})
	rq.NoError(err)
	rq.True(ok)
	pt.Equal(2, value, "each occurrence feeds Set")
}
