package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeflective/decree/parser"
)

//
// Test captures ---------------------------------------------------------------- //
//

func pos(value string) parser.Arg {
	return parser.PositionalArg{Value: value}
}

func optArg(flag, value string) parser.Arg {
	return parser.OptionArg{Flag: flag, Value: value, HasValue: true}
}

func bare(flag string) parser.Arg {
	return parser.OptionArg{Flag: flag}
}

//
// Scalars ---------------------------------------------------------------------- //
//

// TestScalarMatches checks that the probe requires a capture value the
// parse function accepts.
func TestScalarMatches(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	number := Int()

	pt.True(number.Matches(pos("42")), "parsable positional should match")
	pt.True(number.Matches(optArg("--n", "7")), "parsable inline value should match")
	pt.False(number.Matches(pos("x")), "unparsable value should not match")
	pt.False(number.Matches(bare("--n")), "captures without a value should not match")
}

// TestScalarProcess checks last-wins processing and the Once variant.
func TestScalarProcess(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	word := String()

	_, ok, err := word.Process(nil)
	pt.NoError(err)
	pt.False(ok, "no captures should produce no value")

	value, ok, err := word.Process([]parser.Arg{pos("a"), optArg("--w", "b")})
	pt.NoError(err)
	pt.True(ok)
	pt.Equal("b", value, "the last capture should win")

	_, _, err = word.Once().Process([]parser.Arg{pos("a"), pos("b")})
	pt.ErrorIs(err, ErrAlreadySet)

	_, _, err = word.Process([]parser.Arg{bare("--w")})
	pt.Error(err, "a capture without a value cannot be converted")
}

// TestBoolWords checks the accepted boolean spellings.
func TestBoolWords(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	boolean := Bool()

	for _, word := range []string{"1", "true", "T", "Yes", "y", "ON"} {
		value, ok, err := boolean.Process([]parser.Arg{pos(word)})
		pt.NoError(err, word)
		pt.True(ok)
		pt.Equal(true, value, word)
	}

	for _, word := range []string{"0", "false", "F", "No", "n", "OFF"} {
		value, _, err := boolean.Process([]parser.Arg{pos(word)})
		pt.NoError(err, word)
		pt.Equal(false, value, word)
	}

	_, _, err := boolean.Process([]parser.Arg{pos("maybe")})
	pt.EqualError(err, `"maybe" is not a valid bool (try true/false)`)

	_, _, err = boolean.Process([]parser.Arg{pos("1"), pos("0")})
	pt.ErrorIs(err, ErrAlreadySet, "bools reject repeats by default")

	value, _, err := boolean.Overwritable().Process([]parser.Arg{pos("1"), pos("0")})
	pt.NoError(err)
	pt.Equal(false, value, "overwritable bools keep the last capture")
}

// TestBuiltinScalars checks the conversion of each builtin scalar.
func TestBuiltinScalars(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	value, ok, err := Duration().Process([]parser.Arg{pos("1h30m")})
	rq.NoError(err)
	rq.True(ok)
	pt.Equal(90*time.Minute, value)

	_, _, err = Duration().Process([]parser.Arg{pos("fast")})
	pt.EqualError(err, `"fast" is not a valid duration`)

	value, _, err = Float().Process([]parser.Arg{pos("2.5")})
	rq.NoError(err)
	pt.Equal(2.5, value)

	value, _, err = URL().Process([]parser.Arg{pos("https://example.com/x")})
	rq.NoError(err)
	pt.Equal("https://example.com/x", URL().Format(value))

	_, _, err = URL().Process([]parser.Arg{pos("example.com/x")})
	pt.Error(err, "urls without a scheme should be rejected")

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	value, _, err = UUID().Process([]parser.Arg{pos(id.String())})
	rq.NoError(err)
	pt.Equal(id, value)

	_, _, err = UUID().Process([]parser.Arg{pos("not-an-id")})
	pt.EqualError(err, `"not-an-id" is not a valid uuid`)

	version, _, err := Version().Process([]parser.Arg{pos("1.2")})
	rq.NoError(err)
	pt.Equal("1.2.0", Version().Format(version), "partial versions should be completed")

	_, _, err = Version().Process([]parser.Arg{pos("one.two")})
	pt.Error(err)
}

// TestScalarEnv checks environment variable conversion.
func TestScalarEnv(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	value, err := Int().ParseEnv("8")
	pt.NoError(err)
	pt.Equal(8, value)

	_, err = Int().ParseEnv("x")
	pt.EqualError(err, `"x" is not a valid int`)
}

// TestScalarConfig checks the conversion of decoded configuration
// values, including the numeric shapes the decoders produce.
func TestScalarConfig(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	number := Int()

	value, err := number.ParseConfig("8")
	pt.NoError(err)
	pt.Equal(8, value, "strings should be parsed")

	value, err = number.ParseConfig(int64(9))
	pt.NoError(err)
	pt.Equal(9, value, "decoder integers should be converted")

	value, err = number.ParseConfig(float64(4))
	pt.NoError(err)
	pt.Equal(4, value, "whole floats should be converted")

	value, err = number.ParseConfig(3.5)
	pt.NoError(err)
	pt.Equal(3.5, value, "lossy values pass through for Validate to reject")
	pt.Error(number.Validate(value))

	value, err = Float().ParseConfig(int64(3))
	pt.NoError(err)
	pt.Equal(3.0, value)

	_, err = number.ParseConfig("x")
	pt.Error(err, "unparsable strings should fail")
}

// TestScalarValidate checks the final type assertion.
func TestScalarValidate(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)

	pt.NoError(Int().Validate(3))
	pt.EqualError(Int().Validate("3"), "expected int value")
}
