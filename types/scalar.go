package types

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// Scalar is the shared core of single value types: one raw token,
// converted by a parse function. The builtin scalars are all instances
// of it, and NewScalar builds custom ones.
type Scalar[T any] struct {
	name       string
	parse      func(string) (T, error)
	fromConfig func(any) (T, bool)
	single     bool
}

// NewScalar builds a scalar type from a parse function. Errors from
// the function are shown to the user as they are, so they should be
// worded accordingly. Repeated occurrences keep the last value unless
// Once is applied.
func NewScalar[T any](name string, parse func(string) (T, error)) Scalar[T] {
	return Scalar[T]{name: name, parse: parse}
}

// newBuiltin wraps the raw parser so conversion failures read the same
// for every builtin scalar instead of leaking library errors.
func newBuiltin[T any](name string, parse func(string) (T, error)) Scalar[T] {
	return NewScalar(name, func(value string) (T, error) {
		parsed, err := parse(value)
		if err != nil {
			return parsed, fmt.Errorf("%q is not a valid %s", value, name)
		}

		return parsed, nil
	})
}

// Once returns a copy of the type that rejects repeated occurrences
// instead of keeping the last value.
func (s Scalar[T]) Once() Scalar[T] {
	s.single = true
	return s
}

// Overwritable returns a copy of the type that keeps the last of
// repeated occurrences. Only useful on scalars that default to Once
// behavior, such as Bool.
func (s Scalar[T]) Overwritable() Scalar[T] {
	s.single = false
	return s
}

// Name implements the Type interface.
func (s Scalar[T]) Name() string { return s.name }

// Arity reports that scalars consume exactly one value.
func (s Scalar[T]) Arity() nargs.NArgs { return nargs.Exactly(1) }

// HasDefault implements the Type interface.
func (s Scalar[T]) HasDefault() bool { return false }

// Metavar implements the Type interface.
func (s Scalar[T]) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (s Scalar[T]) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format implements the Type interface.
func (s Scalar[T]) Format(value any) string { return fmt.Sprint(value) }

// Matches reports whether the capture carries a value the parse
// function accepts.
func (s Scalar[T]) Matches(arg parser.Arg) bool {
	value, ok := argValue(arg)
	if !ok {
		return false
	}

	_, err := s.parse(value)

	return err == nil
}

// Process converts the last capture, or rejects repeats when the type
// was made Once.
func (s Scalar[T]) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}

	if len(args) > 1 && s.single {
		return nil, false, ErrAlreadySet
	}

	value, ok := argValue(args[len(args)-1])
	if !ok {
		return nil, false, fmt.Errorf("%s: expected a value", s.name)
	}

	parsed, err := s.parse(value)
	if err != nil {
		return nil, false, err
	}

	return parsed, true, nil
}

// ParseEnv implements the Type interface.
func (s Scalar[T]) ParseEnv(value string) (any, error) {
	parsed, err := s.parse(value)
	if err != nil {
		return nil, err
	}

	return parsed, nil
}

// ParseConfig converts strings with the parse function and coerces
// numbers produced by the configuration decoders. Anything else passes
// through unchanged for Validate to judge.
func (s Scalar[T]) ParseConfig(value any) (any, error) {
	if str, ok := value.(string); ok {
		parsed, err := s.parse(str)
		if err != nil {
			return nil, err
		}

		return parsed, nil
	}

	if v, ok := value.(T); ok {
		return v, nil
	}

	if s.fromConfig != nil {
		if v, ok := s.fromConfig(value); ok {
			return v, nil
		}
	}

	return value, nil
}

// Validate implements the Type interface.
func (s Scalar[T]) Validate(value any) error {
	if _, ok := value.(T); !ok {
		return fmt.Errorf("expected %s value", s.name)
	}

	return nil
}

// String is a scalar accepting any token as it is.
func String() Scalar[string] {
	return NewScalar("string", func(value string) (string, error) {
		return value, nil
	})
}

// Int parses decimal integers.
func Int() Scalar[int] {
	s := newBuiltin("int", strconv.Atoi)
	s.fromConfig = intFromConfig

	return s
}

// Float parses floating point numbers.
func Float() Scalar[float64] {
	s := newBuiltin("float", func(value string) (float64, error) {
		return strconv.ParseFloat(value, 64)
	})
	s.fromConfig = floatFromConfig

	return s
}

// Bool accepts the usual boolean spellings, case insensitively:
// 1/true/t/yes/y/on and 0/false/f/no/n/off. Repeats are rejected
// unless Overwritable is applied.
func Bool() Scalar[bool] {
	return NewScalar("bool", parseBool).Once()
}

// Duration parses Go duration literals such as "90s" or "1h30m".
func Duration() Scalar[time.Duration] {
	return newBuiltin("duration", time.ParseDuration)
}

// URL parses absolute URLs, requiring a scheme.
func URL() Scalar[*url.URL] {
	return NewScalar("url", func(value string) (*url.URL, error) {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" {
			return nil, fmt.Errorf("%q is not a valid url", value)
		}

		return parsed, nil
	})
}

// UUID parses RFC 4122 identifiers.
func UUID() Scalar[uuid.UUID] {
	return newBuiltin("uuid", uuid.Parse)
}

// Version parses semantic versions, tolerating partial ones such as
// "1.2".
func Version() Scalar[*semver.Version] {
	return newBuiltin("version", semver.NewVersion)
}

var (
	trueWords  = []string{"1", "true", "t", "yes", "y", "on"}
	falseWords = []string{"0", "false", "f", "no", "n", "off"}
)

func parseBool(value string) (bool, error) {
	word := strings.ToLower(value)

	for _, accepted := range trueWords {
		if word == accepted {
			return true, nil
		}
	}

	for _, accepted := range falseWords {
		if word == accepted {
			return false, nil
		}
	}

	return false, fmt.Errorf("%q is not a valid bool (try true/false)", value)
}

// intFromConfig accepts the integer shapes configuration decoders
// produce, as long as the conversion is lossless.
func intFromConfig(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		if int64(int(v)) == v {
			return int(v), true
		}
	case uint64:
		if v <= math.MaxInt {
			return int(v), true
		}
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt && v <= math.MaxInt {
			return int(v), true
		}
	}

	return 0, false
}

func floatFromConfig(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	}

	return 0, false
}
