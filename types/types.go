// Package types implements the value layer of the framework: every
// option and argument carries a Type that probes raw captures during
// parsing, converts the committed captures into Go values, and
// validates the result no matter whether it came from the command
// line, an environment variable, or a configuration file.
package types

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// ErrHelp is returned by the Help type when its flag is present. The
// framework turns it into a help screen instead of a parameter error.
var ErrHelp = errors.New("help requested")

// ErrAlreadySet reports a repeated parameter whose type keeps a single
// value and does not allow overwriting it.
var ErrAlreadySet = errors.New("parameter already set")

// Type converts raw captures into final values. A type is consulted
// three ways: Matches vets speculative captures while the command line
// is being parsed, Process turns the committed captures into a value,
// and ParseEnv/ParseConfig convert values sourced outside the command
// line. Validate runs on the final value regardless of its source.
type Type interface {
	// Name is the short name used in conversion error messages.
	Name() string

	// Arity reports how many raw values one occurrence consumes.
	Arity() nargs.NArgs

	// HasDefault reports whether Process produces a value from zero
	// captures, such as a counter at zero or an empty list.
	HasDefault() bool

	// Metavar is the value placeholder shown in usage text, or ""
	// to derive one from the parameter name.
	Metavar() string

	// ParseFlags expands the declared flag spellings into the
	// primary set and the secondary (negative) set.
	ParseFlags(flags []string) (primary, secondary []string, err error)

	// Format renders a value for help and error text.
	Format(value any) string

	// Matches reports whether a speculative capture could belong to
	// this type. It must be cheap and free of side effects.
	Matches(arg parser.Arg) bool

	// Process converts the captures into the final value, reporting
	// false when no value was produced.
	Process(args []parser.Arg) (any, bool, error)

	// ParseEnv converts an environment variable.
	ParseEnv(value string) (any, error)

	// ParseConfig converts a raw configuration value. Values a type
	// cannot improve are returned unchanged for Validate to judge.
	ParseConfig(value any) (any, error)

	// Validate checks a final value, wherever it came from.
	Validate(value any) error
}

// Enumerated is implemented by types whose legal values form a fixed
// set; shell completion offers the set instead of plain file names.
type Enumerated interface {
	Enum() []string
}

// ResourceType is implemented by types whose processed values hold
// open resources. The framework registers the returned function on the
// invocation context so the resource is released when the run ends; a
// nil function means there is nothing to release.
type ResourceType interface {
	Cleanup(value any) func() error
}

// argValue extracts the raw string carried by a capture. Option
// captures that consumed no value report false.
func argValue(arg parser.Arg) (string, bool) {
	switch capture := arg.(type) {
	case parser.PositionalArg:
		return capture.Value, true
	case parser.OptionArg:
		return capture.Value, capture.HasValue
	}

	return "", false
}

// splitList breaks a comma separated environment value into items,
// honoring double quotes around items that contain commas themselves.
func splitList(value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(value))
	reader.TrimLeadingSpace = true

	items, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}

	return items, nil
}

// Compile checks that every implementation satisfies the contract.
var (
	_ Type = Scalar[string]{}
	_ Type = (*Flag)(nil)
	_ Type = Counter{}
	_ Type = Help{}
	_ Type = List{}
	_ Type = Map{}
	_ Type = Path{}
	_ Type = File{}
	_ Type = choices[string]{}
	_ Type = Bounded[int]{}
	_ Type = measured{}
	_ Type = lazyType{}
	_ Type = validated{}
	_ Type = pflagType{}

	_ ResourceType = File{}
	_ Enumerated   = choices[string]{}
)
