package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// Flag is a boolean toggle consuming no value. Long spellings
// automatically gain a negative "--no-" form, and a "--color/--colour"
// style pair declares the negative spelling explicitly. The value is
// true when a positive spelling appears and false for a negative one.
type Flag struct {
	on, off     []string
	noNegatives bool
	overwrite   bool
}

// NewFlag returns a toggle type for options.
func NewFlag() *Flag { return &Flag{} }

// NoNegatives disables the automatic "--no-" spellings.
func (f *Flag) NoNegatives() *Flag {
	f.noNegatives = true
	return f
}

// Overwritable keeps the last occurrence when the flag is repeated or
// contradicted, instead of rejecting the repeat.
func (f *Flag) Overwritable() *Flag {
	f.overwrite = true
	return f
}

// Name implements the Type interface.
func (f *Flag) Name() string { return "flag" }

// Arity reports that flags consume no value.
func (f *Flag) Arity() nargs.NArgs { return nargs.Exactly(0) }

// HasDefault implements the Type interface.
func (f *Flag) HasDefault() bool { return false }

// Metavar implements the Type interface.
func (f *Flag) Metavar() string { return "" }

// ParseFlags splits "on/off" pairs into the positive and negative
// spelling sets, and derives a "--no-" form for every long spelling
// without an explicit negative.
func (f *Flag) ParseFlags(flags []string) ([]string, []string, error) {
	for _, spelling := range flags {
		on, off, explicit := strings.Cut(spelling, "/")
		if on != "" {
			f.on = append(f.on, on)
		}

		switch {
		case explicit && off != "":
			f.off = append(f.off, off)
		case !f.noNegatives && strings.HasPrefix(on, "--"):
			f.off = append(f.off, "--no-"+strings.TrimPrefix(on, "--"))
		}
	}

	for _, off := range f.off {
		if contains(f.on, off) {
			return nil, nil, fmt.Errorf("flag %s is both a positive and a negative spelling", off)
		}
	}

	return f.on, f.off, nil
}

// Format shows the spelling that selects the value, falling back to
// true/false when the flag has no spelling for it.
func (f *Flag) Format(value any) string {
	on, _ := value.(bool)

	if on && len(f.on) > 0 {
		return f.on[0]
	}

	if !on && len(f.off) > 0 {
		return f.off[0]
	}

	return strconv.FormatBool(on)
}

// Matches accepts option captures without an inline value whose flag
// is one of the known spellings.
func (f *Flag) Matches(arg parser.Arg) bool {
	capture, ok := arg.(parser.OptionArg)
	if !ok || capture.HasValue {
		return false
	}

	return contains(f.on, capture.Flag) || contains(f.off, capture.Flag)
}

// Process resolves the value from the spelling that was used.
func (f *Flag) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}

	if len(args) > 1 && !f.overwrite {
		return nil, false, ErrAlreadySet
	}

	capture, ok := args[len(args)-1].(parser.OptionArg)
	if !ok || capture.HasValue {
		return nil, false, fmt.Errorf("flag: expected no value")
	}

	switch {
	case contains(f.on, capture.Flag):
		return true, true, nil
	case contains(f.off, capture.Flag):
		return false, true, nil
	}

	return nil, false, fmt.Errorf("unexpected flag %s", capture.Flag)
}

// ParseEnv accepts the Bool spellings.
func (f *Flag) ParseEnv(value string) (any, error) {
	parsed, err := parseBool(value)
	if err != nil {
		return nil, err
	}

	return parsed, nil
}

// ParseConfig parses strings with the Bool spellings and passes
// booleans through.
func (f *Flag) ParseConfig(value any) (any, error) {
	if str, ok := value.(string); ok {
		parsed, err := parseBool(str)
		if err != nil {
			return nil, err
		}

		return parsed, nil
	}

	return value, nil
}

// Validate implements the Type interface.
func (f *Flag) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool value")
	}

	return nil
}

// Counter counts occurrences: each appearance of the flag increments
// the value, and an absent flag still produces zero.
type Counter struct{}

// NewCounter returns a counting type, for options such as -vvv.
func NewCounter() Counter { return Counter{} }

// Name implements the Type interface.
func (Counter) Name() string { return "count" }

// Arity reports that counters consume no value.
func (Counter) Arity() nargs.NArgs { return nargs.Exactly(0) }

// HasDefault reports true: an absent counter still counts zero.
func (Counter) HasDefault() bool { return true }

// Metavar implements the Type interface.
func (Counter) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (Counter) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format implements the Type interface.
func (Counter) Format(value any) string { return fmt.Sprint(value) }

// Matches accepts captures without an inline value.
func (Counter) Matches(arg parser.Arg) bool {
	_, ok := argValue(arg)
	return !ok
}

// Process counts the occurrences.
func (Counter) Process(args []parser.Arg) (any, bool, error) {
	return len(args), true, nil
}

// ParseEnv parses the count itself.
func (Counter) ParseEnv(value string) (any, error) {
	count, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid count", value)
	}

	return count, nil
}

// ParseConfig implements the Type interface.
func (Counter) ParseConfig(value any) (any, error) {
	if count, ok := intFromConfig(value); ok {
		return count, nil
	}

	return value, nil
}

// Validate implements the Type interface.
func (Counter) Validate(value any) error {
	if _, ok := value.(int); !ok {
		return fmt.Errorf("expected count value")
	}

	return nil
}

// Help requests the help screen: processing any occurrence returns
// ErrHelp, which the framework turns into usage output instead of an
// error.
type Help struct{}

// NewHelp returns the type behind automatic --help flags.
func NewHelp() Help { return Help{} }

// Name implements the Type interface.
func (Help) Name() string { return "help" }

// Arity reports that help flags consume no value.
func (Help) Arity() nargs.NArgs { return nargs.Exactly(0) }

// HasDefault implements the Type interface.
func (Help) HasDefault() bool { return false }

// Metavar implements the Type interface.
func (Help) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (Help) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format implements the Type interface.
func (Help) Format(value any) string { return fmt.Sprint(value) }

// Matches accepts captures without an inline value.
func (Help) Matches(arg parser.Arg) bool {
	_, ok := argValue(arg)
	return !ok
}

// Process raises the help signal when the flag appeared.
func (Help) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}

	return nil, false, ErrHelp
}

// ParseEnv raises the help signal.
func (Help) ParseEnv(string) (any, error) { return nil, ErrHelp }

// ParseConfig implements the Type interface.
func (Help) ParseConfig(value any) (any, error) { return value, nil }

// Validate raises the help signal: a help parameter never holds a
// value to check.
func (Help) Validate(any) error { return ErrHelp }

// contains reports whether the spelling set holds the flag.
func contains(set []string, flag string) bool {
	for _, spelling := range set {
		if spelling == flag {
			return true
		}
	}

	return false
}
