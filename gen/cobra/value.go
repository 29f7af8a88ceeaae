package cobra

import (
	"strings"

	cc "github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reeflective/decree"
	"github.com/reeflective/decree/nargs"
)

// mirrorValue is a pflag value that stores nothing. The bridge never
// lets cobra parse: the mirrored flags only teach routing and
// completion which tokens are flags and whether they consume a value.
type mirrorValue struct {
	typeName string
}

func (v *mirrorValue) String() string   { return "" }
func (v *mirrorValue) Set(string) error { return nil }
func (v *mirrorValue) Type() string     { return v.typeName }

// mirrorOptions declares every option of the command on the cobra side.
// The first long spelling carries the help text; every other spelling
// is declared hidden so listings show each option once.
func mirrorOptions(cmd *cc.Command, meta *decree.Command) {
	set := cmd.Flags()

	for _, param := range meta.Params() {
		if param.IsPositional() {
			continue
		}

		spellings := make([]string, 0, len(param.Flags())+len(param.SecondaryFlags()))
		spellings = append(spellings, param.Flags()...)
		spellings = append(spellings, param.SecondaryFlags()...)

		longs, shorts := splitSpellings(spellings)
		if len(longs) == 0 && len(shorts) == 0 {
			continue
		}

		value := &mirrorValue{typeName: param.Type().Name()}
		bare := isBare(param.Arity())

		name, shorthand := "", ""

		if len(longs) > 0 {
			name = longs[0]
			longs = longs[1:]
		} else {
			name = shorts[0]
		}

		if len(shorts) > 0 {
			shorthand = shorts[0]
			shorts = shorts[1:]
		}

		primary := declare(set, value, name, shorthand, param.Description(), bare)
		primary.Hidden = param.IsHidden()

		for _, long := range longs {
			declare(set, value, long, "", "", bare).Hidden = true
		}

		for _, short := range shorts {
			declare(set, value, short, short, "", bare).Hidden = true
		}
	}
}

func declare(set *pflag.FlagSet, value pflag.Value, name, shorthand, usage string, bare bool) *pflag.Flag {
	flag := set.VarPF(value, name, shorthand, usage)
	if bare {
		// Tokens after a bare flag are never its value: routing must
		// not swallow the next word, and completion must not wait for
		// one.
		flag.NoOptDefVal = "true"
	}

	return flag
}

// splitSpellings separates "--long" and "-s" spellings into the names
// pflag wants, dashes stripped.
func splitSpellings(spellings []string) (longs, shorts []string) {
	for _, spelling := range spellings {
		if name, ok := strings.CutPrefix(spelling, "--"); ok {
			longs = append(longs, name)

			continue
		}

		if name, ok := strings.CutPrefix(spelling, "-"); ok && name != "" {
			shorts = append(shorts, name)
		}
	}

	return longs, shorts
}

// isBare reports whether the arity consumes no value at all.
func isBare(arity nargs.NArgs) bool {
	min, max := bounds(arity)

	return min == 0 && max == 0
}

// bounds flattens an arity into the total number of values it may
// consume, Unbounded standing for no upper limit.
func bounds(arity nargs.NArgs) (min, max int) {
	switch a := arity.(type) {
	case nargs.Fixed:
		return a.N, a.N
	case nargs.Variadic:
		innerMin, innerMax := bounds(a.Inner)
		min = a.Min * innerMin

		if a.Max == nargs.Unbounded || innerMax == nargs.Unbounded {
			return min, nargs.Unbounded
		}

		return min, a.Max * innerMax
	default:
		return 0, nargs.Unbounded
	}
}
