// Package decree builds declarative command-line applications around a
// backtracking argument matcher.
//
// Commands declare their parameters either through the builder API
// (NewOption, NewArgument) or by binding a tagged struct, and the
// framework takes care of the rest: matching raw tokens against the
// declared arities, falling back to environment variables, layered
// configuration files and declared defaults, validating the results,
// and rendering help pages. The matcher itself lives in the parser
// subpackage and value conversion in the types subpackage; this package
// ties them together into commands, groups and a process entry point.
//
//	upload := &decree.Command{
//		Name: "upload",
//		Help: "Upload artifacts to the store.",
//		Run: func(ctx *decree.Context) error {
//			...
//		},
//	}
//	upload.AddParams(
//		decree.NewOption("tag", types.String(), []string{"--tag", "-t"}),
//		decree.NewArgument("files", types.NewPath(), decree.Required()),
//	)
//	decree.Main(upload)
package decree

import (
	"reflect"

	"github.com/reeflective/decree/internal/scan"
)

// Source identifies where a parameter value came from.
type Source uint

const (
	// SourceNone marks a parameter that resolved to nothing at all.
	SourceNone Source = iota

	// SourceCommandLine marks a value captured from the raw arguments.
	SourceCommandLine

	// SourceEnvironment marks a value read from an environment variable.
	SourceEnvironment

	// SourceConfig marks a value found in the layered configuration.
	SourceConfig

	// SourceDefault marks a declared default or default factory value.
	SourceDefault
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceCommandLine:
		return "command line"
	case SourceEnvironment:
		return "environment"
	case SourceConfig:
		return "config"
	case SourceDefault:
		return "default"
	default:
		return "none"
	}
}

// Value is a resolved parameter value together with its provenance.
type Value struct {
	Param  *Parameter
	Value  any
	Source Source
}

// Counter is a field type recognized by struct binding: the bound
// parameter counts flag occurrences instead of converting a value, so
// "-vvv" yields 3.
type Counter = scan.Counter

// Get returns the resolved value of a parameter, converted to T.
// Parameters that resolved to nothing, and values of a different type,
// return the zero value. List parameters convert element-wise, so
// Get[[]string] works on a list of strings even though the framework
// stores it as []any.
func Get[T any](ctx *Context, param *Parameter) T {
	var zero T

	value, ok := ctx.Value(param)
	if !ok || value.Value == nil {
		return zero
	}

	if typed, ok := value.Value.(T); ok {
		return typed
	}

	if converted, ok := convertValue(value.Value, reflect.TypeOf(zero)); ok {
		if typed, ok := converted.(T); ok {
			return typed
		}
	}

	return zero
}

// convertValue bridges the gap between the dynamic values the types
// package produces and the concrete types callers ask for: []any to
// []T, map[string]any to map[string]T, and assignable scalars.
func convertValue(value any, target reflect.Type) (any, bool) {
	if target == nil {
		return nil, false
	}

	source := reflect.ValueOf(value)

	switch target.Kind() {
	case reflect.Slice:
		if source.Kind() != reflect.Slice {
			return nil, false
		}

		out := reflect.MakeSlice(target, source.Len(), source.Len())

		for i := 0; i < source.Len(); i++ {
			item, ok := convertItem(source.Index(i), target.Elem())
			if !ok {
				return nil, false
			}

			out.Index(i).Set(item)
		}

		return out.Interface(), true

	case reflect.Map:
		if source.Kind() != reflect.Map {
			return nil, false
		}

		out := reflect.MakeMapWithSize(target, source.Len())

		iter := source.MapRange()
		for iter.Next() {
			key, ok := convertItem(iter.Key(), target.Key())
			if !ok {
				return nil, false
			}

			item, ok := convertItem(iter.Value(), target.Elem())
			if !ok {
				return nil, false
			}

			out.SetMapIndex(key, item)
		}

		return out.Interface(), true

	default:
		item, ok := convertItem(source, target)
		if !ok {
			return nil, false
		}

		return item.Interface(), true
	}
}

func convertItem(item reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if item.Kind() == reflect.Interface {
		item = item.Elem()
	}

	if !item.IsValid() {
		return reflect.Value{}, false
	}

	if item.Type().AssignableTo(target) {
		return item, true
	}

	if item.Type().ConvertibleTo(target) {
		// Numeric widening only: string <-> byte slice conversions and
		// friends would silently mangle values.
		if isNumeric(item.Kind()) && isNumeric(target.Kind()) {
			return item.Convert(target), true
		}
	}

	return reflect.Value{}, false
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
