package scan

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/reeflective/decree/parser"
	"github.com/reeflective/decree/types"
)

// Counter marks an integer field that counts flag occurrences instead
// of converting a value, so "-vvv" resolves to 3.
type Counter int

var (
	typeType     = reflect.TypeOf((*types.Type)(nil)).Elem()
	pflagType    = reflect.TypeOf((*pflag.Value)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
	urlType      = reflect.TypeOf(url.URL{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	versionType  = reflect.TypeOf(semver.Version{})
	counterType  = reflect.TypeOf(Counter(0))
)

// buildFieldType fills a scanned field's Type, Set and Metavar from
// the Go field type and the tags that shape it: nargs overrides
// collection arities, choice restricts values, sep splits single
// captures, negatable controls the automatic --no-X spellings.
func buildFieldType(parsed *Field, value reflect.Value, field reflect.StructField, tags tag) error {
	// Self-storing fields first: a field that is itself a parameter
	// type, or any pflag value, needs no write-back.
	if value.CanAddr() {
		addr := value.Addr()

		if addr.Type().Implements(typeType) {
			parsed.Type = addr.Interface().(types.Type)

			return applyAdapters(parsed, tags)
		}

		if addr.Type().Implements(pflagType) {
			parsed.Type = types.FromPflag(addr.Interface().(pflag.Value))

			return applyAdapters(parsed, tags)
		}
	}

	typ, err := valueType(value.Type(), field, tags)
	if err != nil {
		return err
	}

	parsed.Type = typ
	parsed.Set = setter(value)

	return applyAdapters(parsed, tags)
}

// valueType maps a Go type to its parameter type. Named types beat
// kinds: a time.Duration is an int64 underneath but parses "1h30m".
func valueType(goType reflect.Type, field reflect.StructField, tags tag) (types.Type, error) {
	switch goType {
	case durationType:
		return types.Duration(), nil
	case uuidType:
		return types.UUID(), nil
	case counterType:
		return types.NewCounter(), nil
	case urlType, reflect.PointerTo(urlType):
		return types.URL(), nil
	case versionType, reflect.PointerTo(versionType):
		return types.Version(), nil
	}

	switch goType.Kind() {
	case reflect.Pointer:
		return valueType(goType.Elem(), field, tags)

	case reflect.Bool:
		flag := types.NewFlag()
		if _, ok := tags.get("negatable"); ok && !tags.isTrue("negatable") {
			flag = flag.NoNegatives()
		}

		return flag, nil

	case reflect.String:
		return types.String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.Int(), nil

	case reflect.Float32, reflect.Float64:
		return types.Float(), nil

	case reflect.Slice:
		item, err := valueType(goType.Elem(), field, tags)
		if err != nil {
			return nil, err
		}

		return types.NewList(item), nil

	case reflect.Map:
		if goType.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("field %s: map keys must be strings", field.Name)
		}

		item, err := valueType(goType.Elem(), field, tags)
		if err != nil {
			return nil, err
		}

		return types.NewMap(item), nil

	default:
		return nil, fmt.Errorf("field %s: unsupported type %s", field.Name, goType)
	}
}

// applyAdapters wraps the base type according to the shaping tags.
func applyAdapters(parsed *Field, tags tag) error {
	collection := false
	switch parsed.Type.(type) {
	case types.List, types.Map:
		collection = true
	}

	arity, err := fieldArity(parsed, collection, tags)
	if err != nil {
		return err
	}

	if arity != nil {
		switch typed := parsed.Type.(type) {
		case types.List:
			parsed.Type = typed.WithArity(arity)
		case types.Map:
			parsed.Type = typed.WithArity(arity)
		default:
			return fmt.Errorf("parameter %s: nargs applies to slice and map fields only", parsed.Name)
		}
	}

	if sep, ok := tags.get("sep"); ok && sep != "" {
		if _, isList := parsed.Type.(types.List); !isList {
			return fmt.Errorf("parameter %s: sep applies to slice fields only", parsed.Name)
		}

		parsed.Type = splitType{Type: parsed.Type, sep: sep}
	}

	if choices := tags.getAll("choice"); len(choices) > 0 {
		parsed.Type = types.Choices(parsed.Type, choices...)
	}

	return nil
}

// splitType splits each raw capture on a separator before handing the
// pieces to the underlying list, so "--ports 80,443" fills two items.
type splitType struct {
	types.Type
	sep string
}

func (s splitType) Matches(arg parser.Arg) bool {
	expanded, ok := s.expand(arg)
	if !ok {
		return false
	}

	for _, piece := range expanded {
		if !s.Type.Matches(piece) {
			return false
		}
	}

	return true
}

func (s splitType) Process(args []parser.Arg) (any, bool, error) {
	var expanded []parser.Arg

	for _, arg := range args {
		pieces, ok := s.expand(arg)
		if !ok {
			return nil, false, fmt.Errorf("%s: expected a value", s.Type.Name())
		}

		expanded = append(expanded, pieces...)
	}

	return s.Type.Process(expanded)
}

func (s splitType) expand(arg parser.Arg) ([]parser.Arg, bool) {
	var raw string

	switch capture := arg.(type) {
	case parser.PositionalArg:
		raw = capture.Value
	case parser.OptionArg:
		if !capture.HasValue {
			return nil, false
		}

		raw = capture.Value
	default:
		return nil, false
	}

	pieces := strings.Split(raw, s.sep)

	expanded := make([]parser.Arg, len(pieces))
	for i, piece := range pieces {
		switch capture := arg.(type) {
		case parser.OptionArg:
			expanded[i] = parser.OptionArg{Flag: capture.Flag, Value: piece, HasValue: true}
		default:
			expanded[i] = parser.PositionalArg{Value: piece}
		}
	}

	return expanded, true
}

//
// Write-back ------------------------------------------------------------------ //
//

// setter returns the closure writing a resolved value into the field.
// Collections produced as []any and map[string]any convert element by
// element; numeric values widen or narrow to the field's kind.
func setter(field reflect.Value) func(any) error {
	return func(value any) error {
		if value == nil {
			return nil
		}

		converted, ok := convert(reflect.ValueOf(value), field.Type())
		if !ok {
			return fmt.Errorf("cannot store %T into %s", value, field.Type())
		}

		field.Set(converted)

		return nil
	}
}

func convert(value reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if value.Kind() == reflect.Interface {
		value = value.Elem()
	}

	if !value.IsValid() {
		return reflect.Value{}, false
	}

	if value.Type().AssignableTo(target) {
		return value, true
	}

	switch target.Kind() {
	case reflect.Pointer:
		elem, ok := convert(value, target.Elem())
		if !ok {
			return reflect.Value{}, false
		}

		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(elem)

		return ptr, true

	case reflect.Slice:
		if value.Kind() != reflect.Slice {
			return reflect.Value{}, false
		}

		out := reflect.MakeSlice(target, value.Len(), value.Len())

		for i := 0; i < value.Len(); i++ {
			item, ok := convert(value.Index(i), target.Elem())
			if !ok {
				return reflect.Value{}, false
			}

			out.Index(i).Set(item)
		}

		return out, true

	case reflect.Map:
		if value.Kind() != reflect.Map {
			return reflect.Value{}, false
		}

		out := reflect.MakeMapWithSize(target, value.Len())

		iter := value.MapRange()
		for iter.Next() {
			key, ok := convert(iter.Key(), target.Key())
			if !ok {
				return reflect.Value{}, false
			}

			item, ok := convert(iter.Value(), target.Elem())
			if !ok {
				return reflect.Value{}, false
			}

			out.SetMapIndex(key, item)
		}

		return out, true

	default:
		// Dereference produced pointers (URL, Version) for fields
		// declared by value.
		if value.Kind() == reflect.Pointer && !value.IsNil() {
			return convert(value.Elem(), target)
		}

		if value.Type().ConvertibleTo(target) && numericKind(value.Kind()) && numericKind(target.Kind()) {
			return value.Convert(target), true
		}

		return reflect.Value{}, false
	}
}

func numericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
