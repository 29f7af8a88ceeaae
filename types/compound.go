package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// List accumulates one value per capture into a slice. The element
// type drives probing and conversion; an absent parameter produces an
// empty slice.
type List struct {
	item  Type
	arity nargs.NArgs
}

// NewList returns a list of item values.
func NewList(item Type) List {
	return List{item: item}
}

// WithArity overrides how many raw values the list consumes. The
// default is the element's own arity, one element per occurrence.
func (l List) WithArity(arity nargs.NArgs) List {
	l.arity = arity
	return l
}

// Name implements the Type interface.
func (l List) Name() string { return l.item.Name() }

// Arity implements the Type interface.
func (l List) Arity() nargs.NArgs {
	if l.arity != nil {
		return l.arity
	}

	return l.item.Arity()
}

// HasDefault reports true: an absent list produces an empty slice.
func (l List) HasDefault() bool { return true }

// Metavar implements the Type interface.
func (l List) Metavar() string { return l.item.Metavar() }

// ParseFlags delegates to the element type, so lists of flags keep
// their negative spellings.
func (l List) ParseFlags(flags []string) ([]string, []string, error) {
	return l.item.ParseFlags(flags)
}

// Format implements the Type interface.
func (l List) Format(value any) string {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return fmt.Sprint(value)
	}

	items := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = l.item.Format(rv.Index(i).Interface())
	}

	return "[" + strings.Join(items, ", ") + "]"
}

// Matches delegates to the element type.
func (l List) Matches(arg parser.Arg) bool { return l.item.Matches(arg) }

// Process converts each capture with the element type.
func (l List) Process(args []parser.Arg) (any, bool, error) {
	values := make([]any, 0, len(args))

	for _, arg := range args {
		value, ok, err := l.item.Process([]parser.Arg{arg})
		if err != nil {
			return nil, false, err
		}

		if !ok {
			continue
		}

		values = append(values, value)
	}

	return values, true, nil
}

// ParseEnv splits a comma separated value and converts each item.
func (l List) ParseEnv(value string) (any, error) {
	items, err := splitList(value)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(items))

	for _, item := range items {
		converted, err := l.item.ParseEnv(item)
		if err != nil {
			return nil, err
		}

		values = append(values, converted)
	}

	return values, nil
}

// ParseConfig converts the items of configuration lists; other shapes
// pass through unchanged.
func (l List) ParseConfig(value any) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return value, nil
	}

	values := make([]any, 0, len(items))

	for _, item := range items {
		converted, err := l.item.ParseConfig(item)
		if err != nil {
			return nil, err
		}

		values = append(values, converted)
	}

	return values, nil
}

// Validate checks every element.
func (l List) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("expected list value")
	}

	for i := 0; i < rv.Len(); i++ {
		if err := l.item.Validate(rv.Index(i).Interface()); err != nil {
			return err
		}
	}

	return nil
}

// Map collects key=value captures into a map. Keys stay strings; the
// key type vets them and the value type converts the right hand side.
// An absent parameter produces an empty map.
type Map struct {
	key, value Type
	arity      nargs.NArgs
}

// NewMap returns a map of string keys to value type values. It panics
// when the value type consumes anything but exactly one raw value.
func NewMap(value Type) Map {
	mustTakeOne(value)
	return Map{key: String(), value: value}
}

// WithKey sets the type used to vet keys. It panics when the key type
// consumes anything but exactly one raw value.
func (m Map) WithKey(key Type) Map {
	mustTakeOne(key)
	m.key = key

	return m
}

// WithArity overrides how many raw values the map consumes. The
// default is one pair per occurrence.
func (m Map) WithArity(arity nargs.NArgs) Map {
	m.arity = arity
	return m
}

func mustTakeOne(t Type) {
	if t.Arity() != nargs.Exactly(1) {
		panic("map key and value types must consume exactly one value")
	}
}

// Name implements the Type interface.
func (m Map) Name() string { return m.Metavar() }

// Arity implements the Type interface.
func (m Map) Arity() nargs.NArgs {
	if m.arity != nil {
		return m.arity
	}

	return nargs.Exactly(1)
}

// HasDefault reports true: an absent map produces an empty map.
func (m Map) HasDefault() bool { return true }

// Metavar renders as KEY=VALUE from the underlying metavars or names.
func (m Map) Metavar() string {
	key := m.key.Metavar()
	if key == "" {
		key = m.key.Name()
	}

	value := m.value.Metavar()
	if value == "" {
		value = m.value.Name()
	}

	return key + "=" + value
}

// ParseFlags delegates to the value type.
func (m Map) ParseFlags(flags []string) ([]string, []string, error) {
	return m.value.ParseFlags(flags)
}

// Format implements the Type interface.
func (m Map) Format(value any) string {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return fmt.Sprint(value)
	}

	items := make([]string, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		items = append(items, fmt.Sprintf("%v=%s",
			iter.Key().Interface(), m.value.Format(iter.Value().Interface())))
	}

	sort.Strings(items)

	return strings.Join(items, ", ")
}

// splitPair splits a key=value capture in two, preserving the capture
// kind so the key and value types can probe their halves.
func (m Map) splitPair(arg parser.Arg) (key, value parser.Arg, ok bool) {
	raw, ok := argValue(arg)
	if !ok {
		return nil, nil, false
	}

	left, right, found := strings.Cut(raw, "=")
	if !found {
		return nil, nil, false
	}

	switch capture := arg.(type) {
	case parser.OptionArg:
		return parser.OptionArg{Flag: capture.Flag, Value: left, HasValue: true},
			parser.OptionArg{Flag: capture.Flag, Value: right, HasValue: true}, true
	case parser.PositionalArg:
		return parser.PositionalArg{Value: left},
			parser.PositionalArg{Value: right}, true
	}

	return nil, nil, false
}

// Matches requires a key=value shape whose halves satisfy the key and
// value types.
func (m Map) Matches(arg parser.Arg) bool {
	key, value, ok := m.splitPair(arg)
	if !ok {
		return false
	}

	return m.key.Matches(key) && m.value.Matches(value)
}

// Process builds the map, the last value winning for repeated keys.
func (m Map) Process(args []parser.Arg) (any, bool, error) {
	values := make(map[string]any, len(args))

	for _, arg := range args {
		key, value, ok := m.splitPair(arg)
		if !ok {
			raw, _ := argValue(arg)
			return nil, false, fmt.Errorf("expected %s, got %q", m.Metavar(), raw)
		}

		if _, _, err := m.key.Process([]parser.Arg{key}); err != nil {
			return nil, false, err
		}

		converted, produced, err := m.value.Process([]parser.Arg{value})
		if err != nil {
			return nil, false, err
		}

		if !produced {
			continue
		}

		raw, _ := argValue(key)
		values[raw] = converted
	}

	return values, true, nil
}

// ParseEnv splits a comma separated value into key=value pairs and
// converts each one.
func (m Map) ParseEnv(value string) (any, error) {
	items, err := splitList(value)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(items))

	for _, item := range items {
		left, right, found := strings.Cut(item, "=")
		if !found {
			return nil, fmt.Errorf("expected key=value, got %q", item)
		}

		if _, err := m.key.ParseEnv(left); err != nil {
			return nil, err
		}

		converted, err := m.value.ParseEnv(right)
		if err != nil {
			return nil, err
		}

		values[left] = converted
	}

	return values, nil
}

// ParseConfig converts the values of configuration mappings; other
// shapes pass through unchanged.
func (m Map) ParseConfig(value any) (any, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}

	values := make(map[string]any, len(entries))

	for key, entry := range entries {
		converted, err := m.value.ParseConfig(entry)
		if err != nil {
			return nil, err
		}

		values[key] = converted
	}

	return values, nil
}

// Validate checks every value in the map.
func (m Map) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("expected map value")
	}

	iter := rv.MapRange()
	for iter.Next() {
		if err := m.value.Validate(iter.Value().Interface()); err != nil {
			return err
		}
	}

	return nil
}
