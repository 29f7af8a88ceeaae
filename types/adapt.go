package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/exp/constraints"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// choices restricts an inner type to a fixed set of values.
type choices[T comparable] struct {
	Type
	allowed []T
}

// Choices restricts the type to the given values, rejecting anything
// else at validation time. Usage text shows the set as "a|b|c", and
// shell completion offers it.
func Choices[T comparable](t Type, allowed ...T) Type {
	return choices[T]{Type: t, allowed: allowed}
}

func (c choices[T]) names() []string {
	names := make([]string, len(c.allowed))
	for i, choice := range c.allowed {
		names[i] = c.Type.Format(choice)
	}

	return names
}

// Name implements the Type interface.
func (c choices[T]) Name() string { return c.Metavar() }

// Metavar shows the allowed set.
func (c choices[T]) Metavar() string { return strings.Join(c.names(), "|") }

// Enum lists the allowed values for completion.
func (c choices[T]) Enum() []string { return c.names() }

// Validate delegates, then checks membership.
func (c choices[T]) Validate(value any) error {
	if err := c.Type.Validate(value); err != nil {
		return err
	}

	if v, ok := value.(T); ok {
		for _, choice := range c.allowed {
			if v == choice {
				return nil
			}
		}
	}

	return fmt.Errorf("%v is not one of %s", value, strings.Join(c.names(), ", "))
}

// Bounded is the type returned by Range. Clamp switches it from
// rejecting out of range values to forcing them onto the nearest
// bound.
type Bounded[T constraints.Ordered] struct {
	Type
	min, max T
	clamp    bool
}

// Range requires values between min and max inclusive. The inner type
// must produce values of type T.
func Range[T constraints.Ordered](t Type, min, max T) Bounded[T] {
	return Bounded[T]{Type: t, min: min, max: max}
}

// Clamp forces out of range values onto the nearest bound instead of
// rejecting them.
func (b Bounded[T]) Clamp() Bounded[T] {
	b.clamp = true
	return b
}

// Name describes the accepted range.
func (b Bounded[T]) Name() string {
	return fmt.Sprintf("%v<=%s<=%v", b.min, b.Type.Name(), b.max)
}

func (b Bounded[T]) apply(value any) any {
	if !b.clamp {
		return value
	}

	v, ok := value.(T)
	if !ok {
		return value
	}

	return min(max(v, b.min), b.max)
}

// Process delegates, then clamps the result when configured.
func (b Bounded[T]) Process(args []parser.Arg) (any, bool, error) {
	value, ok, err := b.Type.Process(args)
	if err != nil || !ok {
		return value, ok, err
	}

	return b.apply(value), true, nil
}

// ParseEnv delegates, then clamps.
func (b Bounded[T]) ParseEnv(value string) (any, error) {
	parsed, err := b.Type.ParseEnv(value)
	if err != nil {
		return nil, err
	}

	return b.apply(parsed), nil
}

// ParseConfig delegates, then clamps.
func (b Bounded[T]) ParseConfig(value any) (any, error) {
	parsed, err := b.Type.ParseConfig(value)
	if err != nil {
		return nil, err
	}

	return b.apply(parsed), nil
}

// Validate delegates, then checks the bounds.
func (b Bounded[T]) Validate(value any) error {
	if err := b.Type.Validate(value); err != nil {
		return err
	}

	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("expected %s value", b.Type.Name())
	}

	if v < b.min {
		return fmt.Errorf("%v is smaller than the minimum value of %v", v, b.min)
	}

	if v > b.max {
		return fmt.Errorf("%v is greater than the maximum value of %v", v, b.max)
	}

	return nil
}

// measured bounds the length of collection or string values, and
// narrows a variadic arity so impossible lengths are never parsed in
// the first place.
type measured struct {
	Type
	min, max int
}

// Length requires between min and max items, or bytes for string
// values. Pass nargs.Unbounded as max to leave the upper bound open.
func Length(t Type, min, max int) Type {
	return measured{Type: t, min: min, max: max}
}

// Arity narrows a variadic arity to the configured bounds.
func (m measured) Arity() nargs.NArgs {
	arity := m.Type.Arity()

	v, ok := arity.(nargs.Variadic)
	if !ok {
		return arity
	}

	if m.min > v.Min {
		v.Min = m.min
	}

	if m.max != nargs.Unbounded && (v.Max == nargs.Unbounded || m.max < v.Max) {
		v.Max = m.max
	}

	return v
}

// Validate delegates, then checks the length.
func (m measured) Validate(value any) error {
	if err := m.Type.Validate(value); err != nil {
		return err
	}

	length, ok := size(value)
	if !ok {
		return nil
	}

	if length < m.min {
		return fmt.Errorf("%v is shorter than the minimum length of %d", value, m.min)
	}

	if m.max != nargs.Unbounded && length > m.max {
		return fmt.Errorf("%v is longer than the maximum length of %d", value, m.max)
	}

	return nil
}

// size reports the length of strings, slices, arrays, and maps.
func size(value any) (int, bool) {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// lazyType flips the inner variadic arity to prefer the shortest
// match.
type lazyType struct {
	Type
}

// Lazy makes a variadic type claim as few values as possible, leaving
// the rest to the parameters after it.
func Lazy(t Type) Type { return lazyType{Type: t} }

// Arity implements the Type interface.
func (l lazyType) Arity() nargs.NArgs { return nargs.Lazy(l.Type.Arity()) }

// validated runs an extra check after the inner type's own validation.
type validated struct {
	Type
	check func(any) error
}

// WithValidator attaches a custom validation function, run after the
// inner type's validation.
func WithValidator(t Type, check func(any) error) Type {
	return validated{Type: t, check: check}
}

// Validate implements the Type interface.
func (v validated) Validate(value any) error {
	if err := v.Type.Validate(value); err != nil {
		return err
	}

	return v.check(value)
}

// pflagType bridges a pflag.Value so flag values written for the spf13
// ecosystem work unchanged.
type pflagType struct {
	value pflag.Value
}

// FromPflag wraps an existing pflag.Value implementation. The wrapped
// value is stateful: Set runs once per capture, and the final value is
// read back with Get when the implementation has it, or String
// otherwise.
func FromPflag(value pflag.Value) Type {
	return pflagType{value: value}
}

// Name implements the Type interface.
func (p pflagType) Name() string { return p.value.Type() }

// Arity reports zero for boolean style values, one otherwise.
func (p pflagType) Arity() nargs.NArgs {
	if b, ok := p.value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return nargs.Exactly(0)
	}

	return nargs.Exactly(1)
}

// HasDefault implements the Type interface.
func (pflagType) HasDefault() bool { return false }

// Metavar implements the Type interface.
func (pflagType) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (pflagType) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format implements the Type interface.
func (pflagType) Format(value any) string { return fmt.Sprint(value) }

// Matches accepts captures shaped for the arity. Values are not trial
// parsed, because Set mutates the wrapped value.
func (p pflagType) Matches(arg parser.Arg) bool {
	_, ok := argValue(arg)

	if p.Arity() == nargs.Exactly(0) {
		return !ok
	}

	return ok
}

// Process feeds each capture to Set, boolean style values receiving
// "true" when no value was consumed.
func (p pflagType) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}

	for _, arg := range args {
		value, ok := argValue(arg)
		if !ok {
			value = "true"
		}

		if err := p.value.Set(value); err != nil {
			return nil, false, err
		}
	}

	return p.current(), true, nil
}

// current reads the wrapped value back.
func (p pflagType) current() any {
	if getter, ok := p.value.(interface{ Get() any }); ok {
		return getter.Get()
	}

	return p.value.String()
}

// ParseEnv implements the Type interface.
func (p pflagType) ParseEnv(value string) (any, error) {
	if err := p.value.Set(value); err != nil {
		return nil, err
	}

	return p.current(), nil
}

// ParseConfig implements the Type interface.
func (p pflagType) ParseConfig(value any) (any, error) {
	if str, ok := value.(string); ok {
		return p.ParseEnv(str)
	}

	return value, nil
}

// Validate implements the Type interface.
func (pflagType) Validate(any) error { return nil }
