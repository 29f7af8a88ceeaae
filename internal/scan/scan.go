// Package scan turns tagged Go structs into parameter declarations.
//
// The root package's Bind method feeds a struct through Parse and turns
// every scanned field into an option or positional argument, so a CLI
// can be declared as plain data:
//
//	type uploadOpts struct {
//		Tag     string        `long:"tag" short:"t" desc:"tag applied to the upload"`
//		Retry   int           `long:"retry" default:"3" desc:"upload attempts"`
//		Quiet   bool          `short:"q" desc:"suppress progress output"`
//		Timeout time.Duration `long:"timeout" env:"UPLOAD_TIMEOUT"`
//		Files   []string      `arg:"FILE" required:"true"`
//	}
//
// Supported tags: long, short, desc (or help), env, config, default,
// required, hidden, metavar, nargs, choice, sep, negatable, validate,
// arg, and flag:"-" to skip a field. Embedded structs flatten into
// their parent.
package scan

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/types"
)

// ErrNotPointerToStruct indicates that the scanned value is not a
// pointer to a struct.
var ErrNotPointerToStruct = errors.New("bind target must be a pointer to a struct")

// Opts configures a scan.
type Opts struct {
	// Validate enables the `validate` struct tag, backed by the
	// go-playground validator.
	Validate bool
}

// Field is one scanned struct field, carrying everything the caller
// needs to declare a parameter and to write the resolved value back.
type Field struct {
	// Name is the logical parameter name, from the long tag or the
	// field name.
	Name string

	// Positional marks fields tagged arg.
	Positional bool

	// Flags holds the declared spellings, dashes included.
	Flags []string

	Help    string
	Hidden  bool
	Metavar string

	// EnvVars and ConfigKeys are nil when undeclared, so auto
	// prefixes still apply.
	EnvVars    []string
	ConfigKeys []string

	// Default is the parsed default value; HasDefault tells it apart
	// from an absent tag.
	Default    any
	HasDefault bool

	// Required reflects the required tag; HasRequired distinguishes
	// an explicit "false" from no tag at all.
	Required    bool
	HasRequired bool

	// Type converts and probes the field's values.
	Type types.Type

	// Validators run on the resolved value.
	Validators []func(any) error

	// Set writes the resolved value into the struct field. It is nil
	// for self-storing fields such as pflag values.
	Set func(value any) error
}

// Parse scans a pointer to a tagged struct into field declarations, in
// field order with embedded structs flattened in place.
func Parse(data any, opts Opts) ([]*Field, error) {
	value := reflect.ValueOf(data)

	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrNotPointerToStruct, data)
	}

	return parseStruct(value.Elem(), opts)
}

func parseStruct(value reflect.Value, opts Opts) ([]*Field, error) {
	var fields []*Field

	structType := value.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			nested, err := parseStruct(value.Field(i), opts)
			if err != nil {
				return nil, err
			}

			fields = append(fields, nested...)

			continue
		}

		parsed, skip, err := parseField(value.Field(i), field, opts)
		if err != nil {
			return nil, err
		}

		if !skip {
			fields = append(fields, parsed)
		}
	}

	return fields, nil
}

func parseField(value reflect.Value, field reflect.StructField, opts Opts) (*Field, bool, error) {
	tags, err := parseTag(field)
	if err != nil {
		return nil, false, err
	}

	if name, ok := tags.get("flag"); ok && name == "-" {
		return nil, true, nil
	}

	parsed := &Field{Hidden: tags.isTrue("hidden")}

	if metavar, ok := tags.get("arg"); ok {
		parsed.Positional = true

		if metavar != "" && !strings.EqualFold(metavar, "true") {
			parsed.Metavar = metavar
		}
	}

	long, hasLong := tags.get("long")
	if !hasLong || long == "" {
		long = toKebab(field.Name)
	}

	parsed.Name = long

	if !parsed.Positional {
		parsed.Flags = []string{"--" + long}

		if short, ok := tags.get("short"); ok && short != "" {
			parsed.Flags = append(parsed.Flags, "-"+short)
		}
	}

	if desc, ok := tags.get("desc"); ok {
		parsed.Help = desc
	} else if help, ok := tags.get("help"); ok {
		parsed.Help = help
	}

	if metavar, ok := tags.get("metavar"); ok {
		parsed.Metavar = metavar
	}

	if envs, ok := tags.get("env"); ok {
		parsed.EnvVars = splitNames(envs)
	}

	if keys, ok := tags.get("config"); ok {
		parsed.ConfigKeys = splitNames(keys)
	}

	if _, ok := tags.get("required"); ok {
		parsed.Required = tags.isTrue("required")
		parsed.HasRequired = true
	}

	if err := buildFieldType(parsed, value, field, tags); err != nil {
		return nil, false, err
	}

	if raw, ok := tags.get("default"); ok {
		def, err := parsed.Type.ParseEnv(raw)
		if err != nil {
			return nil, false, fmt.Errorf("field %s: bad default %q: %w", field.Name, raw, err)
		}

		parsed.Default = def
		parsed.HasDefault = true
	}

	if check, ok := tags.get("validate"); ok && opts.Validate {
		parsed.Validators = append(parsed.Validators, varValidator(field.Name, check))
	}

	return parsed, false, nil
}

// fieldArity returns the arity override from the nargs tag, or the
// positional default for collection fields: a required positional list
// wants at least one token, an optional one takes whatever is left.
func fieldArity(parsed *Field, collection bool, tags tag) (nargs.NArgs, error) {
	if literal, ok := tags.get("nargs"); ok {
		arity, err := nargs.Parse(literal)
		if err != nil {
			return nil, err
		}

		return arity, nil
	}

	if !parsed.Positional || !collection {
		return nil, nil
	}

	if parsed.HasRequired && parsed.Required {
		return nargs.OneOrMore(), nil
	}

	return nargs.ZeroOrMore(), nil
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")

	names := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}

	return names
}

// toKebab converts a CamelCase field name to kebab-case, keeping
// initialisms together: "HTTPTimeout" becomes "http-timeout".
func toKebab(name string) string {
	runes := []rune(name)

	var out strings.Builder

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && !unicode.IsUpper(runes[i+1]) && unicode.IsLetter(runes[i+1])

			if i > 0 && (prevLower || nextLower) {
				out.WriteByte('-')
			}

			out.WriteRune(unicode.ToLower(r))

			continue
		}

		out.WriteRune(r)
	}

	return out.String()
}
