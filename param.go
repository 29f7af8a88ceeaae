package decree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
	"github.com/reeflective/decree/types"
)

// Parameter is one declared option or positional argument: a name, a
// value type, and everything needed to resolve the final value once the
// command line has been matched. Parameters are built with NewOption
// and NewArgument and are inert until added to a command.
type Parameter struct {
	name       string
	typ        types.Type
	positional bool

	flags     []string
	secondary []string

	envvars    []string
	configKeys []string

	def      any
	defFunc  func() any
	hasDef   bool
	required *bool

	help        string
	hidden      bool
	metavar     string
	showDefault string
	showEnv     bool
	showConfig  bool

	validators []func(any) error

	// Construction problems surface when the engine is built, so that
	// declarations stay assignment-friendly.
	err error

	desc parser.Descriptor
}

// ParamOption modifies a parameter at construction.
type ParamOption func(*Parameter)

// NewOption declares a flag-addressed parameter. The flag spellings
// include their dashes; the type may expand them into negative
// counterparts. Options must consume a fixed number of values: how
// often the whole option may repeat is a matter for its type, not for
// the matcher.
func NewOption(name string, typ types.Type, flags []string, opts ...ParamOption) *Parameter {
	param := &Parameter{name: name, typ: typ}

	if _, ok := typ.Arity().(nargs.Fixed); !ok {
		param.err = fmt.Errorf("option %s: arity of an option may not be variadic", name)
	}

	primary, secondary, err := typ.ParseFlags(flags)
	if err != nil {
		param.err = fmt.Errorf("option %s: %w", name, err)
	}

	param.flags = primary
	param.secondary = secondary

	for _, opt := range opts {
		opt(param)
	}

	param.desc = &optionDescriptor{param}

	return param
}

// NewArgument declares a positional parameter. Arguments are matched in
// declaration order; an argument that is not required has its arity
// loosened so the whole slot may be skipped.
func NewArgument(name string, typ types.Type, opts ...ParamOption) *Parameter {
	param := &Parameter{name: name, typ: typ, positional: true}

	for _, opt := range opts {
		opt(param)
	}

	param.desc = &argumentDescriptor{param}

	return param
}

// Default sets the value used when nothing else resolves.
func Default(value any) ParamOption {
	return func(p *Parameter) {
		p.def = value
		p.hasDef = true
	}
}

// DefaultFunc sets a factory producing the default value on demand.
func DefaultFunc(factory func() any) ParamOption {
	return func(p *Parameter) { p.defFunc = factory }
}

// Required marks the parameter as required even if its type produces a
// value from zero captures.
func Required() ParamOption {
	required := true

	return func(p *Parameter) { p.required = &required }
}

// NotRequired marks the parameter as optional even without a default.
func NotRequired() ParamOption {
	required := false

	return func(p *Parameter) { p.required = &required }
}

// Env names the environment variables consulted when the parameter is
// absent from the command line, in priority order.
func Env(vars ...string) ParamOption {
	return func(p *Parameter) { p.envvars = vars }
}

// ConfigKey names the dotted configuration paths consulted after the
// environment, in priority order.
func ConfigKey(keys ...string) ParamOption {
	return func(p *Parameter) { p.configKeys = keys }
}

// Help sets the description shown in help pages.
func Help(text string) ParamOption {
	return func(p *Parameter) { p.help = text }
}

// Hidden keeps the parameter out of help pages.
func Hidden() ParamOption {
	return func(p *Parameter) { p.hidden = true }
}

// Metavar overrides the value placeholder shown in usage text.
func Metavar(metavar string) ParamOption {
	return func(p *Parameter) { p.metavar = metavar }
}

// ShowDefault appends the default value to the help text.
func ShowDefault() ParamOption {
	return func(p *Parameter) { p.showDefault = "\x00" }
}

// ShowDefaultText appends the given text as the displayed default.
func ShowDefaultText(text string) ParamOption {
	return func(p *Parameter) { p.showDefault = text }
}

// ShowEnv appends the environment variable names to the help text.
func ShowEnv() ParamOption {
	return func(p *Parameter) { p.showEnv = true }
}

// ShowConfig appends the configuration paths to the help text.
func ShowConfig() ParamOption {
	return func(p *Parameter) { p.showConfig = true }
}

// Validators appends checks run on the final value, wherever it came
// from.
func Validators(checks ...func(any) error) ParamOption {
	return func(p *Parameter) { p.validators = append(p.validators, checks...) }
}

// Name returns the logical parameter name.
func (p *Parameter) Name() string { return p.name }

// Type returns the parameter's value type.
func (p *Parameter) Type() types.Type { return p.typ }

// Flags returns the primary flag spellings, or nil for an argument.
func (p *Parameter) Flags() []string { return p.flags }

// SecondaryFlags returns the negative flag spellings, if any.
func (p *Parameter) SecondaryFlags() []string { return p.secondary }

// IsPositional reports whether the parameter fills by position.
func (p *Parameter) IsPositional() bool { return p.positional }

// IsHidden reports whether the parameter is kept out of help pages.
func (p *Parameter) IsHidden() bool { return p.hidden }

// Description returns the help text of the parameter.
func (p *Parameter) Description() string { return p.help }

// Arity returns the effective repetition of the parameter, with the
// optional relaxation applied for positionals carrying a default.
func (p *Parameter) Arity() nargs.NArgs { return p.arity() }

// IsRequired reports whether resolution must produce a value. An
// explicit Required or NotRequired wins; otherwise a parameter is
// required exactly when neither it nor its type has a default.
func (p *Parameter) IsRequired() bool {
	if p.required != nil {
		return *p.required
	}

	return !p.hasDefault() && !p.typ.HasDefault()
}

func (p *Parameter) hasDefault() bool {
	return p.hasDef || p.defFunc != nil
}

// arity returns the arity the matcher drives this parameter with.
func (p *Parameter) arity() nargs.NArgs {
	arity := p.typ.Arity()

	if p.positional && !p.IsRequired() {
		arity = arity.AsOptional()
	}

	return arity
}

func (p *Parameter) kind() string {
	if p.positional {
		return "argument"
	}

	return "option"
}

// ErrorHint renders the parameter reference used in error messages:
// the flag spellings for an option, the metavar for an argument.
func (p *Parameter) ErrorHint() string {
	if p.positional {
		return fmt.Sprintf("'%s'", p.UsageMetavar())
	}

	quoted := make([]string, len(p.flags))
	for i, flag := range p.flags {
		quoted[i] = fmt.Sprintf("'%s'", flag)
	}

	return strings.Join(quoted, " / ")
}

// UsageMetavar renders the metavar the usage line shows for this
// parameter, repeated or bracketed according to its arity.
func (p *Parameter) UsageMetavar() string {
	metavar := p.metavar
	if metavar == "" {
		metavar = p.typ.Metavar()
	}

	if metavar == "" {
		if p.positional {
			metavar = strings.ToUpper(p.name)
		} else {
			metavar = strings.ToUpper(p.typ.Name())
		}
	}

	return p.arity().FormatMetavar(metavar)
}

// envNames returns the environment variables to consult, deriving one
// from the auto prefix when none were declared.
func (p *Parameter) envNames(ctx *Context) []string {
	if p.envvars != nil {
		return p.envvars
	}

	if ctx.envPrefix != "" {
		return []string{ctx.envPrefix + "_" + strings.ToUpper(toSnake(p.name))}
	}

	return nil
}

// configPaths returns the configuration paths to consult, deriving one
// from the auto prefix when none were declared.
func (p *Parameter) configPaths(ctx *Context) []string {
	if p.configKeys != nil {
		return p.configKeys
	}

	if ctx.configPrefix != "" {
		return []string{ctx.configPrefix + "." + strings.ToLower(toKebab(p.name))}
	}

	return nil
}

// resolve produces the parameter's final value. Sources are consulted
// in a fixed order: captured tokens, environment, configuration,
// declared default, and finally whatever the type produces from zero
// captures. The chosen source is reported alongside the value; a
// parameter that produced nothing reports SourceNone, which is an error
// only when the parameter is required.
func (p *Parameter) resolve(ctx *Context, captured []parser.Arg) (Value, error) {
	value, source, err := p.lookup(ctx, captured)
	if err != nil {
		return Value{}, p.wrap(err)
	}

	resolved := Value{Param: p, Value: value, Source: source}

	if source == SourceNone {
		if p.IsRequired() {
			return Value{}, &MissingParameterError{Param: p}
		}

		return resolved, nil
	}

	if err := p.typ.Validate(value); err != nil {
		return Value{}, p.wrap(err)
	}

	for _, check := range p.validators {
		if err := check(value); err != nil {
			return Value{}, p.wrap(err)
		}
	}

	return resolved, nil
}

func (p *Parameter) lookup(ctx *Context, captured []parser.Arg) (any, Source, error) {
	// Captures win, unless the type produced nothing from them, in
	// which case the fallback chain runs before the type gets a second
	// chance to produce its empty-input value.
	if len(captured) > 0 {
		value, ok, err := p.typ.Process(captured)
		if err != nil || ok {
			return value, SourceCommandLine, err
		}
	}

	for _, name := range p.envNames(ctx) {
		raw, ok := ctx.environ[name]
		if !ok {
			continue
		}

		value, err := p.typ.ParseEnv(raw)

		return value, SourceEnvironment, err
	}

	for _, path := range p.configPaths(ctx) {
		raw, ok := ctx.config.GetPath(path)
		if !ok {
			continue
		}

		value, err := p.typ.ParseConfig(raw)

		return value, SourceConfig, err
	}

	if p.hasDef {
		return p.def, SourceDefault, nil
	}

	if p.defFunc != nil {
		return p.defFunc(), SourceDefault, nil
	}

	if len(captured) == 0 {
		value, ok, err := p.typ.Process(nil)
		if err != nil || ok {
			return value, SourceCommandLine, err
		}
	}

	return nil, SourceNone, nil
}

// wrap turns a conversion or validation error into a BadParameterError,
// letting signal errors such as the help request pass through bare.
func (p *Parameter) wrap(err error) error {
	if err == nil || errors.Is(err, types.ErrHelp) {
		return err
	}

	return &BadParameterError{Param: p, Err: err}
}

//
// Engine-facing descriptors --------------------------------------------------- //
//

// optionDescriptor is the matcher's view of an option parameter. The
// probe always accepts: an option is committed the moment its flag is
// recognized, and bad values are reported after matching, not hidden by
// a backtrack into a stranger interpretation.
type optionDescriptor struct {
	param *Parameter
}

func (d *optionDescriptor) Arity() nargs.NArgs       { return d.param.arity() }
func (d *optionDescriptor) Matches(parser.Arg) bool  { return true }
func (d *optionDescriptor) Flags() []string          { return d.param.flags }
func (d *optionDescriptor) SecondaryFlags() []string { return d.param.secondary }

// argumentDescriptor is the matcher's view of a positional parameter.
// Unlike options, arguments delegate the probe to their type, which is
// what lets the search tell apart adjacent variadic slots.
type argumentDescriptor struct {
	param *Parameter
}

func (d *argumentDescriptor) Arity() nargs.NArgs { return d.param.arity() }

func (d *argumentDescriptor) Matches(arg parser.Arg) bool {
	return d.param.typ.Matches(arg)
}

func (d *argumentDescriptor) Metavar() string { return d.param.UsageMetavar() }

//
// Name folding ---------------------------------------------------------------- //
//

func toSnake(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}

		return r
	}, name)
}

func toKebab(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == ' ' {
			return '-'
		}

		return r
	}, name)
}
