package decree

import (
	"errors"
	"fmt"

	"github.com/reeflective/decree/parser"
	"github.com/reeflective/decree/types"
)

// DefaultOptionsMetavar is the placeholder the usage line shows for a
// command's options when none is configured.
const DefaultOptionsMetavar = "[OPTIONS]"

// Commander is implemented by Command and Group. Values of other types
// cannot implement it: the dispatch machinery relies on knowing both
// shapes.
type Commander interface {
	// meta returns the command core holding parameters and help text.
	meta() *Command

	// invoke parses the context's arguments and runs the command.
	invoke(ctx *Context) error
}

// Command is a runnable leaf of a command tree. The exported fields
// describe the command; parameters are attached with AddParams or Bind.
// The zero value plus a Name and a Run function is a working command.
type Command struct {
	// Name is the name the command is invoked by.
	Name string

	// Help is the long description shown on the help page.
	Help string

	// ShortHelp overrides the one-line description shown in command
	// listings, normally derived from Help.
	ShortHelp string

	// Epilog is shown at the bottom of the help page.
	Epilog string

	// Hidden keeps the command out of command listings.
	Hidden bool

	// Deprecated prefixes the description with a deprecation notice.
	Deprecated bool

	// OptionsMetavar replaces the "[OPTIONS]" usage placeholder.
	OptionsMetavar string

	// NoHelpOption suppresses the automatic --help / -h option.
	NoHelpOption bool

	// NoArgsHelp shows the help page when the command is invoked
	// without any arguments.
	NoArgsHelp bool

	// Run is the command's body. A command without one shows its help
	// page instead.
	Run func(ctx *Context) error

	params    []*Parameter
	binds     []*binding
	helpParam *Parameter
}

// AddParams attaches parameters to the command, after any existing
// ones. Positional parameters fill in the order they are attached.
func (c *Command) AddParams(params ...*Parameter) {
	c.params = append(c.params, params...)
}

// Params returns the command's declared parameters, without the
// automatic help option.
func (c *Command) Params() []*Parameter {
	return c.params
}

func (c *Command) meta() *Command { return c }

// orderedParams returns every parameter resolution walks, the automatic
// help option first so a help request wins over later errors.
func (c *Command) orderedParams() []*Parameter {
	if c.NoHelpOption {
		return c.params
	}

	if c.helpParam == nil {
		c.helpParam = NewOption("help", types.NewHelp(), []string{"--help", "-h"},
			Help("Show this message and exit."), NotRequired())
	}

	return append([]*Parameter{c.helpParam}, c.params...)
}

// invoke parses, resolves and runs. Commands without a run function
// show their help page, which keeps intermediate scaffolding commands
// honest while they are being built.
func (c *Command) invoke(ctx *Context) error {
	if len(ctx.args) == 0 && c.NoArgsHelp {
		return c.helpError(ctx)
	}

	if _, err := c.parse(ctx, true, true); err != nil {
		return err
	}

	if err := c.applyBinds(ctx); err != nil {
		return err
	}

	if c.Run == nil {
		return c.helpError(ctx)
	}

	return c.Run(ctx)
}

// parse matches the context's arguments against the command's
// parameters and resolves every value into the context. It returns the
// tokens left unclaimed; in strict mode those are an error instead.
func (c *Command) parse(ctx *Context, interspersed, strict bool) ([]string, error) {
	params := c.orderedParams()

	for _, param := range params {
		if param.err != nil {
			return nil, param.err
		}
	}

	descriptors := make([]parser.Descriptor, len(params))
	for i, param := range params {
		descriptors[i] = param.desc
	}

	engine, err := parser.New(descriptors...)
	if err != nil {
		return nil, err
	}

	result := engine.Parse(ctx.args, interspersed)

	// Resolution order is declaration order with the help option in
	// front: a help request beats missing-parameter errors, and both
	// beat the leftover check, so "--help" next to a typo still shows
	// the help page.
	for _, param := range params {
		value, err := param.resolve(ctx, result.Captured(param.desc))
		if err != nil {
			if errors.Is(err, types.ErrHelp) {
				return nil, c.helpError(ctx)
			}

			return nil, c.usageError(ctx, err)
		}

		if closeable, ok := param.typ.(types.ResourceType); ok && value.Source != SourceNone {
			if closer := closeable.Cleanup(value.Value); closer != nil {
				ctx.OnClose(closer)
			}
		}

		ctx.setValue(value)
	}

	leftover := result.Leftover()

	if strict && len(leftover) > 0 {
		token, _ := result.Unexpected()

		return nil, c.usageError(ctx, &UnexpectedTokenError{
			Token:         token,
			Possibilities: engine.Suggestions(result),
		})
	}

	return leftover, nil
}

// applyBinds writes resolved values back into bound structs.
func (c *Command) applyBinds(ctx *Context) error {
	for _, bind := range c.binds {
		value, ok := ctx.Value(bind.param)
		if !ok {
			continue
		}

		if err := bind.set(value.Value); err != nil {
			return &BadParameterError{Param: bind.param, Err: err}
		}
	}

	return nil
}

// usageError dresses an invocation error with the rendered usage line
// and a help hint, so Main can print them without holding the context.
func (c *Command) usageError(ctx *Context, err error) error {
	usage := &UsageError{Err: err, Usage: renderUsage(ctx)}

	if !c.NoHelpOption {
		usage.Hint = fmt.Sprintf("Try '%s --help' for help.", ctx.CommandPath())
	}

	return usage
}

func (c *Command) helpError(ctx *Context) error {
	return &HelpError{Help: renderHelp(ctx)}
}

// Execute runs the command as a process entry point, parsing the given
// arguments (without the program name). It returns the run error, which
// callers pass to Main or handle themselves.
func (c *Command) Execute(args []string, opts ...RunOption) error {
	return Run(c, args, opts...)
}

// shortHelpText returns the one-line description used in listings.
func (c *Command) shortHelpText(limit int) string {
	text := c.ShortHelp
	if text == "" {
		text = shortenHelp(c.Help, limit)
	}

	if c.Deprecated {
		text = "(Deprecated) " + text
	}

	return text
}
