package decree

import (
	"io"
	"os"
	"strings"

	"github.com/reeflective/decree/config"
)

// Context is the state of one command invocation: the arguments it was
// given, the environment and configuration it resolves against, and the
// values produced by resolution. Contexts form a tree matching the
// dispatch path, the root built by Run and one child per subcommand
// hop. There is no ambient current context: everything that needs one
// receives it explicitly.
type Context struct {
	name    string
	args    []string
	environ map[string]string
	config  *config.Config
	command Commander
	parent  *Context

	envPrefix    string
	configPrefix string

	values  map[*Parameter]Value
	closers []func() error

	stdout io.Writer
	stderr io.Writer
}

func newContext(cmd Commander, name string, args []string) *Context {
	return &Context{
		name:    name,
		args:    args,
		environ: map[string]string{},
		config:  config.New(),
		command: cmd,
		values:  map[*Parameter]Value{},
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// child builds the context a subcommand runs in, inheriting the
// environment, configuration, prefixes and output streams. The auto
// prefixes extend with the subcommand name, so "--level" of command
// "fetch" under prefix "STORE" resolves from STORE_FETCH_LEVEL.
func (c *Context) child(cmd Commander, name string, args []string) *Context {
	ctx := &Context{
		name:    name,
		args:    args,
		environ: c.environ,
		config:  c.config,
		command: cmd,
		parent:  c,
		values:  map[*Parameter]Value{},
		stdout:  c.stdout,
		stderr:  c.stderr,
	}

	if c.envPrefix != "" {
		ctx.envPrefix = c.envPrefix + "_" + strings.ToUpper(toSnake(name))
	}

	if c.configPrefix != "" {
		ctx.configPrefix = c.configPrefix + "." + strings.ToLower(toKebab(name))
	}

	return ctx
}

// Name returns the name the command was invoked under.
func (c *Context) Name() string { return c.name }

// Args returns the raw arguments of this invocation.
func (c *Context) Args() []string { return c.args }

// Parent returns the invoking context, or nil at the root.
func (c *Context) Parent() *Context { return c.parent }

// Config returns the layered configuration in scope.
func (c *Context) Config() *config.Config { return c.config }

// Getenv returns the named environment variable as seen by resolution.
func (c *Context) Getenv(name string) (string, bool) {
	value, ok := c.environ[name]

	return value, ok
}

// Stdout returns the writer command output should go to.
func (c *Context) Stdout() io.Writer { return c.stdout }

// Stderr returns the writer diagnostics should go to.
func (c *Context) Stderr() io.Writer { return c.stderr }

// CommandPath returns the full invocation path from the root command to
// this one, with the positional metavars of intermediate commands in
// place, e.g. "store fetch".
func (c *Context) CommandPath() string {
	if c.parent == nil {
		return c.name
	}

	path := []string{c.parent.CommandPath()}

	for _, param := range c.parent.command.meta().params {
		if param.positional {
			path = append(path, param.UsageMetavar())
		}
	}

	path = append(path, c.name)

	return strings.Join(path, " ")
}

// Value returns the resolved value of a parameter, reporting false for
// parameters that resolved to nothing or were never part of this
// invocation.
func (c *Context) Value(param *Parameter) (Value, bool) {
	value, ok := c.values[param]
	if !ok || value.Source == SourceNone {
		return value, false
	}

	return value, true
}

// Values returns every resolved value of this invocation.
func (c *Context) Values() []Value {
	values := make([]Value, 0, len(c.values))

	for _, param := range c.command.meta().orderedParams() {
		if value, ok := c.values[param]; ok {
			values = append(values, value)
		}
	}

	return values
}

func (c *Context) setValue(value Value) {
	c.values[value.Param] = value
}

// OnClose registers a function run when the invocation ends. Closers
// run in reverse registration order; the File parameter type uses this
// to close the files it opened.
func (c *Context) OnClose(closer func() error) {
	c.closers = append(c.closers, closer)
}

// Close runs the registered closers. The first error is kept, but every
// closer runs. Closing twice is harmless.
func (c *Context) Close() error {
	var first error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}

	c.closers = nil

	return first
}
