package decree

import (
	"errors"

	"github.com/reeflective/decree/parser"
)

// DefaultSubcommandMetavar is the usage placeholder for a group's
// subcommand and its arguments.
const DefaultSubcommandMetavar = "COMMAND [ARGS]..."

// ErrMissingCommand is returned when a group is invoked with arguments
// but none of them names a subcommand.
var ErrMissingCommand = errors.New("missing command")

// Group is a command that dispatches to subcommands. Its own options
// are parsed first, without interspersing, so the first positional
// token names the subcommand and everything after it belongs to the
// subcommand untouched. A group invoked without arguments shows its
// help page.
type Group struct {
	Command

	// SubcommandMetavar replaces the "COMMAND [ARGS]..." placeholder.
	SubcommandMetavar string

	// RunWithoutCommand lets the group's Run function handle an
	// invocation that names no subcommand, instead of failing.
	RunWithoutCommand bool

	subcommands map[string]Commander
	order       []string
}

// AddCommand registers subcommands under their own names. Registering
// the same name twice keeps the latest command, as a deliberate way to
// override an inherited subcommand.
func (g *Group) AddCommand(cmds ...Commander) {
	if g.subcommands == nil {
		g.subcommands = map[string]Commander{}
	}

	for _, cmd := range cmds {
		name := cmd.meta().Name

		if _, exists := g.subcommands[name]; !exists {
			g.order = append(g.order, name)
		}

		g.subcommands[name] = cmd
	}
}

// Lookup returns the subcommand registered under the name.
func (g *Group) Lookup(name string) (Commander, bool) {
	cmd, ok := g.subcommands[name]

	return cmd, ok
}

// CommandNames returns the registered subcommand names in registration
// order.
func (g *Group) CommandNames() []string {
	return g.order
}

// invoke parses the group's own options, then hands the remaining
// tokens to the selected subcommand under a child context.
func (g *Group) invoke(ctx *Context) error {
	if len(ctx.args) == 0 && !g.RunWithoutCommand {
		return g.helpError(ctx)
	}

	// Leftovers are expected here: the first one names the subcommand.
	// Interspersing is off so the group cannot swallow tokens meant
	// for the subcommand's own flags.
	leftover, err := g.parse(ctx, false, false)
	if err != nil {
		return err
	}

	if err := g.applyBinds(ctx); err != nil {
		return err
	}

	if g.Run != nil {
		if err := g.Run(ctx); err != nil {
			return err
		}
	}

	if len(leftover) == 0 {
		if g.RunWithoutCommand {
			return nil
		}

		return g.usageError(ctx, ErrMissingCommand)
	}

	name, rest := leftover[0], leftover[1:]

	cmd, ok := g.subcommands[name]
	if !ok {
		return g.usageError(ctx, &UnknownCommandError{
			Name:          name,
			Possibilities: parser.CloseMatches(name, g.order),
		})
	}

	sub := ctx.child(cmd, name, rest)

	err = cmd.invoke(sub)
	if cerr := sub.Close(); err == nil {
		err = cerr
	}

	return err
}

// Execute runs the group as a process entry point, parsing the given
// arguments (without the program name).
func (g *Group) Execute(args []string, opts ...RunOption) error {
	return Run(g, args, opts...)
}
