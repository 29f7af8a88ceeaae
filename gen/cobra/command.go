// Package cobra mounts a declarative command tree onto a cobra command.
// Cobra contributes routing between subcommands and a host for carapace
// shell completions; parsing, resolution and execution stay with the
// tree's own engine, so errors and help pages read the same whether the
// tree is run directly or through the bridge.
package cobra

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cc "github.com/spf13/cobra"

	"github.com/reeflective/decree"
)

// ErrNotBridgeable reports a commander whose concrete type the bridge
// does not know how to mount.
var ErrNotBridgeable = errors.New("cannot bridge commander of unknown type")

// Option configures the generated cobra command tree.
type Option func(*options)

type options struct {
	runOptions []decree.RunOption
	args       []string
	noComps    bool
}

// WithRunOptions passes run options through to every execution of the
// tree, typically configuration files or an environment prefix.
func WithRunOptions(opts ...decree.RunOption) Option {
	return func(o *options) { o.runOptions = append(o.runOptions, opts...) }
}

// WithArgs fixes the argument vector handed to the engine instead of
// reading os.Args. Useful in tests and in closed-loop applications.
func WithArgs(args []string) Option {
	return func(o *options) { o.args = args }
}

// WithoutCompletions skips registering carapace completions on the
// generated commands.
func WithoutCompletions() Option {
	return func(o *options) { o.noComps = true }
}

// Bridge returns a cobra command mirroring the given command or group,
// ready to be used as a process entry point with Execute. Every flag
// and subcommand is declared on the cobra side so that routing, flag
// stripping and shell completion see the real tree, but cobra's own
// flag parsing is disabled: whichever node cobra routes to, the run
// hands the full argument vector back to the engine, which parses and
// dispatches from the root. This keeps parsing semantics, error
// messages and help pages identical to a direct run.
func Bridge(root decree.Commander, opts ...Option) (*cc.Command, error) {
	settings := &options{}
	for _, opt := range opts {
		opt(settings)
	}

	cmd, err := bridge(root, root, settings)
	if err != nil {
		return nil, err
	}

	cmd.TraverseChildren = true

	return cmd, nil
}

// bridge mounts one node of the tree and recurses into its subcommands.
func bridge(root, node decree.Commander, settings *options) (*cc.Command, error) {
	meta, group, err := unwrap(node)
	if err != nil {
		return nil, err
	}

	cmd := &cc.Command{
		Use:                meta.Name,
		Short:              shortDescription(meta),
		Long:               meta.Help,
		Hidden:             meta.Hidden,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE:               runTree(root, settings),
	}

	// Flags are declared but never parsed by cobra: routing needs to
	// know which tokens are flags and whether they consume a value,
	// and carapace completes flag names from these definitions.
	mirrorOptions(cmd, meta)

	if group != nil {
		for _, name := range group.CommandNames() {
			sub, _ := group.Lookup(name)

			subCmd, err := bridge(root, sub, settings)
			if err != nil {
				return nil, err
			}

			cmd.AddCommand(subCmd)
		}
	}

	if !settings.noComps {
		bindCompletions(cmd, meta)
	}

	return cmd, nil
}

// unwrap recovers the concrete command behind a commander. The
// interface is sealed, so the two library types are the only shapes.
func unwrap(node decree.Commander) (*decree.Command, *decree.Group, error) {
	switch impl := node.(type) {
	case *decree.Group:
		return &impl.Command, impl, nil
	case *decree.Command:
		return impl, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrNotBridgeable, node)
	}
}

// runTree executes the whole tree from its root on the full argument
// vector, regardless of which cobra node was routed to, and presents
// the outcome the way a direct run would.
func runTree(root decree.Commander, settings *options) func(*cc.Command, []string) error {
	return func(cmd *cc.Command, _ []string) error {
		argv := settings.args
		if argv == nil {
			argv = os.Args[1:]
		}

		runOpts := append([]decree.RunOption{
			decree.WithProgramName(cmd.Root().Name()),
			decree.WithStdout(cmd.OutOrStdout()),
			decree.WithStderr(cmd.ErrOrStderr()),
		}, settings.runOptions...)

		err := decree.Run(root, argv, runOpts...)

		// Help pages and usage errors are printed here, with their
		// exit code preserved, so cobra's own error printing never
		// competes with the engine's.
		var help *decree.HelpError

		var usage *decree.UsageError

		if errors.As(err, &help) || errors.As(err, &usage) {
			code := decree.Report(cmd.OutOrStdout(), cmd.ErrOrStderr(), err)
			if code == 0 {
				return nil
			}

			return decree.Exit(code)
		}

		return err
	}
}

// shortDescription returns the one-line description cobra shows in
// command listings.
func shortDescription(meta *decree.Command) string {
	if meta.ShortHelp != "" {
		return meta.ShortHelp
	}

	text := strings.TrimSpace(meta.Help)
	if cut := strings.IndexByte(text, '\n'); cut >= 0 {
		text = strings.TrimRight(text[:cut], " ")
	}

	return text
}
