// Package store builds the example artifact store command tree. It is
// deliberately small but exercises both declaration styles: tagged
// structs bound to a command, and parameters built by hand.
package store

import (
	"fmt"

	comp "github.com/rsteube/carapace"
	"github.com/rsteube/carapace-bin/pkg/actions/net/ssh"
	"github.com/rsteube/carapace-bin/pkg/actions/os"

	"github.com/reeflective/decree"
	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/types"
)

// New builds the store command tree.
func New() *decree.Group {
	root := &decree.Group{Command: decree.Command{
		Name: "store",
		Help: "Content-addressed artifact store.",
	}}

	verbose := decree.NewOption("verbose", types.NewCounter(),
		[]string{"--verbose", "-v"},
		decree.Help("Increase output detail, repeatable."),
		decree.Env("STORE_VERBOSE"),
	)
	root.AddParams(verbose)

	root.AddCommand(
		pushCommand(),
		fetchCommand(),
		listCommand(),
		versionCommand(),
	)

	return root
}

// pushOpts declares most of the push command through struct tags; the
// remote option is attached by hand because its type completes itself.
type pushOpts struct {
	Tags   []string `long:"tag" short:"t" desc:"tags applied to the uploaded artifacts"`
	Format string   `long:"format" short:"f" choice:"json" choice:"text" default:"text" desc:"progress output format"`
	Force  bool     `long:"force" required:"false" desc:"overwrite artifacts that already exist"`
	Files  []string `arg:"FILE" required:"true" desc:"artifact files to upload"`
}

func pushCommand() *decree.Command {
	opts := &pushOpts{}

	cmd := &decree.Command{
		Name: "push",
		Help: "Upload artifacts to the store.",
		Run: func(ctx *decree.Context) error {
			for _, file := range opts.Files {
				fmt.Fprintf(ctx.Stdout(), "pushing %s (format=%s force=%v tags=%v)\n",
					file, opts.Format, opts.Force, opts.Tags)
			}

			return nil
		},
	}

	if err := cmd.Bind(opts); err != nil {
		panic(err)
	}

	remote := decree.NewOption("remote", newRemoteHost(),
		[]string{"--remote", "-r"},
		decree.Help("Remote destination, as user@host."),
		decree.Env("STORE_REMOTE"),
		decree.ConfigKey("remote"),
		decree.NotRequired(),
	)
	cmd.AddParams(remote)

	return cmd
}

func fetchCommand() *decree.Command {
	name := decree.NewArgument("name", types.String(),
		decree.Help("Name of the artifact to download."),
	)
	output := decree.NewOption("output", types.NewPath().DirsOnly(),
		[]string{"--output", "-o"},
		decree.Help("Directory receiving the artifact."),
		decree.Default("."), decree.ShowDefault(),
	)

	cmd := &decree.Command{
		Name: "fetch",
		Help: "Download one artifact from the store.",
		Run: func(ctx *decree.Context) error {
			fmt.Fprintf(ctx.Stdout(), "fetching %s into %s\n",
				decree.Get[string](ctx, name), decree.Get[string](ctx, output))

			return nil
		},
	}
	cmd.AddParams(name, output)

	return cmd
}

func listCommand() *decree.Command {
	format := decree.NewOption("format", types.Choices(types.String(), "json", "text"),
		[]string{"--format"},
		decree.Help("Listing output format."),
		decree.Default("text"), decree.ShowDefault(),
		decree.ConfigKey("list.format"),
	)
	prefix := decree.NewArgument("prefix",
		types.NewList(types.String()).WithArity(nargs.ZeroOrMore()),
		decree.Help("Only list artifacts under these name prefixes."),
	)

	cmd := &decree.Command{
		Name: "list",
		Help: "List stored artifacts.",
		Run: func(ctx *decree.Context) error {
			fmt.Fprintf(ctx.Stdout(), "listing %v as %s\n",
				decree.Get[[]string](ctx, prefix), decree.Get[string](ctx, format))

			return nil
		},
	}
	cmd.AddParams(format, prefix)

	return cmd
}

func versionCommand() *decree.Command {
	return &decree.Command{
		Name:           "version",
		Help:           "Print the store version.",
		OptionsMetavar: "-",
		Run: func(ctx *decree.Context) error {
			fmt.Fprintln(ctx.Stdout(), "store 1.0.0")

			return nil
		},
	}
}

// remoteHost is a string option that completes like an ssh
// destination: user names up to the separator, known hosts after it.
type remoteHost struct {
	types.Scalar[string]
}

func newRemoteHost() remoteHost {
	return remoteHost{types.String()}
}

// Complete implements the completion interface of the cobra bridge.
func (remoteHost) Complete(comp.Context) comp.Action {
	return comp.ActionMultiParts("@", func(c comp.Context) comp.Action {
		switch len(c.Parts) {
		case 0:
			return os.ActionUsers().Invoke(c).Suffix("@").ToA().NoSpace('@')
		case 1:
			return ssh.ActionHosts()
		default:
			return comp.ActionValues()
		}
	})
}
