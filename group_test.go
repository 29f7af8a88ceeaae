package decree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeflective/decree/types"
)

//
// Dispatch --------------------------------------------------------------------- //
//

// TestGroupDispatch checks subcommand routing, group-level options and
// the command path of the child context.
func TestGroupDispatch(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	verbose := NewOption("verbose", types.NewFlag(), []string{"--verbose"}, NotRequired())

	var path string

	var parentVerbose bool

	push := &Command{Name: "push", Run: func(ctx *Context) error {
		path = ctx.CommandPath()
		parentVerbose = Get[bool](ctx.Parent(), verbose)

		return nil
	}}

	pull := &Command{Name: "pull", Run: func(*Context) error {
		t.Fatal("wrong subcommand dispatched")

		return nil
	}}

	store := &Group{Command: Command{Name: "store"}}
	store.AddParams(verbose)
	store.AddCommand(push, pull)

	rq.NoError(Run(store, []string{"--verbose", "push"}, WithProgramName("store")))
	pt.Equal("store push", path)
	pt.True(parentVerbose, "group options parse before dispatch")
}

// TestGroupUnknownCommand checks the error and its suggestions for a
// misspelled subcommand.
func TestGroupUnknownCommand(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	store := &Group{Command: Command{Name: "store"}}
	store.AddCommand(
		&Command{Name: "push", Run: func(*Context) error { return nil }},
		&Command{Name: "pull", Run: func(*Context) error { return nil }},
	)

	err := Run(store, []string{"pus"})

	var unknown *UnknownCommandError

	rq.ErrorAs(err, &unknown)
	pt.Equal("pus", unknown.Name)
	pt.Equal([]string{"push"}, unknown.Possibilities)
	pt.Equal(`unknown command "pus". Did you mean "push"?`, unknown.Error())
}

// TestGroupWithoutArguments checks that an empty invocation shows the
// group help with its command listing.
func TestGroupWithoutArguments(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	store := &Group{Command: Command{Name: "store", Help: "Artifact store."}}
	store.AddCommand(
		&Command{Name: "push", ShortHelp: "Upload artifacts."},
		&Command{Name: "prune", Hidden: true},
	)

	var help *HelpError

	rq.ErrorAs(Run(store, nil), &help)
	pt.Contains(help.Help, "Commands:")
	pt.Contains(help.Help, "Upload artifacts.")
	pt.NotContains(help.Help, "prune", "hidden commands stay out of listings")
}

// TestGroupRunWithoutCommand checks groups that are runnable on their
// own.
func TestGroupRunWithoutCommand(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	var ran bool

	store := &Group{
		Command:           Command{Name: "store", Run: func(*Context) error { ran = true; return nil }},
		RunWithoutCommand: true,
	}
	store.AddCommand(&Command{Name: "push"})

	rq.NoError(Run(store, nil))
	pt.True(ran)
}

// TestGroupLatestWins checks that re-registering a name replaces the
// command while keeping its listing position.
func TestGroupLatestWins(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	var which string

	store := &Group{Command: Command{Name: "store"}}
	store.AddCommand(
		&Command{Name: "push", Run: func(*Context) error { which = "old"; return nil }},
		&Command{Name: "pull", Run: func(*Context) error { return nil }},
	)
	store.AddCommand(&Command{Name: "push", Run: func(*Context) error { which = "new"; return nil }})

	pt.Equal([]string{"push", "pull"}, store.CommandNames())

	rq.NoError(Run(store, []string{"push"}))
	pt.Equal("new", which)
}

// TestNestedGroups checks dispatch through two group levels and the
// resulting command path.
func TestNestedGroups(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	var path string

	gc := &Command{Name: "run", Run: func(ctx *Context) error {
		path = ctx.CommandPath()

		return nil
	}}

	jobs := &Group{Command: Command{Name: "jobs"}}
	jobs.AddCommand(gc)

	store := &Group{Command: Command{Name: "store"}}
	store.AddCommand(jobs)

	rq.NoError(Run(store, []string{"jobs", "run"}, WithProgramName("store")))
	pt.True(strings.HasSuffix(path, "jobs run"), "got %q", path)
}
