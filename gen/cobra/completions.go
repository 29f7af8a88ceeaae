package cobra

import (
	"context"
	"strings"

	comp "github.com/rsteube/carapace"
	cc "github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reeflective/decree"
	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/types"
)

// bindCompletions registers carapace completions for one command:
// value completions for each flag that can name its values, and a
// positional completer covering every positional slot.
func bindCompletions(cmd *cc.Command, meta *decree.Command) {
	comps := comp.Gen(cmd)

	flagActions := make(comp.ActionMap)

	for _, param := range meta.Params() {
		if param.IsPositional() {
			continue
		}

		action, ok := typeAction(param.Type())
		if !ok {
			continue
		}

		for _, spelling := range param.Flags() {
			if name, isLong := strings.CutPrefix(spelling, "--"); isLong {
				flagActions[name] = action
			}
		}
	}

	if len(flagActions) > 0 {
		comps.FlagCompletion(flagActions)
	}

	if slots := positionalSlots(meta); len(slots) > 0 {
		comps.PositionalAnyCompletion(comp.ActionCallback(completeSlots(slots)))
	}
}

// Completer is implemented by parameter types that bring their own
// shell completion, overriding the derived one.
type Completer interface {
	Complete(c comp.Context) comp.Action
}

// typeAction maps a parameter type to a completion action. Types
// completing themselves win; enumerated types complete their values;
// filesystem types complete paths.
func typeAction(typ types.Type) (comp.Action, bool) {
	if completer, ok := typ.(Completer); ok {
		return comp.ActionCallback(completer.Complete), true
	}

	if enum, ok := typ.(types.Enumerated); ok {
		return comp.ActionValues(enum.Enum()...), true
	}

	switch concrete := typ.(type) {
	case types.Path:
		if concrete.WantsDirs() {
			return comp.ActionDirectories(), true
		}

		return comp.ActionFiles(), true
	case types.File:
		return comp.ActionFiles(), true
	}

	return comp.Action{}, false
}

// slot is one positional parameter with the window of word indexes it
// may legally claim. The window start is a range because preceding
// variadic positionals shift where this one begins.
type slot struct {
	startMin int
	startMax int // Unbounded once a preceding slot has no upper limit
	min      int
	max      int // Unbounded when the slot itself has no upper limit
	action   comp.Action
}

func positionalSlots(meta *decree.Command) []slot {
	var slots []slot

	startMin, startMax := 0, 0

	for _, param := range meta.Params() {
		if !param.IsPositional() {
			continue
		}

		min, max := bounds(param.Arity())

		action, ok := typeAction(param.Type())
		if !ok {
			action = comp.ActionFiles()
		}

		slots = append(slots, slot{
			startMin: startMin,
			startMax: startMax,
			min:      min,
			max:      max,
			action:   action.Usage(param.UsageMetavar()),
		})

		startMin += min

		if startMax != nargs.Unbounded {
			if max == nargs.Unbounded {
				startMax = nargs.Unbounded
			} else {
				startMax += max
			}
		}
	}

	return slots
}

// open reports whether the slot may claim the word at index used, i.e.
// after used previous positional words.
func (s slot) open(used int) bool {
	if used < s.startMin {
		return false
	}

	if s.startMax == nargs.Unbounded || s.max == nargs.Unbounded {
		return true
	}

	return used < s.startMax+s.max
}

// completeSlots returns the callback completing the next positional
// word. Every slot whose window covers the word is a candidate, since
// backtracking may assign the word to any of them; candidate actions
// are evaluated concurrently and merged.
func completeSlots(slots []slot) comp.CompletionCallback {
	return func(c comp.Context) comp.Action {
		used := len(c.Args)

		var candidates []slot

		for _, s := range slots {
			if s.open(used) {
				candidates = append(candidates, s)
			}
		}

		if len(candidates) == 0 {
			return comp.ActionValues()
		}

		invoked := make([]comp.Action, len(candidates))
		group, _ := errgroup.WithContext(context.Background())

		for i, candidate := range candidates {
			i, candidate := i, candidate

			group.Go(func() error {
				invoked[i] = candidate.action.Invoke(c).ToA()

				return nil
			})
		}

		// Candidate actions never return errors, the group only
		// joins their evaluation.
		_ = group.Wait()

		return comp.Batch(invoked...).ToA()
	}
}
