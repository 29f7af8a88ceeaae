package parser

// Result is the outcome of a Parse call: the captures of the thread that
// won the search, or of the closest-ranked failed thread when no thread
// consumed every token it was entitled to.
//
// The engine reports, it does not judge: a result with leftover tokens is
// not an error at this level. Subcommand dispatchers feed leftovers to
// child commands, strict callers turn them into usage errors.
type Result struct {
	captured  map[Descriptor][]Arg
	order     []Descriptor
	leftover  []string
	offending string
	next      Argument
}

// Captured returns the occurrences claimed by a descriptor, in the order
// they were consumed from the command line. Descriptors without captures
// return nil: a required parameter that went unfilled simply has nothing
// recorded here.
func (r *Result) Captured(desc Descriptor) []Arg {
	return r.captured[desc]
}

// Descriptors lists the descriptors that captured at least one occurrence,
// ordered by their first capture.
func (r *Result) Descriptors() []Descriptor {
	return r.order
}

// Leftover returns the tokens no descriptor claimed, in command-line
// order. Deferred positional-looking tokens are replayed into this list,
// so it is the exact remainder a subcommand should parse next.
func (r *Result) Leftover() []string {
	return r.leftover
}

// Unexpected returns the token that stopped the search, if any. This is
/// not always the first leftover: tokens deferred during interspersed flag
// parsing are replayed in front of the stopping token.
func (r *Result) Unexpected() (string, bool) {
	if len(r.leftover) == 0 {
		return "", false
	}

	return r.offending, true
}

// NextArgument returns the first positional descriptor that never got to
// consume anything, or nil.
func (r *Result) NextArgument() Argument {
	return r.next
}
