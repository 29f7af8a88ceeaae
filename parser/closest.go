package parser

import "sort"

// levenshtein computes the edit distance between two strings, by rune.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)

	if len(ar) == 0 {
		return len(br)
	}

	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)

	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ar {
		curr[0] = i + 1

		for j, cb := range br {
			cost := 1
			if ca == cb {
				cost = 0
			}

			curr[j+1] = min(prev[j]+cost, curr[j]+1, prev[j+1]+1)
		}

		prev, curr = curr, prev
	}

	return prev[len(br)]
}

// CloseMatches returns up to three candidates ranked by edit distance to
// word. Command dispatchers use it to suggest subcommand names the same
// way the engine suggests flag spellings.
func CloseMatches(word string, candidates []string) []string {
	return closeMatches(word, candidates)
}

// closeMatches returns up to three candidates ranked by edit distance to
// word. A candidate qualifies when less than half of the longer string
// needs to change, so wild guesses stay out of error messages. Ties break
// lexicographically to keep suggestions stable across runs.
func closeMatches(word string, candidates []string) []string {
	type scored struct {
		candidate string
		distance  int
	}

	matches := make([]scored, 0, len(candidates))

	for _, candidate := range candidates {
		longest := max(len(word), len(candidate))
		if longest == 0 {
			continue
		}

		dist := levenshtein(word, candidate)
		if dist*2 < longest {
			matches = append(matches, scored{candidate: candidate, distance: dist})
		}
	}

	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}

		return matches[i].candidate < matches[j].candidate
	})

	const limit = 3

	result := make([]string, 0, limit)
	for _, m := range matches {
		if len(result) == limit {
			break
		}

		result = append(result, m.candidate)
	}

	return result
}
