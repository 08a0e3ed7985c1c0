// Package resolve implements the fuzzy name resolver (Section 4.C): turning
// a player's typed noun phrase into exactly one candidate, or a clear
// failure with suggestions. Grounded on the teacher's preference for plain
// deterministic string scans (agents/behavior.go's decide-tree style)
// rather than a fuzzy-matching library — the resolution ladder here is a
// precedence order, not a scored search, so no third-party dependency
// fits better than a direct implementation.
package resolve

import "strings"

// Candidate is anything nameable that can be resolved against: an Object,
// an NPC, a Room exit, etc. Name is the display name compared against the
// query; ID is opaque and returned to the caller on a match.
type Candidate struct {
	ID   string
	Name string
}

// Outcome classifies how (or whether) resolution succeeded.
type Outcome int

const (
	Resolved Outcome = iota
	NotFound
	Ambiguous
)

// Result is the resolver's output (Section 4.C: "resolve(query, candidates)
// -> (ok, error, resolved)").
type Result struct {
	Outcome     Outcome
	Resolved    Candidate
	Suggestions []string // NotFound: edit-distance ranking; Ambiguous: the matching names
}

// Resolve applies the five-stage deterministic precedence ladder:
//  1. exact match
//  2. case-insensitive exact match
//  3. unique case-insensitive prefix match
//  4. unique case-insensitive substring match
//  5. none of the above: NotFound, with up to 5 suggestions ranked by
//     edit distance
//
// Any stage yielding more than one match is Ambiguous and resolution stops
// there — a later, narrower stage never rescues an ambiguous earlier one
// (Section 4.C: "the first stage with any match wins, even if ambiguous").
func Resolve(query string, candidates []Candidate) Result {
	if query == "" || len(candidates) == 0 {
		return Result{Outcome: NotFound, Suggestions: suggest(query, candidates)}
	}

	if r, ok := stage(candidates, func(c Candidate) bool { return c.Name == query }); ok {
		return r
	}

	lower := strings.ToLower(query)
	if r, ok := stage(candidates, func(c Candidate) bool { return strings.ToLower(c.Name) == lower }); ok {
		return r
	}

	if r, ok := stage(candidates, func(c Candidate) bool { return strings.HasPrefix(strings.ToLower(c.Name), lower) }); ok {
		return r
	}

	if r, ok := stage(candidates, func(c Candidate) bool { return strings.Contains(strings.ToLower(c.Name), lower) }); ok {
		return r
	}

	return Result{Outcome: NotFound, Suggestions: suggest(query, candidates)}
}

// stage runs one matching predicate over candidates. ok is false only when
// the stage found zero matches, so the caller falls through to the next
// stage; a single match or multiple matches both terminate the ladder.
func stage(candidates []Candidate, match func(Candidate) bool) (Result, bool) {
	var hits []Candidate
	for _, c := range candidates {
		if match(c) {
			hits = append(hits, c)
		}
	}
	switch len(hits) {
	case 0:
		return Result{}, false
	case 1:
		return Result{Outcome: Resolved, Resolved: hits[0]}, true
	default:
		return Result{Outcome: Ambiguous, Suggestions: names(hits)}, true
	}
}

func names(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// HereAliases are the special-cased tokens meaning "the room itself" in
// room-argument position (Section 4.C).
var HereAliases = map[string]bool{"here": true, "room": true}

// IsHere reports whether query is a room-self alias.
func IsHere(query string) bool {
	return HereAliases[strings.ToLower(query)]
}

// suggest ranks up to 5 candidate names by Levenshtein distance to query,
// ties broken lexicographically, per Section 4.C stage 5. Used only to
// populate NotFound.Suggestions — never affects whether a match is found.
type scoredName struct {
	name string
	dist int
}

func (a scoredName) less(b scoredName) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.name < b.name
}

func suggest(query string, candidates []Candidate) []string {
	if len(candidates) == 0 {
		return nil
	}
	lower := strings.ToLower(query)
	scoredList := make([]scoredName, 0, len(candidates))
	for _, c := range candidates {
		scoredList = append(scoredList, scoredName{c.Name, levenshtein(lower, strings.ToLower(c.Name))})
	}
	// simple insertion sort: candidate lists are small (a room's contents)
	for i := 1; i < len(scoredList); i++ {
		j := i
		for j > 0 && scoredList[j].less(scoredList[j-1]) {
			scoredList[j-1], scoredList[j] = scoredList[j], scoredList[j-1]
			j--
		}
	}
	n := 5
	if n > len(scoredList) {
		n = len(scoredList)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = scoredList[i].name
	}
	return out
}

// levenshtein computes classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
