package session

import "strings"

// splitPipes splits a command's argument string on "|", trimming each
// part — the Section 6.4 one-line form for every multi-field command
// (e.g. "/auth create Alice | hunter2 | a curious explorer").
func splitPipes(s string) []string {
	raw := strings.Split(s, "|")
	out := make([]string, len(raw))
	for i, p := range raw {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// splitVerb pulls the first whitespace-delimited token off line (the verb)
// and returns it alongside whatever follows, trimmed.
func splitVerb(line string) (verb, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// stripVerbs returns rest with any of the given leading multi-word verbs
// removed, case-insensitively, along with whether one matched — used for
// the natural-language interaction verbs ("pick up X", "move through X")
// that splitVerb's single-token split can't isolate on its own.
func stripVerbs(line string, verbs ...string) (arg string, matched string, ok bool) {
	lower := strings.ToLower(line)
	for _, v := range verbs {
		if lower == v || strings.HasPrefix(lower, v+" ") {
			return strings.TrimSpace(line[len(v):]), v, true
		}
	}
	return "", "", false
}
