package mutate

import (
	"strconv"
	"strings"
)

// affordanceValue looks for a tag of the form "<key>: N" (key matched
// case-insensitively, Section 3.1: "the Edible/Drinkable key is matched
// case-insensitively when parsing the number") and returns N.
func affordanceValue(tags []string, key string) (int, bool) {
	prefix := strings.ToLower(key) + ":"
	for _, t := range tags {
		lower := strings.ToLower(t)
		if strings.HasPrefix(lower, prefix) {
			n, err := strconv.Atoi(strings.TrimSpace(t[len(prefix):]))
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}

// craftSpotTemplate returns the template key named by a "craft spot:<key>"
// tag, if present (Section 3.1).
func craftSpotTemplate(tags []string) (string, bool) {
	const prefix = "craft spot:"
	for _, t := range tags {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimSpace(t[len(prefix):]), true
		}
	}
	return "", false
}
