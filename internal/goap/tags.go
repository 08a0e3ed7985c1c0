package goap

import (
	"strconv"
	"strings"
)

// affordanceValue looks for a tag of the form "<key>: N", key matched
// case-insensitively (Section 3.1), and returns N.
func affordanceValue(tags []string, key string) (int, bool) {
	prefix := strings.ToLower(key) + ":"
	for _, t := range tags {
		lower := strings.ToLower(t)
		if strings.HasPrefix(lower, prefix) {
			n, err := strconv.Atoi(strings.TrimSpace(t[len(prefix):]))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
