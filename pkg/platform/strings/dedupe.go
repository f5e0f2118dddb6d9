// Package strings parses the comma separated lists that arrive in query
// strings and environment variables.
package strings

import (
	"strings"
)

// SplitList splits raw on commas, trims each element and drops empty and
// repeated ones. Order of first appearance is preserved.
//
//	SplitList(" a, b,,a ") // []string{"a", "b"}
func SplitList(raw string) []string {
	return dedupe(strings.Split(raw, ","), strings.TrimSpace)
}

// SplitListLower is SplitList with case folded to lower case, for
// vocabularies that are matched case-insensitively.
func SplitListLower(raw string) []string {
	return dedupe(strings.Split(raw, ","), func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	var result []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
