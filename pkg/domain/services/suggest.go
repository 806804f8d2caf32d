package services

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ClosestName returns the candidate nearest to name by edit distance,
// ignoring case and counting a swap of adjacent characters as one edit.
// ok is false when no candidate is close enough to be a plausible typo.
func ClosestName(name string, candidates []string) (closest string, ok bool) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	lowered := strings.ToLower(name)
	best := -1
	for _, candidate := range sorted {
		target := strings.ToLower(candidate)
		dist := levenshtein.ComputeDistance(lowered, target)
		if dist == 2 && isTransposition(lowered, target) {
			dist = 1
		}
		if dist > suggestionLimit(len(candidate)) {
			continue
		}
		if best < 0 || dist < best {
			best = dist
			closest = candidate
		}
	}
	return closest, best >= 0
}

// isTransposition reports whether a and b differ only by one swap of
// adjacent characters
func isTransposition(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) || a[i] != b[i+1] || a[i+1] != b[i] {
		return false
	}
	return a[i+2:] == b[i+2:]
}

// suggestionLimit scales the tolerated distance with the candidate length
func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// UnknownNameMessage formats "unknown <what>: <name>" with a suggestion
// when one of the candidates is close
func UnknownNameMessage(what, name string, candidates []string) string {
	msg := "unknown " + what + ": " + name
	if closest, ok := ClosestName(name, candidates); ok {
		msg += " (did you mean " + closest + "?)"
	}
	return msg
}
