package converter

import "strings"

// Suggest returns the keyword closest to the command words of an
// unrecognized line, or "" when nothing is within edit distance 2. A line
// whose command words already spell a keyword gets no suggestion.
// Assertion keywords ("should ...") are compared against the words after the
// selector. For short words (≤ 5 chars) the first character must match, and
// for very short words (≤ 4 chars) only distance 1 is allowed, to avoid
// suggestions like "wait" → "end".
func Suggest(line string) string {
	words := strings.Fields(strings.ToLower(line))
	if len(words) == 0 {
		return ""
	}
	best := ""
	bestDist := 3
	for _, kw := range Keywords() {
		n := len(strings.Fields(kw))
		start := 0
		if strings.HasPrefix(kw, "should") {
			start = 1
		}
		if start+n > len(words) {
			continue
		}
		candidate := strings.Join(words[start:start+n], " ")
		if candidate == kw {
			return ""
		}
		if d, ok := nearKeyword(candidate, kw); ok && d < bestDist {
			bestDist = d
			best = kw
		}
	}
	return best
}

func nearKeyword(s, kw string) (int, bool) {
	if len(s) < 3 || len(kw) < 3 {
		return 0, false
	}
	if (len(s) <= 5 || len(kw) <= 5) && s[0] != kw[0] {
		return 0, false
	}
	maxDist := 2
	if min(len(s), len(kw)) <= 4 {
		maxDist = 1
	}
	d := levenshtein(s, kw)
	return d, d > 0 && d <= maxDist
}

// levenshtein computes the Damerau-Levenshtein distance between two strings,
// counting a transposition of adjacent characters as a single edit.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prevprev := make([]int, lb+1)
	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			best := min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				best = min(best, prevprev[j-2]+1)
			}
			curr[j] = best
		}
		prevprev = prev
		prev = curr
	}

	return prev[lb]
}
