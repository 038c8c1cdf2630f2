package linking

import "strings"

// levenshtein is the classic edit distance over runes, two-row variant.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// similarity scores two normalized strings in [0,1]. Exact equality
// short-circuits to 1.0; containment gets a boosted score proportional to the
// length ratio; otherwise 1 - dist/maxLen.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	longer := la
	shorter := lb
	if lb > la {
		longer, shorter = lb, la
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.85 + 0.10*float64(shorter)/float64(longer)
	}

	dist := levenshtein(a, b)
	return 1.0 - float64(dist)/float64(longer)
}
