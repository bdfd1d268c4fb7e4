package services

import "strings"

// NameSimilarity scores how alike two column names are, in [0,1].
// Names are normalized (lower-cased, separators stripped, trailing
// id/ids suffix removed) so that "donor_id" and "DonorID" both compare
// as "donor". Identical normalized names score 1.0; if either
// normalized name is empty the score is 0.
func NameSimilarity(a, b string) float64 {
	na := normalizeColumnName(a)
	nb := normalizeColumnName(b)
	if na == "" || nb == "" {
		return 0
	}

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}

	score := 1 - float64(levenshtein(na, nb))/float64(maxLen)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// normalizeColumnName lower-cases a column name, strips separator
// characters, and removes a trailing "id"/"ids" suffix. A bare "id"
// column normalizes to the empty string on purpose: it carries no
// entity name to compare against.
func normalizeColumnName(name string) string {
	s := strings.ToLower(name)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if strings.HasSuffix(s, "ids") {
		return strings.TrimSuffix(s, "ids")
	}
	return strings.TrimSuffix(s, "id")
}

// levenshtein computes the edit distance between two strings.
// Single-row dynamic programming over runes.
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
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
