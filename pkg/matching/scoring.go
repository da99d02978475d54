package matching

import "strings"

// Scorer provides the string comparison used for fuzzy identity matching
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Normalize lowercases, trims and collapses internal whitespace so that
// "Les  Paul " and "les paul" compare equal.
func (s *Scorer) Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Similarity compares two strings after normalization.
// Returns a value between 0.0 (no similarity) and 1.0 (exact match).
func (s *Scorer) Similarity(a, b string) float64 {
	return s.Ratio(s.Normalize(a), s.Normalize(b))
}

// Ratio computes 2*M/T where M is the total length of the longest matching
// blocks between the two strings and T is the combined length. This is the
// classic sequence-matcher ratio; it rewards long shared substrings rather
// than counting character edits.
func (s *Scorer) Ratio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		if a == b {
			return 1.0
		}
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)

	// Positions of each rune in b, for the longest-match scan.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	type block struct{ alo, ahi, blo, bhi int }
	queue := []block{{0, len(ra), 0, len(rb)}}

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		bestI, bestJ, bestSize := longestMatch(ra, b2j, cur.alo, cur.ahi, cur.blo, cur.bhi)
		if bestSize == 0 {
			continue
		}
		matched += bestSize

		if cur.alo < bestI && cur.blo < bestJ {
			queue = append(queue, block{cur.alo, bestI, cur.blo, bestJ})
		}
		if bestI+bestSize < cur.ahi && bestJ+bestSize < cur.bhi {
			queue = append(queue, block{bestI + bestSize, cur.ahi, bestJ + bestSize, cur.bhi})
		}
	}

	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// longestMatch finds the longest matching block of a[alo:ahi] in b[blo:bhi].
// Among equally long matches it prefers the one starting earliest in a, then
// earliest in b.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (int, int, int) {
	bestI, bestJ, bestSize := alo, blo, 0

	// j2len[j] is the length of the match ending at a[i-1], b[j-1].
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newJ2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}

	return bestI, bestJ, bestSize
}
