package similarity

import (
	"fmt"
	"math"
	"strings"

	"github.com/ankidiff/ankidiff/internal/model"
)

// TextSimilarity scores two already-normalized strings in [0,1].
// Implementations are pure and symmetric: Score(a,b) == Score(b,a).
type TextSimilarity interface {
	Name() model.Algorithm
	Score(a, b string) float64
}

// ForAlgorithm returns the scoring strategy for the given algorithm.
func ForAlgorithm(algorithm model.Algorithm) (TextSimilarity, error) {
	switch algorithm {
	case model.AlgorithmSequence:
		return sequenceSimilarity{}, nil
	case model.AlgorithmJaccard:
		return jaccardSimilarity{}, nil
	case model.AlgorithmCosine:
		return cosineSimilarity{}, nil
	case model.AlgorithmLevenshtein:
		return levenshteinSimilarity{}, nil
	case model.AlgorithmCombined:
		return combinedSimilarity{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", algorithm)
	}
}

// sequenceSimilarity is the Ratcliff/Obershelp matching-block ratio:
// 2*M / (len(a)+len(b)) where M is the total length of recursively found
// longest common blocks.
type sequenceSimilarity struct{}

func (sequenceSimilarity) Name() model.Algorithm { return model.AlgorithmSequence }

func (sequenceSimilarity) Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	// Evaluate in canonical argument order so tie-breaking between equal-length
	// blocks cannot differ between Score(a,b) and Score(b,a).
	if len(ra) > len(rb) || (len(ra) == len(rb) && a > b) {
		ra, rb = rb, ra
	}
	matched := matchingBlockTotal(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

func matchingBlockTotal(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingBlockTotal(a[:ai], b[:bi]) +
		matchingBlockTotal(a[ai+size:], b[bi+size:])
}

// longestMatch finds the leftmost longest common substring of a and b.
func longestMatch(a, b []rune) (ai, bi, size int) {
	j2len := make(map[int]int)
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] == b[j] {
				k := j2len[j-1] + 1
				next[j] = k
				if k > size {
					ai, bi, size = i-k+1, j-k+1, k
				}
			}
		}
		j2len = next
	}
	return ai, bi, size
}

// jaccardSimilarity is set-intersection over union of whitespace tokens.
type jaccardSimilarity struct{}

func (jaccardSimilarity) Name() model.Algorithm { return model.AlgorithmJaccard }

func (jaccardSimilarity) Score(a, b string) float64 {
	set1 := tokenSet(a)
	set2 := tokenSet(b)

	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}

	intersection := 0
	for token := range set1 {
		if _, ok := set2[token]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}

// cosineSimilarity is the cosine of term-frequency vectors over whitespace
// tokens.
type cosineSimilarity struct{}

func (cosineSimilarity) Name() model.Algorithm { return model.AlgorithmCosine }

func (cosineSimilarity) Score(a, b string) float64 {
	tokens1 := strings.Fields(a)
	tokens2 := strings.Fields(b)

	if len(tokens1) == 0 && len(tokens2) == 0 {
		return 1.0
	}
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	freq1 := termFrequencies(tokens1)
	freq2 := termFrequencies(tokens2)

	var dot, mag1, mag2 float64
	for token, count := range freq1 {
		dot += float64(count) * float64(freq2[token])
		mag1 += float64(count) * float64(count)
	}
	for _, count := range freq2 {
		mag2 += float64(count) * float64(count)
	}

	if mag1 == 0.0 || mag2 == 0.0 {
		return 0.0
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
}

func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}
	return freq
}

// levenshteinSimilarity is 1 - edit_distance/max_len with unit-cost
// insert/delete/substitute.
type levenshteinSimilarity struct{}

func (levenshteinSimilarity) Name() model.Algorithm { return model.AlgorithmLevenshtein }

func (levenshteinSimilarity) Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshteinDistance(ra, rb)
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance runs the single-row DP recurrence, iterating the row
// over the shorter string to keep memory at O(min(len(a),len(b))).
func levenshteinDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i, ca := range a {
		prev := row[0]
		row[0] = i + 1
		for j, cb := range b {
			cost := 0
			if ca != cb {
				cost = 1
			}
			current := row[j+1]
			row[j+1] = minInt(row[j+1]+1, row[j]+1, prev+cost)
			prev = current
		}
	}
	return row[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// combinedSimilarity blends the four base algorithms with fixed internal
// weights (sequence 0.4, Jaccard 0.3, cosine 0.2, Levenshtein 0.1). These
// weights are part of the algorithm, not configuration.
type combinedSimilarity struct{}

func (combinedSimilarity) Name() model.Algorithm { return model.AlgorithmCombined }

func (combinedSimilarity) Score(a, b string) float64 {
	return sequenceSimilarity{}.Score(a, b)*0.4 +
		jaccardSimilarity{}.Score(a, b)*0.3 +
		cosineSimilarity{}.Score(a, b)*0.2 +
		levenshteinSimilarity{}.Score(a, b)*0.1
}
