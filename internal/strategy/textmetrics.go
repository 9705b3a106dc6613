package strategy

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// tokenize splits a string into case-folded whitespace tokens.
func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// tokenSet builds a set of case-folded tokens.
func tokenSet(s string) map[string]struct{} {
	tokens := tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// TokenJaccard computes the Jaccard similarity of the case-folded token
// sets of two strings. Two empty token sets yield 0.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// LevenshteinSimilarity returns 1 - distance/max(len) where distance is
// the edit distance over Unicode code points. Two empty strings are
// identical and score 1.
func LevenshteinSimilarity(a, b string) float64 {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)

	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// termCounts builds a raw term-frequency bag from case-folded
// whitespace tokens.
func termCounts(s string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenize(s) {
		counts[tok]++
	}
	return counts
}

// CosineSimilarity computes the term-frequency cosine similarity of two
// strings. Similarity is 0 when either bag is empty.
func CosineSimilarity(a, b string) float64 {
	bagA := termCounts(a)
	bagB := termCounts(b)

	if len(bagA) == 0 || len(bagB) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, countA := range bagA {
		if countB, ok := bagB[term]; ok {
			dot += float64(countA) * float64(countB)
		}
		normA += float64(countA) * float64(countA)
	}
	for _, countB := range bagB {
		normB += float64(countB) * float64(countB)
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
