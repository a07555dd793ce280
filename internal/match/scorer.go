package match

import (
	"errors"
	"math"
	"strings"
	"unicode"
)

// ErrEmptyPool is returned when a pool yields no usable vocabulary, for
// example when it is empty or contains only empty strings. Callers treat it
// as zero confidence for every candidate.
var ErrEmptyPool = errors.New("no usable name pool")

// Scorer builds a TF-IDF vector space over a pool of names and scores a query
// against every pool member with cosine similarity. The space is fit on the
// pool only; query terms outside the pool vocabulary are ignored. Pools are
// small and request-scoped, so the space is rebuilt on every call.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreAll returns one score per pool entry, aligned index-for-index with the
// pool. Every score is in [0, 1].
func (s *Scorer) ScoreAll(query string, pool []string) ([]float64, error) {
	docs := make([][]string, len(pool))
	vocab := make(map[string]int)
	df := make(map[string]int)

	for i, name := range pool {
		terms := tokenize(name)
		docs[i] = terms

		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			if _, ok := vocab[term]; !ok {
				vocab[term] = len(vocab)
			}
			if !seen[term] {
				df[term]++
				seen[term] = true
			}
		}
	}

	if len(vocab) == 0 {
		return nil, ErrEmptyPool
	}

	// Smoothed idf, the same weighting scikit-learn applies by default:
	// ln((1+n)/(1+df)) + 1.
	n := float64(len(pool))
	idf := make([]float64, len(vocab))
	for term, idx := range vocab {
		idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	queryVec := vectorize(tokenize(query), vocab, idf)

	scores := make([]float64, len(pool))
	for i, terms := range docs {
		scores[i] = clampUnit(dot(queryVec, vectorize(terms, vocab, idf)))
	}

	return scores, nil
}

// vectorize builds an L2-normalized TF-IDF vector for the given terms. Terms
// outside the vocabulary are dropped.
func vectorize(terms []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(idf))
	for _, term := range terms {
		if idx, ok := vocab[term]; ok {
			vec[idx] += idf[idx]
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// clampUnit guards against floating point drift above 1.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// tokenize lowercases the input and splits it on any non-letter, non-digit
// rune. Single characters are kept; names like "C++ Developer" still produce
// a usable token stream.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
