/*
Package feature encodes movies into fixed-shape numeric vectors.

Categorical fields (genre, language, director) are one-hot encoded against a
closed vocabulary discovered at training time. Slot 0 of every block is
reserved for values not seen during training, so prediction never fails on an
unknown category. The catalog rating is rescaled from 0-10 to [0,1].

Encoding is deterministic: the vocabulary is sorted on construction and
identical inputs always produce identical vectors.
*/
package feature

import (
	"sort"
	"strings"

	"github.com/luxestream/recommender/internal/protocol"
)

// maxCatalogRating is the upper bound of the catalog rating scale.
const maxCatalogRating = 10.0

// Vocabulary is the closed set of categorical values seen at training time.
// It is serialized as part of the trained model blob.
type Vocabulary struct {
	// Genres, Languages and Directors are sorted, deduplicated value lists.
	// Index 0 of each one-hot block is the unknown bucket; value k of a
	// list maps to slot k+1.
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
	Directors []string `json:"directors"`
}

// BuildVocabulary discovers the vocabulary from a movie corpus. Empty field
// values are skipped; they encode into the unknown bucket like unseen ones.
func BuildVocabulary(movies []protocol.Movie) Vocabulary {
	genres := make(map[string]bool)
	languages := make(map[string]bool)
	directors := make(map[string]bool)

	for _, m := range movies {
		if v := normalize(m.Genre); v != "" {
			genres[v] = true
		}
		if v := normalize(m.Language); v != "" {
			languages[v] = true
		}
		if v := normalize(m.Director); v != "" {
			directors[v] = true
		}
	}

	return Vocabulary{
		Genres:    sortedKeys(genres),
		Languages: sortedKeys(languages),
		Directors: sortedKeys(directors),
	}
}

// Dimension returns the length of vectors produced by this vocabulary:
// one-hot blocks (each with an unknown slot) plus the rating component.
func (v Vocabulary) Dimension() int {
	return (len(v.Genres) + 1) + (len(v.Languages) + 1) + (len(v.Directors) + 1) + 1
}

// Encode produces the feature vector for a movie.
func (v Vocabulary) Encode(m protocol.Movie) []float64 {
	vec := make([]float64, 0, v.Dimension())

	vec = appendOneHot(vec, v.Genres, m.Genre)
	vec = appendOneHot(vec, v.Languages, m.Language)
	vec = appendOneHot(vec, v.Directors, m.Director)
	vec = append(vec, NormalizeRating(m.Rating))

	return vec
}

// NormalizeRating rescales a 0-10 catalog rating to [0,1], clamping values
// outside the scale.
func NormalizeRating(rating float64) float64 {
	if rating <= 0 {
		return 0
	}
	if rating >= maxCatalogRating {
		return 1
	}
	return rating / maxCatalogRating
}

// appendOneHot appends a one-hot block for value against vocab. Slot 0 is
// the unknown bucket.
func appendOneHot(vec []float64, vocab []string, value string) []float64 {
	block := make([]float64, len(vocab)+1)

	idx := 0
	if v := normalize(value); v != "" {
		// Binary search works because the vocabulary is sorted.
		pos := sort.SearchStrings(vocab, v)
		if pos < len(vocab) && vocab[pos] == v {
			idx = pos + 1
		}
	}
	block[idx] = 1

	return append(vec, block...)
}

// normalize canonicalizes a categorical value for vocabulary lookups.
// Storefront data is user-entered, so comparisons are case-insensitive.
func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
