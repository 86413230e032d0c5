/*
Package affinity implements the trainable affinity model.

Training fits three signals from the corpus and the user's watch history:

  - a rating-weighted centroid of the feature vectors of liked movies
  - a corpus popularity prior (mean normalized catalog rating)
  - a taste profile text built from liked movies, scored against candidates
    with a BM25 text index at prediction time

Scoring blends cosine similarity to the centroid, the normalized text score
and the candidate's own rating into a value in [0,1]. A model trained on an
empty watch history is degenerate but valid: scoring falls back to the
popularity/rating signal alone.
*/
package affinity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luxestream/recommender/internal/feature"
	"github.com/luxestream/recommender/internal/protocol"
)

const (
	// similarityWeight is the weight of centroid similarity in the affinity
	// score (0.6 = 60%).
	similarityWeight = 0.6

	// textWeight is the weight of the taste-text BM25 score (0.2 = 20%).
	// When the model has no taste text this weight folds into similarity.
	textWeight = 0.2

	// ratingWeight is the weight of the candidate's normalized catalog
	// rating (0.2 = 20%).
	ratingWeight = 0.2

	// likedThreshold is the minimum user rating (0-5 scale) for a watched
	// movie to count as a positive signal.
	likedThreshold = 3.0

	// unratedWatchWeight is the centroid weight for watched-but-unrated
	// movies. Watching is a mild positive signal on its own.
	unratedWatchWeight = 0.5

	// maxUserRating is the top of the watch-history rating scale.
	maxUserRating = 5.0
)

// Model holds the trained affinity parameters. It is serialized as the
// opaque blob stored in the model store.
type Model struct {
	// Vocabulary is the closed categorical vocabulary discovered from the
	// training corpus.
	Vocabulary feature.Vocabulary `json:"vocabulary"`

	// Centroid is the rating-weighted mean vector of liked movies. Empty
	// when the watch history provided no positive signal.
	Centroid []float64 `json:"centroid,omitempty"`

	// Popularity is the mean normalized rating of the training corpus.
	Popularity float64 `json:"popularity"`

	// TasteText is the text profile of liked movies, matched against
	// candidate titles/overviews at prediction time.
	TasteText string `json:"taste_text,omitempty"`

	// Version identifies this training run.
	Version string `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`
}

// Train fits a model from a movie corpus and one or more users' preferences.
// The corpus must be non-empty; everything else degrades gracefully.
func Train(movies []protocol.Movie, prefsList protocol.PreferencesList) (*Model, error) {
	if len(movies) == 0 {
		return nil, fmt.Errorf("cannot train on an empty movie corpus")
	}

	vocab := feature.BuildVocabulary(movies)

	byID := make(map[string]protocol.Movie, len(movies))
	popularity := 0.0
	for _, m := range movies {
		byID[m.MovieID] = m
		popularity += feature.NormalizeRating(m.Rating)
	}
	popularity /= float64(len(movies))

	centroid := make([]float64, vocab.Dimension())
	totalWeight := 0.0
	var tasteTerms []string
	seenTerms := make(map[string]bool)

	addTerm := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		key := strings.ToLower(term)
		if seenTerms[key] {
			return
		}
		seenTerms[key] = true
		tasteTerms = append(tasteTerms, term)
	}

	for _, prefs := range prefsList {
		for _, entry := range prefs.WatchHistory {
			movie, ok := byID[entry.MovieID]
			if !ok {
				// Watched movie outside the training corpus carries no
				// feature signal.
				continue
			}

			weight := 0.0
			switch {
			case entry.Rating >= likedThreshold:
				weight = entry.Rating / maxUserRating
			case entry.Rating == 0:
				weight = unratedWatchWeight
			default:
				// Disliked: excluded from the positive centroid.
				continue
			}

			vec := vocab.Encode(movie)
			for i, v := range vec {
				centroid[i] += weight * v
			}
			totalWeight += weight

			addTerm(movie.Title)
			addTerm(movie.Genre)
			addTerm(movie.Director)
		}
	}

	model := &Model{
		Vocabulary: vocab,
		Popularity: popularity,
		Version:    uuid.NewString(),
		TrainedAt:  time.Now().UTC(),
	}

	if totalWeight > 0 {
		for i := range centroid {
			centroid[i] /= totalWeight
		}
		model.Centroid = centroid
		model.TasteText = strings.Join(tasteTerms, " ")
	}

	return model, nil
}

// EncodeParams serializes the model for the store.
func (m *Model) EncodeParams() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model params: %w", err)
	}
	return data, nil
}

// DecodeParams deserializes a model from a stored parameter blob.
func DecodeParams(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model params: %w", err)
	}
	return &m, nil
}

// ScoreAll scores every candidate, returning affinity values in [0,1] in the
// same order as the input. Batch scoring lets the text component normalize
// BM25 scores across the candidate set.
func (m *Model) ScoreAll(movies []protocol.Movie) []float64 {
	scores := make([]float64, len(movies))
	if len(movies) == 0 {
		return scores
	}

	textScores := m.textScores(movies)

	simWeight := similarityWeight
	txtWeight := textWeight
	if textScores == nil {
		simWeight += txtWeight
		txtWeight = 0
	}

	for i, movie := range movies {
		sim := m.similarity(movie)
		rating := feature.NormalizeRating(movie.Rating)

		score := simWeight*sim + ratingWeight*rating
		if txtWeight > 0 {
			score += txtWeight * textScores[movie.MovieID]
		}

		scores[i] = clamp01(score)
	}

	return scores
}

// Score scores a single candidate. The batch text component is skipped; used
// where only the feature-space affinity matters.
func (m *Model) Score(movie protocol.Movie) float64 {
	sim := m.similarity(movie)
	rating := feature.NormalizeRating(movie.Rating)
	return clamp01((similarityWeight+textWeight)*sim + ratingWeight*rating)
}

// similarity returns the centroid similarity component. Without a centroid
// (empty watch history) the candidate's own popularity stands in, so the
// model still orders candidates by the corpus-wide rating signal.
func (m *Model) similarity(movie protocol.Movie) float64 {
	if len(m.Centroid) == 0 {
		pop := feature.NormalizeRating(movie.Rating)
		return (pop + m.Popularity) / 2
	}

	vec := m.Vocabulary.Encode(movie)
	return cosine(vec, m.Centroid)
}

// cosine computes cosine similarity. Both inputs are non-negative, so the
// result is already in [0,1].
func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
