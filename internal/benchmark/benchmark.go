/*
Package benchmark measures end-to-end predict latency.

Each measured call goes through the full worker boundary, so the numbers
include process startup, model load and scoring for the whole candidate set.
The reference budget is scoring 1000 candidates in under 5 seconds with
call-to-call variance below roughly 20% of the mean.
*/
package benchmark

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/luxestream/recommender/internal/protocol"
)

// LatencyBudget is the reference budget for a 1000-candidate predict call.
const LatencyBudget = 5 * time.Second

// VarianceBudget is the acceptable stddev/mean ratio across repeated calls.
const VarianceBudget = 0.20

// Predictor runs one predict call. Satisfied by worker.Runner and, in
// tests, by in-process fakes.
type Predictor interface {
	GetRecommendations(ctx context.Context, movies []protocol.Movie, prefs protocol.UserPreferences) (protocol.Response, error)
}

// Result contains latency measurements for a benchmark run.
type Result struct {
	Calls         int           `json:"calls"`
	MovieCount    int           `json:"movieCount"`
	Failures      int           `json:"failures"`
	Mean          time.Duration `json:"mean"`
	Min           time.Duration `json:"min"`
	Max           time.Duration `json:"max"`
	StdDev        time.Duration `json:"stdDev"`
	VarianceRatio float64       `json:"varianceRatio"`
	WithinBudget  bool          `json:"withinBudget"`
}

// Synthetic data pools. Small on purpose: real catalogs repeat genres and
// languages far more than directors.
var (
	genrePool    = []string{"Action", "Drama", "Comedy", "Thriller", "Sci-Fi", "Horror", "Romance", "Documentary"}
	languagePool = []string{"English", "French", "Korean", "Japanese", "Spanish", "Hindi"}
	directorPool = []string{
		"Christopher Nolan", "Greta Gerwig", "Bong Joon-ho", "Denis Villeneuve",
		"Ava DuVernay", "Martin Scorsese", "Chloe Zhao", "Jordan Peele",
	}
)

// SyntheticMovies generates a deterministic corpus of n movies.
func SyntheticMovies(n int, seed int64) []protocol.Movie {
	rng := rand.New(rand.NewSource(seed))

	movies := make([]protocol.Movie, n)
	for i := 0; i < n; i++ {
		movies[i] = protocol.Movie{
			MovieID:  fmt.Sprintf("syn-%06d", i),
			Title:    fmt.Sprintf("Synthetic Feature %d", i),
			Genre:    genrePool[rng.Intn(len(genrePool))],
			Language: languagePool[rng.Intn(len(languagePool))],
			Director: directorPool[rng.Intn(len(directorPool))],
			Rating:   math.Round(rng.Float64()*100) / 10,
			Overview: fmt.Sprintf("A %s story, take %d.", strings.ToLower(genrePool[rng.Intn(len(genrePool))]), i),
		}
	}

	return movies
}

// SyntheticPreferences generates a deterministic preference profile with a
// short watch history drawn from the given corpus.
func SyntheticPreferences(movies []protocol.Movie, seed int64) protocol.UserPreferences {
	rng := rand.New(rand.NewSource(seed))

	prefs := protocol.UserPreferences{
		UserID:             fmt.Sprintf("bench-user-%d", seed),
		FavoriteGenres:     []string{genrePool[rng.Intn(len(genrePool))]},
		PreferredLanguages: []string{languagePool[rng.Intn(len(languagePool))]},
		FavoriteDirectors:  []string{directorPool[rng.Intn(len(directorPool))]},
	}

	historySize := 5
	if historySize > len(movies) {
		historySize = len(movies)
	}
	for i := 0; i < historySize; i++ {
		movie := movies[rng.Intn(len(movies))]
		prefs.WatchHistory = append(prefs.WatchHistory, protocol.WatchHistoryEntry{
			MovieID:   movie.MovieID,
			Rating:    float64(3 + rng.Intn(3)),
			WatchedAt: time.Now().Add(-time.Duration(rng.Intn(90)) * 24 * time.Hour),
		})
	}

	return prefs
}

// RunLatency measures repeated predict calls over a synthetic corpus.
func RunLatency(ctx context.Context, p Predictor, movieCount, calls int) (*Result, error) {
	if movieCount <= 0 {
		movieCount = 1000
	}
	if calls <= 0 {
		calls = 5
	}

	movies := SyntheticMovies(movieCount, 42)
	prefs := SyntheticPreferences(movies, 42)

	durations := make([]time.Duration, 0, calls)
	failures := 0

	for i := 0; i < calls; i++ {
		start := time.Now()
		resp, err := p.GetRecommendations(ctx, movies, prefs)
		elapsed := time.Since(start)

		if err != nil || resp.IsError() {
			failures++
			continue
		}
		durations = append(durations, elapsed)
	}

	if len(durations) == 0 {
		return nil, fmt.Errorf("all %d benchmark calls failed", calls)
	}

	result := &Result{
		Calls:      calls,
		MovieCount: movieCount,
		Failures:   failures,
		Min:        durations[0],
		Max:        durations[0],
	}

	var total time.Duration
	for _, d := range durations {
		total += d
		if d < result.Min {
			result.Min = d
		}
		if d > result.Max {
			result.Max = d
		}
	}
	result.Mean = total / time.Duration(len(durations))

	var sumSq float64
	for _, d := range durations {
		diff := float64(d - result.Mean)
		sumSq += diff * diff
	}
	result.StdDev = time.Duration(math.Sqrt(sumSq / float64(len(durations))))
	if result.Mean > 0 {
		result.VarianceRatio = float64(result.StdDev) / float64(result.Mean)
	}
	result.WithinBudget = result.Max <= LatencyBudget

	return result, nil
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *Result) string {
	var sb strings.Builder

	status := "PASS"
	if !result.WithinBudget || result.Failures > 0 {
		status = "FAIL"
	}

	sb.WriteString("PREDICT LATENCY BENCHMARK\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("  candidates:  %d\n", result.MovieCount))
	sb.WriteString(fmt.Sprintf("  calls:       %d (%d failed)\n", result.Calls, result.Failures))
	sb.WriteString(fmt.Sprintf("  mean:        %v\n", result.Mean.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("  min / max:   %v / %v\n", result.Min.Round(time.Millisecond), result.Max.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("  variance:    %.1f%% of mean (budget %.0f%%)\n", result.VarianceRatio*100, VarianceBudget*100))
	sb.WriteString(fmt.Sprintf("  budget:      %v per call -> %s\n", LatencyBudget, status))

	return sb.String()
}
