/*
Package match implements the rule-based preference scorer.

The score is the fraction of satisfied criteria among genre, language and
director, counting only criteria for which the user actually stated a
preference. A user with no stated preferences gets a neutral 0.5 for every
movie rather than a zero.
*/
package match

import (
	"strings"

	"github.com/luxestream/recommender/internal/protocol"
)

// Neutral is the score returned when the user stated no preferences at all.
const Neutral = 0.5

// Score computes the preference-match score for a movie, in [0,1].
// Deterministic and side-effect free.
func Score(movie protocol.Movie, prefs protocol.UserPreferences) float64 {
	criteria := 0
	matched := 0

	if len(prefs.FavoriteGenres) > 0 {
		criteria++
		if containsFold(prefs.FavoriteGenres, movie.Genre) {
			matched++
		}
	}

	if len(prefs.PreferredLanguages) > 0 {
		criteria++
		if containsFold(prefs.PreferredLanguages, movie.Language) {
			matched++
		}
	}

	if len(prefs.FavoriteDirectors) > 0 {
		criteria++
		if containsFold(prefs.FavoriteDirectors, movie.Director) {
			matched++
		}
	}

	if criteria == 0 {
		return Neutral
	}

	return float64(matched) / float64(criteria)
}

// containsFold reports whether values contains target, ignoring case and
// surrounding whitespace. An empty target never matches.
func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}

	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
