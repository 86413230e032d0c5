/*
Package protocol defines the wire contract between the storefront and the
recommendation worker.

A worker invocation exchanges exactly one Request and one Response as JSON
documents over stdin/stdout. Requests are tagged by action ("train" or
"predict") and validated structurally before any scoring logic runs, so a
malformed payload is always reported as an in-band error rather than a crash.

Field names follow the storefront's existing JSON conventions (movieId,
favoriteGenres, model_score, ...) so the caller needs no translation layer.
*/
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Actions accepted by the worker.
const (
	ActionTrain   = "train"
	ActionPredict = "predict"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Movie is a single catalog entry supplied by the caller. The engine treats
// it as read-only; optional display fields are passed through untouched.
type Movie struct {
	// MovieID is an opaque identifier, stable across calls.
	MovieID string `json:"movieId"`

	// Title is the display title.
	Title string `json:"title"`

	// Genre is the primary genre tag. May be empty.
	Genre string `json:"genre,omitempty"`

	// Language is the language tag. May be empty.
	Language string `json:"language,omitempty"`

	// Director is the director's name. May be empty.
	Director string `json:"director,omitempty"`

	// Rating is the catalog rating on a 0-10 scale, possibly fractional.
	Rating float64 `json:"rating"`

	// PosterPath and Overview are pass-through display metadata.
	PosterPath string `json:"poster_path,omitempty"`
	Overview   string `json:"overview,omitempty"`

	// ReleaseDate is pass-through display metadata (YYYY-MM-DD).
	ReleaseDate string `json:"release_date,omitempty"`
}

// WatchHistoryEntry is one watched movie in a user's history, used as a
// training and affinity signal.
type WatchHistoryEntry struct {
	// MovieID references the watched movie.
	MovieID string `json:"movieId"`

	// Rating is the user's rating on a 0-5 scale, or 0 if not rated.
	Rating float64 `json:"rating,omitempty"`

	// WatchedAt is when the movie was watched.
	WatchedAt time.Time `json:"watchedAt,omitempty"`
}

// UserPreferences holds a user's explicit preferences and watch history.
// Supplied fresh on every call; the engine never persists it directly.
type UserPreferences struct {
	// UserID identifies the user. Also used as the model store key.
	UserID string `json:"userId,omitempty"`

	// FavoriteGenres, PreferredLanguages and FavoriteDirectors are the
	// explicit preference sets matched by the preference scorer.
	FavoriteGenres     []string `json:"favoriteGenres,omitempty"`
	PreferredLanguages []string `json:"preferredLanguages,omitempty"`
	FavoriteDirectors  []string `json:"favoriteDirectors,omitempty"`

	// WatchHistory is ordered most-recent-first by convention, though the
	// engine does not rely on the ordering.
	WatchHistory []WatchHistoryEntry `json:"watchHistory,omitempty"`
}

// PreferencesList accepts either a single preferences object or an array of
// them (batch training uses an array, predict uses a single object).
type PreferencesList []UserPreferences

// UnmarshalJSON decodes either form into a slice.
func (p *PreferencesList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*p = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []UserPreferences
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}

	var single UserPreferences
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = PreferencesList{single}
	return nil
}

// MarshalJSON writes a single object when the list has one element, matching
// what the storefront sends for predict calls.
func (p PreferencesList) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]UserPreferences(p))
}

// Primary returns the first preferences entry, or a zero value if none was
// supplied. Predict calls score against the primary entry.
func (p PreferencesList) Primary() UserPreferences {
	if len(p) == 0 {
		return UserPreferences{}
	}
	return p[0]
}

// Request is the single document read from the worker's stdin.
type Request struct {
	// Action selects the operation: "train" or "predict".
	Action string `json:"action"`

	// Movies is the corpus (train) or candidate list (predict).
	Movies []Movie `json:"movies"`

	// Preferences is one UserPreferences or an array for batch training.
	Preferences PreferencesList `json:"preferences,omitempty"`
}

// Recommendation is one scored candidate in a predict response.
type Recommendation struct {
	MovieID string `json:"movieId"`
	Title   string `json:"title"`

	// Score is the final mixed score in [0,1].
	Score float64 `json:"score"`

	// ModelScore is the learned affinity component in [0,1].
	ModelScore float64 `json:"model_score"`

	// UserPreferenceScore is the rule-based preference match in [0,1].
	UserPreferenceScore float64 `json:"user_preference_score"`

	// Pass-through display metadata.
	PosterPath string `json:"poster_path,omitempty"`
	Overview   string `json:"overview,omitempty"`
}

// Response is the single document written to the worker's stdout. It is
// either a well-formed success payload or a well-formed error payload.
type Response struct {
	Status string `json:"status"`

	// Message explains the failure when Status is "error", and optionally
	// annotates a train success.
	Message string `json:"message,omitempty"`

	// Recommendations is present on successful predict responses, even
	// when empty. Train responses omit it (omitzero keeps an empty
	// non-nil slice but drops a nil one).
	Recommendations []Recommendation `json:"recommendations,omitzero"`
}

// Success returns a success response with no payload (train).
func Success(message string) Response {
	return Response{Status: StatusSuccess, Message: message}
}

// SuccessWithRecommendations returns a successful predict response.
func SuccessWithRecommendations(recs []Recommendation) Response {
	if recs == nil {
		recs = []Recommendation{}
	}
	return Response{Status: StatusSuccess, Recommendations: recs}
}

// Errorf returns an in-band error response.
func Errorf(format string, args ...interface{}) Response {
	return Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether the response carries an in-band error.
func (r Response) IsError() bool {
	return r.Status == StatusError
}

// ParseRequest decodes and validates a request document.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid request document: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// Validate checks the structural invariants of a request. Business-level
// conditions (empty training corpus, absent model) are handled downstream
// with their own defined behavior.
func (r *Request) Validate() error {
	switch r.Action {
	case ActionTrain, ActionPredict:
	case "":
		return fmt.Errorf("missing action")
	default:
		return fmt.Errorf("invalid action: %q", r.Action)
	}

	for i, m := range r.Movies {
		if strings.TrimSpace(m.MovieID) == "" {
			return fmt.Errorf("movie at index %d is missing movieId", i)
		}
		if m.Rating < 0 || m.Rating > 10 {
			return fmt.Errorf("movie %s has rating %.2f outside 0-10", m.MovieID, m.Rating)
		}
	}

	for i, p := range r.Preferences {
		for j, w := range p.WatchHistory {
			if strings.TrimSpace(w.MovieID) == "" {
				return fmt.Errorf("preferences[%d].watchHistory[%d] is missing movieId", i, j)
			}
			if w.Rating < 0 || w.Rating > 5 {
				return fmt.Errorf("watch history rating %.2f outside 0-5 for movie %s", w.Rating, w.MovieID)
			}
		}
	}

	return nil
}
