/*
Package engine implements the recommendation orchestrator.

The orchestrator owns the train/predict request lifecycle: it delegates
training to the affinity model, persists the result in the model store,
combines affinity and preference-match scores into a final ranking, and
converts every internal failure into an in-band error response. Nothing
panics or errors across this boundary.
*/
package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/luxestream/recommender/internal/affinity"
	"github.com/luxestream/recommender/internal/feature"
	"github.com/luxestream/recommender/internal/match"
	"github.com/luxestream/recommender/internal/protocol"
	"github.com/luxestream/recommender/internal/store"
)

const (
	// DefaultMixWeight is the share of the final score taken by the learned
	// affinity; the preference match takes the remainder.
	DefaultMixWeight = 0.6

	// DefaultTopK is the number of recommendations returned by a predict
	// call. Zero disables truncation.
	DefaultTopK = 10
)

// Options tune the orchestrator. Zero values select the defaults.
type Options struct {
	// MixWeight is the affinity share of the final score, in (0,1].
	MixWeight float64

	// TopK truncates the ranked list. Negative means "return all".
	TopK int
}

// Orchestrator combines the affinity model and the preference matcher into
// ranked recommendations.
type Orchestrator struct {
	store     store.Store
	mixWeight float64
	topK      int
}

// New creates an orchestrator backed by the given model store.
func New(st store.Store, opts Options) *Orchestrator {
	mix := opts.MixWeight
	if mix <= 0 || mix > 1 {
		mix = DefaultMixWeight
	}

	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 {
		topK = 0
	}

	return &Orchestrator{
		store:     st,
		mixWeight: mix,
		topK:      topK,
	}
}

// Handle dispatches a validated request to the matching operation. A panic
// in any downstream component resolves to an error response, never a crash.
func (o *Orchestrator) Handle(req *protocol.Request) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in %s: %v", req.Action, r)
			resp = protocol.Errorf("internal error while handling %s request", req.Action)
		}
	}()

	switch req.Action {
	case protocol.ActionTrain:
		return o.TrainModel(req.Movies, req.Preferences)
	case protocol.ActionPredict:
		return o.GetRecommendations(req.Movies, req.Preferences.Primary())
	default:
		return protocol.Errorf("invalid action: %q", req.Action)
	}
}

// TrainModel trains the affinity model on the corpus and persists it under
// the owner's slot. Training is a full retrain; it never updates an existing
// model incrementally.
func (o *Orchestrator) TrainModel(movies []protocol.Movie, prefsList protocol.PreferencesList) protocol.Response {
	if len(movies) == 0 {
		return protocol.Errorf("cannot train on an empty movie corpus")
	}

	model, err := affinity.Train(movies, prefsList)
	if err != nil {
		return protocol.Errorf("training failed: %v", err)
	}

	params, err := model.EncodeParams()
	if err != nil {
		return protocol.Errorf("training failed: %v", err)
	}

	rec := store.ModelRecord{
		Owner:     ownerFor(prefsList),
		Version:   model.Version,
		TrainedAt: model.TrainedAt,
		Params:    params,
	}
	if err := o.store.SaveModel(rec); err != nil {
		return protocol.Errorf("failed to persist trained model: %v", err)
	}

	return protocol.Success("model trained successfully")
}

// GetRecommendations scores and ranks the candidate movies for one user.
// An absent model is not an error: scoring falls back to the preference
// match plus the catalog rating signal.
func (o *Orchestrator) GetRecommendations(movies []protocol.Movie, prefs protocol.UserPreferences) protocol.Response {
	// No candidates is a valid outcome, distinct from a failure to compute.
	if len(movies) == 0 {
		return protocol.SuccessWithRecommendations(nil)
	}

	affinityScores := o.affinityScores(movies, prefs)

	recs := make([]protocol.Recommendation, 0, len(movies))
	for i, movie := range movies {
		prefScore := match.Score(movie, prefs)
		final := o.mixWeight*affinityScores[i] + (1-o.mixWeight)*prefScore

		recs = append(recs, protocol.Recommendation{
			MovieID:             movie.MovieID,
			Title:               movie.Title,
			Score:               final,
			ModelScore:          affinityScores[i],
			UserPreferenceScore: prefScore,
			PosterPath:          movie.PosterPath,
			Overview:            movie.Overview,
		})
	}

	// Final score descending; ties by preference score descending, then by
	// movie ID ascending so repeated calls rank identically.
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].UserPreferenceScore != recs[j].UserPreferenceScore {
			return recs[i].UserPreferenceScore > recs[j].UserPreferenceScore
		}
		return recs[i].MovieID < recs[j].MovieID
	})

	if o.topK > 0 && len(recs) > o.topK {
		recs = recs[:o.topK]
	}

	return protocol.SuccessWithRecommendations(recs)
}

// affinityScores loads the user's model and scores all candidates with it.
// Store misses and stale blobs degrade to the rating-based fallback.
func (o *Orchestrator) affinityScores(movies []protocol.Movie, prefs protocol.UserPreferences) []float64 {
	rec, err := o.loadModel(prefs.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNoModel) {
			log.Printf("Warning: model load failed, using fallback scores: %v", err)
		}
		return fallbackScores(movies)
	}

	model, err := affinity.DecodeParams(rec.Params)
	if err != nil {
		log.Printf("Warning: stored model %s is unreadable, using fallback scores: %v", rec.Version, err)
		return fallbackScores(movies)
	}

	return model.ScoreAll(movies)
}

// loadModel tries the user's slot first and falls back to the shared
// default slot.
func (o *Orchestrator) loadModel(userID string) (*store.ModelRecord, error) {
	owner := strings.TrimSpace(userID)
	if owner != "" {
		rec, err := o.store.LoadModel(owner)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, store.ErrNoModel) {
			return nil, err
		}
	}

	return o.store.LoadModel(store.DefaultOwner)
}

// fallbackScores is the model-free affinity: the candidate's own normalized
// catalog rating. Predict never fails solely because no model exists.
func fallbackScores(movies []protocol.Movie) []float64 {
	scores := make([]float64, len(movies))
	for i, m := range movies {
		scores[i] = feature.NormalizeRating(m.Rating)
	}
	return scores
}

// ownerFor picks the model slot for a training run: the single user's ID
// when training for one user, otherwise the shared default slot.
func ownerFor(prefsList protocol.PreferencesList) string {
	if len(prefsList) == 1 {
		if id := strings.TrimSpace(prefsList[0].UserID); id != "" {
			return id
		}
	}
	return store.DefaultOwner
}

// String describes the orchestrator configuration, used in logs.
func (o *Orchestrator) String() string {
	return fmt.Sprintf("engine(mix=%.2f, topK=%d)", o.mixWeight, o.topK)
}
