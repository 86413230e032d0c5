package affinity

import (
	"fmt"
	"log"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/luxestream/recommender/internal/protocol"
)

// textScores scores every candidate against the model's taste text with an
// in-memory BM25 index, min-max normalized to [0,1] across the candidate
// set. Returns nil when the model has no taste text or the index cannot be
// built; callers fold the text weight into the other components.
func (m *Model) textScores(movies []protocol.Movie) map[string]float64 {
	if m.TasteText == "" || len(movies) == 0 {
		return nil
	}

	index, err := buildCandidateIndex(movies)
	if err != nil {
		log.Printf("Warning: text scoring disabled: %v", err)
		return nil
	}
	defer index.Close()

	query := bleve.NewMatchQuery(m.TasteText)
	request := bleve.NewSearchRequestOptions(query, len(movies), 0, false)

	results, err := index.Search(request)
	if err != nil {
		log.Printf("Warning: text scoring disabled: %v", err)
		return nil
	}

	scores := make(map[string]float64, len(results.Hits))
	minScore := 0.0
	maxScore := 0.0
	for i, hit := range results.Hits {
		scores[hit.ID] = hit.Score
		if i == 0 || hit.Score < minScore {
			minScore = hit.Score
		}
		if i == 0 || hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	// Min-max normalize. Candidates without a hit stay at zero; when all
	// hits share one score they all map to 1.0.
	if maxScore == minScore {
		for id := range scores {
			scores[id] = 1.0
		}
		return scores
	}

	for id, s := range scores {
		scores[id] = (s - minScore) / (maxScore - minScore)
	}

	return scores
}

// buildCandidateIndex indexes the candidate movies in memory for one call.
// The index is request-local and discarded at call completion.
func buildCandidateIndex(movies []protocol.Movie) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := index.NewBatch()
	for _, m := range movies {
		doc := map[string]interface{}{
			"title":    m.Title,
			"genre":    m.Genre,
			"director": m.Director,
			"overview": m.Overview,
		}
		if err := batch.Index(m.MovieID, doc); err != nil {
			log.Printf("Warning: failed to index movie %s: %v", m.MovieID, err)
		}
	}

	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to batch index candidates: %w", err)
	}

	return index, nil
}

// buildIndexMapping creates the Bleve index mapping for candidate movies.
func buildIndexMapping() mapping.IndexMapping {
	movieMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"title", "genre", "director", "overview"} {
		movieMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", movieMapping)

	return indexMapping
}
