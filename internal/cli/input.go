package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxestream/recommender/internal/protocol"
)

// loadMovies reads a JSON array of movies from a file.
func loadMovies(path string) ([]protocol.Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read movies file: %w", err)
	}

	var movies []protocol.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("failed to parse movies file %s: %w", path, err)
	}

	return movies, nil
}

// loadPreferences reads a preferences object or array from a file.
func loadPreferences(path string) (protocol.PreferencesList, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	var prefs protocol.PreferencesList
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file %s: %w", path, err)
	}

	return prefs, nil
}
