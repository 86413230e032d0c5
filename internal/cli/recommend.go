package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/config"
	"github.com/luxestream/recommender/internal/worker"
)

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd() *cobra.Command {
	var moviesPath string
	var prefsPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank candidate movies for a user",
		Long: `Score and rank a JSON list of candidate movies for a user's preferences.

Works with or without a trained model: when the model store is empty the
ranking falls back to the preference match plus the catalog rating signal.`,
		Example: `  recommender recommend --movies candidates.json --preferences user.json
  recommender recommend -m candidates.json -p user.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd.Context(), moviesPath, prefsPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&moviesPath, "movies", "m", "", "Path to JSON array of candidate movies (required)")
	cmd.Flags().StringVarP(&prefsPath, "preferences", "p", "", "Path to JSON preferences object")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.MarkFlagRequired("movies")

	return cmd
}

func runRecommend(ctx context.Context, moviesPath, prefsPath string, jsonOutput bool) error {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	movies, err := loadMovies(moviesPath)
	if err != nil {
		return err
	}

	prefsList, err := loadPreferences(prefsPath)
	if err != nil {
		return err
	}

	runner, err := worker.NewSelfRunner(cfg.WorkerTimeout())
	if err != nil {
		return err
	}

	resp, err := runner.GetRecommendations(ctx, movies, prefsList.Primary())
	if err != nil {
		return fmt.Errorf("predict call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("prediction rejected: %s", resp.Message)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(resp.Recommendations, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode recommendations: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(resp.Recommendations) == 0 {
		fmt.Println("No candidates to rank.")
		return nil
	}

	fmt.Printf("Recommendations (%d):\n\n", len(resp.Recommendations))
	for i, rec := range resp.Recommendations {
		fmt.Printf("  %2d. %s\n", i+1, rec.Title)
		fmt.Printf("      score: %.3f (affinity %.3f, preference %.3f)\n",
			rec.Score, rec.ModelScore, rec.UserPreferenceScore)
	}

	return nil
}
