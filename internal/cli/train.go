package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/config"
	"github.com/luxestream/recommender/internal/worker"
)

// NewTrainCmd creates the 'train' command.
//
// Training runs through the same worker boundary the storefront uses: the
// command spawns an isolated worker process and feeds it the request.
func NewTrainCmd() *cobra.Command {
	var moviesPath string
	var prefsPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the affinity model from a movie corpus",
		Long: `Train the affinity model on a JSON movie corpus, optionally with one or
more users' preferences and watch history, and persist it to the model store.

Training is a full retrain: the previous model for the same owner is
atomically replaced.`,
		Example: `  recommender train --movies corpus.json
  recommender train --movies corpus.json --preferences user.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd.Context(), moviesPath, prefsPath)
		},
	}

	cmd.Flags().StringVarP(&moviesPath, "movies", "m", "", "Path to JSON array of movies (required)")
	cmd.Flags().StringVarP(&prefsPath, "preferences", "p", "", "Path to JSON preferences object or array")
	cmd.MarkFlagRequired("movies")

	return cmd
}

func runTrain(ctx context.Context, moviesPath, prefsPath string) error {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	movies, err := loadMovies(moviesPath)
	if err != nil {
		return err
	}

	prefs, err := loadPreferences(prefsPath)
	if err != nil {
		return err
	}

	runner, err := worker.NewSelfRunner(cfg.WorkerTimeout())
	if err != nil {
		return err
	}

	resp, err := runner.TrainModel(ctx, movies, prefs)
	if err != nil {
		return fmt.Errorf("train call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("training rejected: %s", resp.Message)
	}

	fmt.Printf("Trained on %d movies.\n", len(movies))
	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	return nil
}
