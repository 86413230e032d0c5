/*
Package main is the entry point for the recommender CLI.

recommender is the hybrid movie recommendation engine behind the LuxeStream
storefront. It combines a trained affinity model with a rule-based
preference match to rank candidate movies for a user.

Usage:
  recommender [command]

Available Commands:
  worker      Run one train/predict request (stdio transport)
  train       Train the affinity model from a movie corpus
  recommend   Rank candidate movies for a user
  models      List trained models in the model store
  bench       Measure end-to-end predict latency
  version     Show version information
  help        Help about any command

Examples:
  # Run one request the way the storefront does
  echo '{"action":"predict",...}' | recommender worker

  # Train and query from the command line
  recommender train --movies corpus.json --preferences user.json
  recommender recommend --movies candidates.json --preferences user.json
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/cli"
	"github.com/luxestream/recommender/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recommender",
		Short: "Hybrid movie recommendation engine",
		Long: `recommender ranks candidate movies for a user by mixing two signals:

  • affinity   - a model trained on the catalog and the user's watch
                 history (vocabulary, liked-movie centroid, taste text)
  • preference - a rule-based match against the user's stated favorite
                 genres, languages and directors

Each train/predict call runs as an isolated worker process; trained models
persist in a SQLite model store shared across invocations.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(cli.NewWorkerCmd())
	rootCmd.AddCommand(cli.NewTrainCmd())
	rootCmd.AddCommand(cli.NewRecommendCmd())
	rootCmd.AddCommand(cli.NewModelsCmd())
	rootCmd.AddCommand(cli.NewBenchCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
