package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/benchmark"
	"github.com/luxestream/recommender/internal/config"
	"github.com/luxestream/recommender/internal/worker"
)

// NewBenchCmd creates the 'bench' command for latency benchmarking.
func NewBenchCmd() *cobra.Command {
	var movieCount int
	var calls int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure end-to-end predict latency",
		Long: `Run repeated predict calls over a synthetic movie corpus through the
full worker boundary, so every call pays process startup and model load.`,
		Example: `  recommender bench
  recommender bench --movies 1000 --calls 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), movieCount, calls)
		},
	}

	cmd.Flags().IntVar(&movieCount, "movies", 1000, "Synthetic corpus size")
	cmd.Flags().IntVar(&calls, "calls", 5, "Number of predict calls")

	return cmd
}

func runBench(ctx context.Context, movieCount, calls int) error {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	runner, err := worker.NewSelfRunner(cfg.WorkerTimeout())
	if err != nil {
		return err
	}

	fmt.Printf("Benchmarking %d calls x %d candidates...\n\n", calls, movieCount)

	result, err := benchmark.RunLatency(ctx, runner, movieCount, calls)
	if err != nil {
		return err
	}

	fmt.Print(benchmark.FormatResult(result))
	return nil
}
