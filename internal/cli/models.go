package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxestream/recommender/internal/config"
	"github.com/luxestream/recommender/internal/store"
)

// NewModelsCmd creates the 'models' command for inspecting the model store.
func NewModelsCmd() *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List trained models in the model store",
		Example: `  recommender models
  recommender models --cleanup  # drop models past the retention period`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cleanup)
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Remove models older than the retention period")

	return cmd
}

func runModels(cleanup bool) error {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	st := store.NewStore(dbPath)
	if err := st.Init(); err != nil {
		return fmt.Errorf("failed to open model store: %w", err)
	}
	defer st.Close()

	if cleanup {
		if err := st.Cleanup(cfg.ModelRetention()); err != nil {
			return err
		}
		fmt.Printf("Removed models older than %d days.\n", cfg.Settings.ModelRetentionDays)
	}

	infos, err := st.ListModels()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No trained models.")
		fmt.Println("Run 'recommender train --movies corpus.json' to train one.")
		return nil
	}

	fmt.Printf("Trained models (%d):\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("  %s\n", info.Owner)
		fmt.Printf("    Version:    %s\n", info.Version)
		fmt.Printf("    Trained at: %s\n", info.TrainedAt.Local().Format(time.RFC1123))
		fmt.Printf("    Size:       %d bytes\n", info.SizeBytes)
		fmt.Println()
	}

	return nil
}
