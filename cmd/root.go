package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placesweep/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "placesweep",
	Short: "Exhaustive Google Places nearby search over a circular area",
	Long:  "Tiles a circle into overlapping sub-circles, queries Google Places for each tile, and writes the de-duplicated, filtered places to a file.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
