package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "residents-cli",
	Short: "Neighbourhood resident allocation",
	Long:  "Distributes census neighbourhood populations across assessment parcels, either by sampling household sizes by tenure or by splitting parcels into dwellings weighted by living area.",
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
