package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteiq",
	Short: "Location intelligence scoring for business sites",
	Long:  "Scores candidate business locations from PostGIS business data: multi-radius feature extraction, per-category trained models with a rule-based fallback, review sentiment, and actionable insights.",
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
