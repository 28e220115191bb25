package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/training"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train location scoring models from existing business data",
	Long: `Builds a training dataset per category from businesses with enough
reviews, fits the candidate regressors on an 80/20 split, and activates the
best model by held-out fit. Categories without enough data are skipped and
keep their previously active model.

Examples:
  # Train one category
  siteiq train --category restaurant

  # Train every known category
  siteiq train --all`,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.String("category", "", "business category to train")
	f.Bool("all", false, "train all categories")
	f.Float64("radius", 0, "feature radius in meters (default from config)")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rawCategory, _ := cmd.Flags().GetString("category")
	all, _ := cmd.Flags().GetBool("all")
	radius, _ := cmd.Flags().GetFloat64("radius")
	if radius <= 0 {
		radius = float64(cfg.Scoring.DefaultRadiusM)
	}

	var categories []model.Category
	switch {
	case all:
		categories = model.Categories()
	case rawCategory != "":
		category, err := model.ParseCategory(rawCategory)
		if err != nil {
			return err
		}
		categories = []model.Category{category}
	default:
		return eris.New("either --category or --all is required")
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	builder := training.NewBuilder(env.repo, env.extractor, radius,
		cfg.Training.Concurrency, cfg.Training.QueryRate)
	trainer := training.NewTrainer(env.models, cfg.Training.Timeout)

	log := zap.L().With(zap.String("command", "train"))
	results := make(map[string]*training.Result, len(categories))

	for _, category := range categories {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "train interrupted")
		}

		ds, err := builder.Build(ctx, category)
		if err != nil {
			if errors.Is(err, training.ErrInsufficientData) {
				log.Info("skipping category, not enough data",
					zap.String("category", category.String()))
				results[category.String()] = &training.Result{
					Success: false,
					Reason:  "insufficient training data",
				}
				continue
			}
			return err
		}

		result, err := trainer.Train(ctx, ds)
		if err != nil {
			return err
		}
		if result.Success {
			env.engine.RefreshModel(category)
		}
		results[category.String()] = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return eris.Wrap(err, "encode results")
	}
	return nil
}
