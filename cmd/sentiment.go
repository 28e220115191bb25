package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/siteiq/internal/sentiment"
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Aggregate review sentiment for a business",
	Long: `Scores each stored review through the sentiment estimator cascade,
buckets them into positive/neutral/negative, tags recurring topics, and
prints the 0-10 sentiment score.

Example:
  siteiq sentiment --business-id 1234`,
	RunE: runSentiment,
}

func init() {
	f := sentimentCmd.Flags()
	f.Int64("business-id", 0, "business id (required)")
	_ = sentimentCmd.MarkFlagRequired("business-id")

	rootCmd.AddCommand(sentimentCmd)
}

func runSentiment(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	businessID, _ := cmd.Flags().GetInt64("business-id")

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	aggregator, err := newAggregator()
	if err != nil {
		return err
	}

	reviews, err := env.repo.ListReviews(ctx, businessID)
	if err != nil {
		return err
	}

	result := aggregator.Analyze(reviews)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "encode result")
	}
	return nil
}

// newAggregator builds the sentiment aggregator, honoring an optional topic
// lexicon override from config.
func newAggregator() (*sentiment.Aggregator, error) {
	tagger := sentiment.NewTopicTagger()
	if cfg.Sentiment.TopicsFile != "" {
		var err error
		tagger, err = sentiment.LoadTopicTagger(cfg.Sentiment.TopicsFile)
		if err != nil {
			return nil, err
		}
	}
	return sentiment.NewAggregator(sentiment.DefaultChain(), tagger), nil
}
