package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/siteiq/internal/model"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect trained model artifacts",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored model artifacts, newest first",
	RunE:  runModelsList,
}

func init() {
	modelsListCmd.Flags().String("category", "", "filter by business category")

	modelsCmd.AddCommand(modelsListCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rawCategory, _ := cmd.Flags().GetString("category")
	var category model.Category
	if rawCategory != "" {
		parsed, err := model.ParseCategory(rawCategory)
		if err != nil {
			return err
		}
		category = parsed
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	metas, err := env.models.List(ctx, category)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tALGORITHM\tR2\tRMSE\tSAMPLES\tACTIVE\tTRAINED")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%d\t%t\t%s\n",
			m.ID, m.Category, m.Algorithm, m.R2, m.RMSE,
			m.SampleCount, m.Active, m.TrainedAt.UTC().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
