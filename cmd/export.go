package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/model"
	"github.com/sells-group/siteiq/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export past analyses to an XLSX workbook",
	Long: `Writes persisted analyses, newest first, to a spreadsheet.

Examples:
  siteiq export --output analyses.xlsx
  siteiq export --output cafes.xlsx --category cafe --limit 500`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("output", "analyses.xlsx", "output file path")
	f.String("category", "", "filter by business category")
	f.Int("limit", 100, "maximum analyses to export")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output, _ := cmd.Flags().GetString("output")
	rawCategory, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

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

	records, err := env.analyses.List(ctx, category, limit)
	if err != nil {
		return err
	}

	if err := report.WriteXLSX(output, records); err != nil {
		return err
	}

	zap.L().Info("export written",
		zap.String("path", output),
		zap.Int("analyses", len(records)))
	return nil
}
