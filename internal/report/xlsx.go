// Package report renders persisted analyses as spreadsheet files for
// sharing outside the tool.
package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/siteiq/internal/scoring"
)

var exportHeader = []string{
	"ID", "Latitude", "Longitude", "Category",
	"Overall Score", "Confidence", "Method", "Created At",
}

// WriteXLSX writes the analyses to an XLSX workbook at path.
func WriteXLSX(path string, records []scoring.AnalysisRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Analyses")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.ID)
		row.AddCell().SetFloat(rec.Latitude)
		row.AddCell().SetFloat(rec.Longitude)
		row.AddCell().SetString(rec.Category)
		row.AddCell().SetFloatWithFormat(rec.OverallScore, "0.00")
		row.AddCell().SetFloatWithFormat(rec.Confidence, "0.00")
		row.AddCell().SetString(rec.Method)
		row.AddCell().SetString(rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, fmt.Sprintf("report: save %s", path))
	}
	return nil
}
