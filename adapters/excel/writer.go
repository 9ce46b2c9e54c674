// Package excel exports aggregate summaries to an xlsx workbook: one sheet
// of rejection rates and one sheet per coefficient distribution, laid out so
// the histogram table is directly chartable.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"selsim/domain/experiment"
)

// RejectionRow is one named rejection-rate result destined for the summary sheet.
type RejectionRow struct {
	Name    string
	Summary experiment.RejectionSummary
}

// DistributionSheet is one named coefficient distribution, written to its own sheet.
type DistributionSheet struct {
	Name    string
	Summary experiment.DistributionSummary
}

// SummaryWriter writes study artifacts to a workbook on disk.
type SummaryWriter struct {
	path string
}

// NewSummaryWriter creates a writer targeting the given xlsx path.
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

// Write renders the rejection rates and distributions and saves the workbook.
func (w *SummaryWriter) Write(rejections []RejectionRow, distributions []DistributionSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	const rejectionSheet = "Rejection Rates"
	if err := f.SetSheetName("Sheet1", rejectionSheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	headers := []interface{}{"Study", "Rejection Rate", "Critical Value", "Level", "DF Num", "DF Den", "Rejected", "Total", "Undefined"}
	if err := f.SetSheetRow(rejectionSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write rejection headers: %w", err)
	}
	for i, row := range rejections {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{
			row.Name,
			row.Summary.Rate,
			row.Summary.CriticalValue,
			row.Summary.Level,
			row.Summary.DFNum,
			row.Summary.DFDen,
			row.Summary.Rejected,
			row.Summary.Total,
			row.Summary.Undefined,
		}
		if err := f.SetSheetRow(rejectionSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write rejection row %q: %w", row.Name, err)
		}
	}

	for _, dist := range distributions {
		if err := w.writeDistribution(f, dist); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

// writeDistribution lays out one distribution sheet: a summary block at the
// top, then the binned frequency table.
func (w *SummaryWriter) writeDistribution(f *excelize.File, dist DistributionSheet) error {
	if _, err := f.NewSheet(dist.Name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", dist.Name, err)
	}

	summaryRows := [][]interface{}{
		{"Mean", dist.Summary.Mean},
		{"Std Dev", dist.Summary.StdDev},
		{"True Value", dist.Summary.TrueValue},
		{"Defined Replicates", dist.Summary.Defined},
		{"Undefined Replicates", dist.Summary.Undefined},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(dist.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row on %q: %w", dist.Name, err)
		}
	}

	headerRow := len(summaryRows) + 2
	headers := []interface{}{"Bin Low", "Bin High", "Count"}
	cell := fmt.Sprintf("A%d", headerRow)
	if err := f.SetSheetRow(dist.Name, cell, &headers); err != nil {
		return fmt.Errorf("failed to write histogram headers on %q: %w", dist.Name, err)
	}
	for i, bin := range dist.Summary.Bins {
		cell := fmt.Sprintf("A%d", headerRow+1+i)
		values := []interface{}{bin.Low, bin.High, bin.Count}
		if err := f.SetSheetRow(dist.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write histogram bin on %q: %w", dist.Name, err)
		}
	}
	return nil
}
