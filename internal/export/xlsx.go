// Package export writes the result history to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"wellness-quiz/internal/domain"
)

const historySheet = "History"

var historyHeaders = []string{
	"Date", "BMR (kcal/day)", "Protein (g/day)", "Ideal weight (kg)", "Water (L/day)",
}

// WriteHistoryXLSX writes one row per result, in the order given.
func WriteHistoryXLSX(w io.Writer, results []domain.QuizResult) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			return err
		}
	}

	for row, r := range results {
		values := []any{
			r.Timestamp.UTC().Format(time.RFC3339),
			round(r.BMR, 0),
			round(r.ProteinIntake, 1),
			round(r.IdealWeight, 1),
			round(r.WaterIntakeLiters, 2),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
