package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const mostWantedSheet = "Most Wanted"

var mostWantedHeaders = []string{"Rank", "Name", "National ID", "Status", "Cases", "Days", "Severity", "Ranking", "Reward (IRR)"}

// ExportMostWantedXLSX renders the most-wanted list as a spreadsheet
func (w *Workflow) ExportMostWantedXLSX(limit int) (*bytes.Buffer, error) {
	entries, err := w.ListMostWanted(limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", mostWantedSheet)
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F3864"}, Pattern: 1},
	})
	for i, header := range mostWantedHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(mostWantedSheet, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(mostWantedHeaders), 1)
	f.SetCellStyle(mostWantedSheet, "A1", lastHeader, headerStyle)

	for i, e := range entries {
		row := i + 2
		values := []interface{}{
			i + 1,
			e.Name,
			e.NationalID,
			e.Status,
			strings.Join(e.CaseIDs, ", "),
			e.Rank.MaxDays,
			e.Rank.MaxSeverity,
			e.Ranking,
			e.RewardAmount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(mostWantedSheet, cell, v)
		}
	}
	f.SetColWidth(mostWantedSheet, "B", "B", 28)
	f.SetColWidth(mostWantedSheet, "E", "E", 40)
	f.SetColWidth(mostWantedSheet, "I", "I", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf, nil
}
