package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetStrategy extracts workbook text with excelize. Each sheet
// is announced with a delimiter line followed by pipe-joined rows;
// chunks end on row boundaries.
type SpreadsheetStrategy struct{}

func NewSpreadsheetStrategy() *SpreadsheetStrategy { return &SpreadsheetStrategy{} }

func (s *SpreadsheetStrategy) Name() string { return "spreadsheet" }

func (s *SpreadsheetStrategy) Extensions() []string { return []string{".xlsx", ".xls"} }

func (s *SpreadsheetStrategy) MIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
	}
}

func (s *SpreadsheetStrategy) CanHandle(filePath, mimeType string) bool {
	return canHandle(s, filePath, mimeType)
}

func (s *SpreadsheetStrategy) Validate(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}
	if info.Size() == 0 {
		return true
	}
	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return false
	}
	defer wb.Close()
	return len(wb.GetSheetList()) > 0
}

func (s *SpreadsheetStrategy) Extract(_ context.Context, filePath string) *Result {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return failureResult(KindFailed, filePath, s.Name(),
			fmt.Sprintf("file not found: %s", filePath), seconds(start))
	}
	if info.Size() == 0 {
		return successResult(emptyStream{}, filePath, s.Name(), seconds(start),
			map[string]any{"file_size": int64(0), "format": "excel", "sheets": 0, "total_rows": 0})
	}

	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("invalid or corrupted spreadsheet %s: %v", filePath, err), seconds(start))
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return failureResult(KindCorrupted, filePath, s.Name(),
			fmt.Sprintf("spreadsheet has no sheets: %s", filePath), seconds(start))
	}

	var lines []string
	totalRows := 0
	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return failureResult(KindFailed, filePath, s.Name(),
				fmt.Sprintf("read sheet %q of %s: %v", sheet, filePath, err), seconds(start))
		}
		lines = append(lines, fmt.Sprintf("\n=== Sheet: %s ===\n", sheet))
		for _, row := range rows {
			totalRows++
			lines = append(lines, strings.Join(row, " | ")+"\n")
		}
	}

	return successResult(newSliceStream(packLines(lines)), filePath, s.Name(), seconds(start), map[string]any{
		"file_size":   info.Size(),
		"format":      "excel",
		"sheets":      len(sheets),
		"total_rows":  totalRows,
		"sheet_names": sheets,
	})
}
