package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"idcard-extractor/constants"
	"idcard-extractor/internal/pipeline"
)

// Service produces XLSX bytes for batch results. Results are whatever the
// pipeline returned; nothing is recomputed here.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns a workbook with one row per ItemResult: the extracted
// field readings and confidences for successes, the error message for
// failures.
func (s *Service) ResultsXLSX(results []pipeline.ItemResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Image Name", "Status", "Error", "Detection Confidence", "Document Type"}
	for _, name := range constants.SupportedFields {
		label := constants.FieldLabel(name)
		headers = append(headers, label, label+" confidence")
	}
	headers = append(headers, "date of birth", "date of birth confidence", "Processing Time (ms)")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range results {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ImageName)
		if r.Success {
			write(2, "success")
		} else {
			write(2, "failed")
		}
		write(3, r.Error)
		write(4, r.DetectionConfidence)
		write(5, r.DocumentType)

		col := 6
		for _, name := range constants.SupportedFields {
			reading := r.Fields[name]
			write(col, reading.Text)
			write(col+1, reading.Confidence)
			col += 2
		}
		write(col, r.DateOfBirth.Text)
		write(col+1, r.DateOfBirth.Confidence)
		write(col+2, r.ProcessingTimeMS)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
