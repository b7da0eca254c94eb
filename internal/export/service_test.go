package export

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"idcard-extractor/constants"
	"idcard-extractor/internal/pipeline"
)

func TestResultsXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	results := []pipeline.ItemResult{
		{
			ImageName:           "front.jpg",
			Success:             true,
			DetectionConfidence: 95,
			DocumentType:        "thai_id",
			Fields: map[string]pipeline.FieldReading{
				"identityNumber": {Text: "1234567890123", Confidence: 97},
				"firstNameEn":    {Text: "SOMCHAI", Confidence: 91},
			},
			DateOfBirth:      pipeline.FieldReading{Text: "1 Jan 1990", Confidence: 90},
			ProcessingTimeMS: 1234,
		},
		{
			ImageName: "cat.jpg",
			Error:     "Not a valid document (confidence: 10%)",
		},
	}

	data, err := svc.ResultsXLSX(results)
	if err != nil {
		t.Fatalf("ResultsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Results" {
		t.Fatalf("sheets = %v, want [Results]", sheets)
	}

	cell := func(ref string) string {
		v, err := f.GetCellValue("Results", ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", ref, err)
		}
		return v
	}

	if cell("A1") != "Image Name" || cell("B1") != "Status" {
		t.Errorf("header row = %q, %q", cell("A1"), cell("B1"))
	}
	if cell("A2") != "front.jpg" || cell("B2") != "success" {
		t.Errorf("success row = %q, %q", cell("A2"), cell("B2"))
	}
	if cell("F2") != "1234567890123" {
		t.Errorf("identity number cell = %q", cell("F2"))
	}
	if cell("A3") != "cat.jpg" || cell("B3") != "failed" {
		t.Errorf("failure row = %q, %q", cell("A3"), cell("B3"))
	}
	if cell("C3") != "Not a valid document (confidence: 10%)" {
		t.Errorf("error cell = %q", cell("C3"))
	}

	// Header width: 5 fixed columns, two per supported field, the synthesized
	// date of birth pair, and the timing column.
	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	wantCols := 5 + 2*len(constants.SupportedFields) + 3
	if len(rows[0]) != wantCols {
		t.Errorf("header has %d columns, want %d", len(rows[0]), wantCols)
	}
}

func TestResultsXLSXEmpty(t *testing.T) {
	svc := NewService(nil)
	data, err := svc.ResultsXLSX(nil)
	if err != nil {
		t.Fatalf("ResultsXLSX() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("empty result set produced no workbook")
	}
}
