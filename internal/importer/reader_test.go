package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		ct, name string
		want     Format
		wantErr  bool
	}{
		{"application/json", "bank.json", FormatJSON, false},
		{"application/json; charset=utf-8", "bank.json", FormatJSON, false},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "bank.xlsx", FormatXLSX, false},
		{"application/octet-stream", "bank.xlsx", FormatXLSX, false},
		{"application/octet-stream", "bank.json", FormatJSON, false},
		{"application/vnd.ms-excel", "bank.xls", 0, true},
		{"text/plain", "bank.txt", 0, true},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.ct, c.name)
		if c.wantErr {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("DetectFormat(%q,%q) err = %v, want ValidationError", c.ct, c.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("DetectFormat(%q,%q): %v", c.ct, c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("DetectFormat(%q,%q) = %d, want %d", c.ct, c.name, got, c.want)
		}
	}
}

func TestReadJSON(t *testing.T) {
	body := `{"questions":[{"content":"C","type":"single_choice","correctAnswer":["B"]}]}`
	rows, err := ReadRows(strings.NewReader(body), FormatJSON)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Payload.Content != "C" {
		t.Errorf("content = %q", rows[0].Payload.Content)
	}
}

func TestReadJSONEmptyQuestions(t *testing.T) {
	for _, body := range []string{`{"questions":[]}`, `{}`} {
		rows, err := ReadRows(strings.NewReader(body), FormatJSON)
		if err != nil {
			t.Fatalf("ReadRows(%q): %v", body, err)
		}
		if len(rows) != 0 {
			t.Errorf("ReadRows(%q) = %d rows, want 0", body, len(rows))
		}
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadRows(strings.NewReader("not json at all"), FormatJSON)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestReadSheet(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	header := []any{"content", "type", "optionA", "optionB", "correctAnswer", "difficulty"}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []any{"Pick one", "single_choice", "A. foo", "B. bar", "B", "hard"}
	if err := wb.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	cells := rows[0].Cells
	if cells["content"] != "Pick one" || cells["optionB"] != "B. bar" || cells["difficulty"] != "hard" {
		t.Errorf("cells = %v", cells)
	}
}

func TestReadSheetSkipsBlankRows(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	header := []any{"content", "type", "correctAnswer"}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	q1 := []any{"Q1", "true_false", "A"}
	if err := wb.SetSheetRow(sheet, "A2", &q1); err != nil {
		t.Fatal(err)
	}
	// Row 3 stays empty on purpose.
	q2 := []any{"Q2", "true_false", "B"}
	if err := wb.SetSheetRow(sheet, "A4", &q2); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Cells["content"] != "Q1" || rows[1].Cells["content"] != "Q2" {
		t.Errorf("rows = %v / %v", rows[0].Cells, rows[1].Cells)
	}
	for i, row := range rows {
		if _, err := Normalize(row); err != nil {
			t.Errorf("row %d did not normalize: %v", i+1, err)
		}
	}
}

func TestReadSheetGarbage(t *testing.T) {
	_, err := ReadRows(strings.NewReader("definitely not a zip"), FormatXLSX)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}
