package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/examprep/examprep-server/internal/question"
)

type Format int

const (
	FormatJSON Format = iota
	FormatXLSX
)

// DetectFormat applies the upload allow-list: plain JSON or an OOXML
// workbook (.xlsx only; legacy BIFF .xls is not readable here), judged by
// declared MIME type with the filename extension as a fallback for clients
// that send application/octet-stream.
func DetectFormat(contentType, filename string) (Format, error) {
	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	switch ct {
	case "application/json":
		return FormatJSON, nil
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return 0, &ValidationError{Field: "file", Err: fmt.Errorf("unsupported content type %q", contentType)}
}

// Payload is one question in the canonical client JSON shape, as it arrives
// in a JSON import file.
type Payload struct {
	Content       string            `json:"content"`
	Type          string            `json:"type"`
	Options       []question.Option `json:"options"`
	CorrectAnswer []string          `json:"correctAnswer"`
	Explanation   string            `json:"explanation"`
	Categories    []string          `json:"categories"`
	Difficulty    string            `json:"difficulty"`
	Source        string            `json:"source"`
}

// RawRow is one source record before normalization. JSON rows carry the
// decoded payload; spreadsheet rows carry the header-keyed cells.
type RawRow struct {
	Format  Format
	Payload Payload
	Cells   map[string]string
}

// ReadRows decodes the whole upload into its row sequence. A malformed
// payload fails with ParseError; an empty question list is not an error.
func ReadRows(r io.Reader, format Format) ([]RawRow, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatXLSX:
		return readSheet(r)
	}
	return nil, &ParseError{Err: fmt.Errorf("unknown format %d", format)}
}

func readJSON(r io.Reader) ([]RawRow, error) {
	var doc struct {
		Questions []Payload `json:"questions"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	rows := make([]RawRow, 0, len(doc.Questions))
	for _, p := range doc.Questions {
		rows = append(rows, RawRow{Format: FormatJSON, Payload: p})
	}
	return rows, nil
}

func readSheet(r io.Reader) ([]RawRow, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("workbook has no sheets")}
	}
	all, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]RawRow, 0, len(all)-1)
	for _, rec := range all[1:] {
		cells := make(map[string]string, len(header))
		blank := true
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v != "" {
				blank = false
			}
			cells[name] = v
		}
		// Spreadsheets routinely carry interior blank lines; they are not
		// rows, so they never reach the normalizer.
		if blank {
			continue
		}
		rows = append(rows, RawRow{Format: FormatXLSX, Cells: cells})
	}
	return rows, nil
}
