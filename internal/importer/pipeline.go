// Package importer turns an uploaded question-bank file (JSON or Excel)
// into stored questions: read rows, normalize each into a canonical draft,
// write drafts one at a time, report the stored result.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/examprep/examprep-server/internal/question"
)

// Writer is the slice of the question store the pipeline needs.
type Writer interface {
	Create(ctx context.Context, d question.Draft) (question.Question, error)
}

// Report is the import response payload.
type Report struct {
	Message   string              `json:"message"`
	Questions []question.Question `json:"questions"`
}

type Importer struct {
	writer Writer
	log    *slog.Logger
}

func New(w Writer, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{writer: w, log: log}
}

// Run processes the upload strictly in row order, one row fully written
// before the next begins. A ParseError aborts before anything is written.
// A failure on row k leaves rows 1..k-1 committed and skips the rest; there
// is no cross-row transaction.
func (imp *Importer) Run(ctx context.Context, r io.Reader, format Format) (Report, error) {
	rows, err := ReadRows(r, format)
	if err != nil {
		return Report{}, err
	}

	stored := make([]question.Question, 0, len(rows))
	for i, row := range rows {
		d, err := Normalize(row)
		if err != nil {
			return Report{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		q, err := imp.writer.Create(ctx, d)
		if err != nil {
			return Report{}, &PersistenceError{Row: i + 1, Err: err}
		}
		stored = append(stored, q)
	}

	imp.log.Info("questions imported", "count", len(stored))
	return Report{
		Message:   fmt.Sprintf("%d questions imported successfully", len(stored)),
		Questions: stored,
	}, nil
}
