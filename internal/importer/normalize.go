package importer

import (
	"strings"

	"github.com/examprep/examprep-server/internal/question"
)

// Spreadsheet layout: a fixed header-name table, one default per field.
// Columns not listed here are ignored.
const (
	colContent       = "content"
	colType          = "type"
	colCorrectAnswer = "correctAnswer"
	colExplanation   = "explanation"
	colCategories    = "categories"
	colDifficulty    = "difficulty"
	colSource        = "source"
)

// Option cells are scanned in this order; the letter an option answers to is
// implied by its position (A, B, C, ...).
var optionColumns = [...]string{"optionA", "optionB", "optionC", "optionD", "optionE"}

// Normalize maps one raw row to a canonical draft. Exactly one draft per
// row; rows are never dropped or merged here.
func Normalize(row RawRow) (question.Draft, error) {
	if row.Format == FormatJSON {
		return normalizeJSON(row.Payload)
	}
	return normalizeSheet(row.Cells)
}

func normalizeJSON(p Payload) (question.Draft, error) {
	typ, err := question.ParseType(p.Type)
	if err != nil {
		return question.Draft{}, &ValidationError{Field: "type", Err: err}
	}
	d := question.Draft{
		Content:       p.Content,
		Type:          typ,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
		Explanation:   p.Explanation,
		Categories:    p.Categories,
		Difficulty:    question.ParseDifficulty(p.Difficulty),
		Source:        p.Source,
	}
	if d.Options == nil {
		d.Options = []question.Option{}
	}
	if d.CorrectAnswer == nil {
		d.CorrectAnswer = []string{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	return d, nil
}

func normalizeSheet(cells map[string]string) (question.Draft, error) {
	typ, err := question.ParseType(cells[colType])
	if err != nil {
		return question.Draft{}, &ValidationError{Field: "type", Err: err}
	}

	// true_false rows carry no options even when option cells are filled in.
	options := []question.Option{}
	if typ.HasOptions() {
		for _, col := range optionColumns {
			if text := cells[col]; text != "" {
				options = append(options, question.Option{Text: text})
			}
		}
	}

	correct := splitList(cells[colCorrectAnswer])
	for i := range options {
		// Convention: option text starts with its own letter ("A. ..."),
		// so an answer token marks the option whose first character equals
		// the token. A token that matches nothing silently marks nothing.
		first := firstChar(options[i].Text)
		for _, tok := range correct {
			if first != "" && tok == first {
				options[i].IsCorrect = true
				break
			}
		}
	}

	return question.Draft{
		Content:       cells[colContent],
		Type:          typ,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   cells[colExplanation],
		Categories:    splitList(cells[colCategories]),
		Difficulty:    question.ParseDifficulty(cells[colDifficulty]),
		Source:        cells[colSource],
	}, nil
}

func firstChar(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
