package importer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/examprep/examprep-server/internal/question"
)

func sheetRow(cells map[string]string) RawRow {
	return RawRow{Format: FormatXLSX, Cells: cells}
}

func TestNormalizeSheetMultipleChoice(t *testing.T) {
	d, err := Normalize(sheetRow(map[string]string{
		"content":       "Pick two",
		"type":          "multiple_choice",
		"optionA":       "A. foo",
		"optionB":       "B. bar",
		"correctAnswer": "A,B",
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	wantOpts := []question.Option{
		{Text: "A. foo", IsCorrect: true},
		{Text: "B. bar", IsCorrect: true},
	}
	if !reflect.DeepEqual(d.Options, wantOpts) {
		t.Errorf("options = %+v, want %+v", d.Options, wantOpts)
	}
	if !reflect.DeepEqual(d.CorrectAnswer, []string{"A", "B"}) {
		t.Errorf("correctAnswer = %v", d.CorrectAnswer)
	}
}

func TestNormalizeSheetTrueFalseSuppressesOptions(t *testing.T) {
	d, err := Normalize(sheetRow(map[string]string{
		"content":       "判断",
		"type":          "true_false",
		"optionA":       "A. 正确",
		"correctAnswer": "A",
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(d.Options) != 0 {
		t.Errorf("true_false row kept options: %+v", d.Options)
	}
	if !reflect.DeepEqual(d.CorrectAnswer, []string{"A"}) {
		t.Errorf("correctAnswer = %v", d.CorrectAnswer)
	}
}

func TestNormalizeSheetMismatchedTokenMarksNothing(t *testing.T) {
	d, err := Normalize(sheetRow(map[string]string{
		"content":       "Which one",
		"type":          "single_choice",
		"optionA":       "A. foo",
		"optionB":       "B. bar",
		"correctAnswer": "C",
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(d.CorrectAnswer, []string{"C"}) {
		t.Errorf("correctAnswer = %v, want [C]", d.CorrectAnswer)
	}
	for _, o := range d.Options {
		if o.IsCorrect {
			t.Errorf("option %q marked correct for token C", o.Text)
		}
	}
}

func TestNormalizeSheetDefaults(t *testing.T) {
	d, err := Normalize(sheetRow(map[string]string{
		"content": "No extras",
		"type":    "single_choice",
		"optionA": "A. only",
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if d.Difficulty != question.DifficultyMedium {
		t.Errorf("difficulty = %s, want medium", d.Difficulty)
	}
	if d.Explanation != "" || d.Source != "" {
		t.Errorf("explanation/source not defaulted: %q %q", d.Explanation, d.Source)
	}
	if len(d.Categories) != 0 {
		t.Errorf("categories = %v, want empty", d.Categories)
	}
	if len(d.CorrectAnswer) != 0 {
		t.Errorf("correctAnswer = %v, want empty", d.CorrectAnswer)
	}
}

func TestNormalizeSheetCategoriesSplit(t *testing.T) {
	d, err := Normalize(sheetRow(map[string]string{
		"content":    "cats",
		"type":       "single_choice",
		"categories": "math, algebra",
	}))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(d.Categories, []string{"math", "algebra"}) {
		t.Errorf("categories = %v", d.Categories)
	}
}

func TestNormalizeRejectsUnknownType(t *testing.T) {
	_, err := Normalize(sheetRow(map[string]string{
		"content": "bad",
		"type":    "essay",
	}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestNormalizeJSONPassthrough(t *testing.T) {
	d, err := Normalize(RawRow{Format: FormatJSON, Payload: Payload{
		Content: "C",
		Type:    "single_choice",
		Options: []question.Option{
			{Text: "A. x"},
			{Text: "B. y", IsCorrect: true},
		},
		CorrectAnswer: []string{"B"},
		Explanation:   "e",
		Difficulty:    "easy",
	}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if d.Type != question.TypeSingleChoice {
		t.Errorf("type = %s", d.Type)
	}
	if !reflect.DeepEqual(d.CorrectAnswer, []string{"B"}) {
		t.Errorf("correctAnswer = %v", d.CorrectAnswer)
	}
	if d.Difficulty != question.DifficultyEasy {
		t.Errorf("difficulty = %s", d.Difficulty)
	}
	if d.Categories == nil {
		t.Error("categories should default to empty, not nil")
	}
}

func TestNormalizeJSONInvalidDifficultyFallsBack(t *testing.T) {
	d, err := Normalize(RawRow{Format: FormatJSON, Payload: Payload{
		Content:    "C",
		Type:       "true_false",
		Difficulty: "brutal",
	}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if d.Difficulty != question.DifficultyMedium {
		t.Errorf("difficulty = %s, want medium", d.Difficulty)
	}
}
