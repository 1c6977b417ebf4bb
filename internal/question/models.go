package question

import "fmt"

// Type is the closed set of question kinds the app understands.
type Type string

const (
	TypeSingleChoice   Type = "single_choice"
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeSingleChoice, TypeMultipleChoice, TypeTrueFalse:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// HasOptions reports whether this type carries an option list.
func (t Type) HasOptions() bool {
	return t == TypeSingleChoice || t == TypeMultipleChoice
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps anything outside the known set (including the empty
// string) to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	}
	return DifficultyMedium
}

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Draft is the canonical in-memory question before it has been stored.
type Draft struct {
	Content       string
	Type          Type
	Options       []Option
	CorrectAnswer []string
	Explanation   string
	Categories    []string
	Difficulty    Difficulty
	Source        string
}

// Question is a stored question in the shape every question-returning
// endpoint serves.
type Question struct {
	ID            int64      `json:"id"`
	Content       string     `json:"content"`
	Type          Type       `json:"type"`
	Options       []Option   `json:"options"`
	CorrectAnswer []string   `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Categories    []string   `json:"categories"`
	Difficulty    Difficulty `json:"difficulty"`
	Source        string     `json:"source"`
	CreatedAt     int64      `json:"createdAt"`
}

// Patch carries the optional fields of a question update; nil means
// "leave as is".
type Patch struct {
	Content       *string     `json:"content"`
	Type          *Type       `json:"type"`
	Options       *[]Option   `json:"options"`
	CorrectAnswer *[]string   `json:"correctAnswer"`
	Explanation   *string     `json:"explanation"`
	Categories    *[]string   `json:"categories"`
	Difficulty    *Difficulty `json:"difficulty"`
	Source        *string     `json:"source"`
}
