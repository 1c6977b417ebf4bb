package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examprep/examprep-server/internal/question"
)

type questionBody struct {
	Content       string            `json:"content"`
	Type          string            `json:"type"`
	Options       []question.Option `json:"options"`
	CorrectAnswer []string          `json:"correctAnswer"`
	Explanation   string            `json:"explanation"`
	Categories    []string          `json:"categories"`
	Difficulty    string            `json:"difficulty"`
	Source        string            `json:"source"`
}

// GET /api/questions?category=&difficulty=&type=&page=&limit=
func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := question.ListOpts{
			Category:   r.URL.Query().Get("category"),
			Difficulty: r.URL.Query().Get("difficulty"),
			Type:       r.URL.Query().Get("type"),
			Page:       queryInt(r, "page", 1),
			Limit:      queryInt(r, "limit", 10),
		}
		if opts.Page < 1 {
			opts.Page = 1
		}
		if opts.Limit < 1 {
			opts.Limit = 10
		}
		qs, total, err := store.List(r.Context(), opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pages := total / opts.Limit
		if total%opts.Limit != 0 {
			pages++
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"questions": qs,
			"page":      opts.Page,
			"pages":     pages,
			"total":     total,
		})
	}
}

// GET /api/questions/random?category=&difficulty=&type=&count=
func RandomQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.Random(r.Context(), question.RandomOpts{
			Category:   r.URL.Query().Get("category"),
			Difficulty: r.URL.Query().Get("difficulty"),
			Type:       r.URL.Query().Get("type"),
			Count:      queryInt(r, "count", 10),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// GET /api/questions/{id}
func GetQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		q, err := store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, question.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Question not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /api/questions (admin)
func CreateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body questionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		typ, err := question.ParseType(body.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q, err := store.Create(r.Context(), question.Draft{
			Content:       body.Content,
			Type:          typ,
			Options:       body.Options,
			CorrectAnswer: body.CorrectAnswer,
			Explanation:   body.Explanation,
			Categories:    body.Categories,
			Difficulty:    question.ParseDifficulty(body.Difficulty),
			Source:        body.Source,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// PUT /api/questions/{id} (admin, partial update)
func UpdateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		var p question.Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if p.Type != nil {
			if _, err := question.ParseType(string(*p.Type)); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		q, err := store.Update(r.Context(), id, p)
		if err != nil {
			if errors.Is(err, question.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Question not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DELETE /api/questions/{id} (admin)
func DeleteQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Question not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted"})
	}
}
