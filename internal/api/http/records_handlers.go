package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examprep/examprep-server/internal/auth"
	"github.com/examprep/examprep-server/internal/record"
)

// GET /api/records?question=&isCorrect=&isMarked=&isMastered=&page=&limit=
func ListRecordsHandler(store *record.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		opts := record.ListOpts{
			QuestionID: queryInt64(r, "question"),
			IsCorrect:  queryBool(r, "isCorrect"),
			IsMarked:   queryBool(r, "isMarked"),
			IsMastered: queryBool(r, "isMastered"),
			Page:       queryInt(r, "page", 1),
			Limit:      queryInt(r, "limit", 10),
		}
		if opts.Page < 1 {
			opts.Page = 1
		}
		if opts.Limit < 1 {
			opts.Limit = 10
		}
		recs, total, err := store.List(r.Context(), u.ID, opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pages := total / opts.Limit
		if total%opts.Limit != 0 {
			pages++
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"records": recs,
			"page":    opts.Page,
			"pages":   pages,
			"total":   total,
		})
	}
}

// POST /api/records {question, selectedAnswer, isCorrect, answerTime}
func CreateRecordHandler(store *record.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		var body struct {
			Question       int64 `json:"question"`
			SelectedAnswer any   `json:"selectedAnswer"`
			IsCorrect      bool  `json:"isCorrect"`
			AnswerTime     int64 `json:"answerTime"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		rec, err := store.Create(r.Context(), u.ID, body.Question, body.SelectedAnswer, body.IsCorrect, body.AnswerTime)
		if err != nil {
			if errors.Is(err, record.ErrNoQuestion) {
				writeError(w, http.StatusNotFound, "Question not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// PUT /api/records/{id} {isMarked?, isMastered?}
func UpdateRecordHandler(store *record.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		id, okID := pathID(r, "id")
		if !okID {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		var flags record.Flags
		if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		rec, err := store.UpdateFlags(r.Context(), id, u.ID, flags)
		if err != nil {
			switch {
			case errors.Is(err, record.ErrNotFound):
				writeError(w, http.StatusNotFound, "Record not found")
			case errors.Is(err, record.ErrNotOwner):
				writeError(w, http.StatusUnauthorized, "Not authorized")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// DELETE /api/records/{id}
func DeleteRecordHandler(store *record.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		id, okID := pathID(r, "id")
		if !okID {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		if err := store.Delete(r.Context(), id, u.ID); err != nil {
			switch {
			case errors.Is(err, record.ErrNotFound):
				writeError(w, http.StatusNotFound, "Record not found")
			case errors.Is(err, record.ErrNotOwner):
				writeError(w, http.StatusUnauthorized, "Not authorized")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
	}
}

// GET /api/records/stats
func RecordStatsHandler(store *record.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		st, err := store.Stats(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
