package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/examprep/examprep-server/internal/auth"
	"github.com/examprep/examprep-server/internal/progress"
)

// GET /api/progress?category=
func ListProgressHandler(store *progress.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		ps, err := store.List(r.Context(), u.ID, queryInt64(r, "category"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

// GET /api/progress/{categoryID}. A user with no stored progress gets a
// zero-value record, not a 404.
func GetProgressHandler(store *progress.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		catID, okID := pathID(r, "categoryID")
		if !okID {
			writeError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		p, err := store.GetByCategory(r.Context(), u.ID, catID)
		if err != nil {
			if errors.Is(err, progress.ErrNotFound) {
				now := time.Now().Unix()
				writeJSON(w, http.StatusOK, progress.Progress{
					UserID:     u.ID,
					CategoryID: catID,
					Category:   progress.CategoryInfo{ID: catID},
					CreatedAt:  now,
					UpdatedAt:  now,
				})
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PUT /api/progress/{categoryID} {totalQuestions?, answeredQuestions?}
func UpsertProgressHandler(store *progress.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		catID, okID := pathID(r, "categoryID")
		if !okID {
			writeError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		var body struct {
			TotalQuestions    *int `json:"totalQuestions"`
			AnsweredQuestions *int `json:"answeredQuestions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		completed, total := -1, -1
		if body.AnsweredQuestions != nil {
			completed = *body.AnsweredQuestions
		}
		if body.TotalQuestions != nil {
			total = *body.TotalQuestions
		}
		p, err := store.Upsert(r.Context(), u.ID, catID, completed, total)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// DELETE /api/progress/{categoryID}
func DeleteProgressHandler(store *progress.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		catID, okID := pathID(r, "categoryID")
		if !okID {
			writeError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		if err := store.Delete(r.Context(), u.ID, catID); err != nil {
			if errors.Is(err, progress.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Progress not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Progress deleted"})
	}
}
