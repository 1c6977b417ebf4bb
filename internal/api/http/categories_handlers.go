package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/examprep/examprep-server/internal/category"
)

type categoryBody struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Parent      *int64 `json:"parent"`
	Description string `json:"description"`
}

// GET /api/categories?type=&parent=
func ListCategoriesHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := category.ListOpts{Type: r.URL.Query().Get("type")}
		switch p := r.URL.Query().Get("parent"); p {
		case "":
			// no filter
		case "null", "undefined":
			opts.RootOnly = true
		default:
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid parent")
				return
			}
			opts.Parent = &id
		}
		cs, err := store.List(r.Context(), opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cs)
	}
}

// GET /api/categories/{id}
func GetCategoryHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		c, err := store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, category.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Category not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /api/categories/{id}/children
func CategoryChildrenHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		cs, err := store.Children(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cs)
	}
}

// POST /api/categories (admin)
func CreateCategoryHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if body.Name == "" || body.Type == "" {
			writeError(w, http.StatusBadRequest, "name and type required")
			return
		}
		c, err := store.Create(r.Context(), body.Name, body.Type, body.Parent, body.Description)
		if err != nil {
			if errors.Is(err, category.ErrExists) {
				writeError(w, http.StatusBadRequest, "Category already exists")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// PUT /api/categories/{id} (admin)
func UpdateCategoryHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		var body categoryBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		c, err := store.Update(r.Context(), id, body.Name, body.Type, body.Parent, body.Description)
		if err != nil {
			if errors.Is(err, category.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Category not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /api/categories/{id} (admin)
func DeleteCategoryHandler(store *category.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, category.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Category not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
	}
}
