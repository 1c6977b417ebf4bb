package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/examprep/examprep-server/internal/user"
)

const bcryptCost = 10

type tokenResponse struct {
	ID       int64  `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	IsGuest  bool   `json:"isGuest,omitempty"`
	GuestID  string `json:"guestId,omitempty"`
	Token    string `json:"token"`
}

// POST /api/auth/register {username,email,password}
func RegisterHandler(svc *Service, users *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeJSONError(w, http.StatusBadRequest, "username, email and password required")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Email, string(hash), false, false)
		if err != nil {
			if errors.Is(err, user.ErrExists) {
				writeJSONError(w, http.StatusBadRequest, "User already exists")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		tok, err := svc.Issue(u.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin, Token: tok})
	}
}

// POST /api/auth/login {email,password}
func LoginHandler(svc *Service, users *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "bad json")
			return
		}
		u, err := users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		_ = users.TouchLastLogin(r.Context(), u.ID)
		tok, err := svc.Issue(u.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin, Token: tok})
	}
}

// POST /api/auth/guest creates a throwaway account so the app is usable
// without registration.
func GuestHandler(svc *Service, users *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID := "guest_" + uuid.NewString()[:8]
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		u, err := users.Create(r.Context(), guestID, guestID+"@example.com", string(hash), false, true)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		tok, err := svc.Issue(u.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsGuest: true, GuestID: guestID, Token: tok})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
