package auth

import (
	"net/http"
	"strings"

	"github.com/examprep/examprep-server/internal/rbac"
	"github.com/examprep/examprep-server/internal/user"
)

// Middleware validates the bearer token, loads the account it names, and
// attaches both the user and their role to the request context.
func Middleware(svc *Service, users *user.SQLStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeUnauthorized(w, "Not authorized, no token")
				return
			}
			id, err := svc.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				writeUnauthorized(w, "Not authorized, token failed")
				return
			}
			u, err := users.Get(r.Context(), id)
			if err != nil {
				writeUnauthorized(w, "Not authorized, token failed")
				return
			}
			ctx := WithUser(r.Context(), u)
			ctx = rbac.WithRole(ctx, roleOf(u))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleOf(u user.User) string {
	switch {
	case u.IsAdmin:
		return rbac.RoleAdmin
	case u.IsGuest:
		return rbac.RoleGuest
	default:
		return rbac.RoleUser
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + msg + `"}`))
}
