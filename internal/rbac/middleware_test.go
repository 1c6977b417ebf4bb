package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWith(t *testing.T, mw func(http.Handler) http.Handler, role string) *httptest.ResponseRecorder {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithRole(req.Context(), role))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRequire(t *testing.T) {
	mw := Require("questions:manage")

	if rr := serveWith(t, mw, RoleAdmin); rr.Code != http.StatusNoContent {
		t.Errorf("admin: %d", rr.Code)
	}
	if rr := serveWith(t, mw, RoleUser); rr.Code != http.StatusForbidden {
		t.Errorf("user: %d", rr.Code)
	}
	if rr := serveWith(t, mw, ""); rr.Code != http.StatusForbidden {
		t.Errorf("no role: %d", rr.Code)
	}
}

func TestRequireAny(t *testing.T) {
	mw := RequireAny("questions:import", "questions:manage")

	if rr := serveWith(t, mw, RoleAdmin); rr.Code != http.StatusNoContent {
		t.Errorf("admin: %d", rr.Code)
	}
	if rr := serveWith(t, mw, RoleUser); rr.Code != http.StatusForbidden {
		t.Errorf("user: %d", rr.Code)
	}
	if rr := serveWith(t, mw, RoleGuest); rr.Code != http.StatusForbidden {
		t.Errorf("guest: %d", rr.Code)
	}
}
