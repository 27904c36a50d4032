package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toiletmap/internal/model"
)

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	gate := RequireRole(model.RoleAdmin, model.RoleMaintenance)(next)

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusNoContent},
		{model.RoleMaintenance, http.StatusNoContent},
		{model.RoleCitizen, http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, tc.role))
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "role %q", tc.role)
	}
}

func TestRequireRoleWithoutContext(t *testing.T) {
	gate := RequireRole(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
