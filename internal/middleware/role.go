package middleware

import (
	"net/http"

	"github.com/toiletmap/internal/model"
)

// RequireRole пропускает запрос только для перечисленных ролей. Роль берётся
// из контекста, её кладёт AuthServiceValidate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[GetUserRole(r.Context())] {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
