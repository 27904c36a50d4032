package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/toiletmap/internal/middleware"
	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
)

type UserHandler struct {
	repo *repository.UserRepository
}

func NewUserHandler(repo *repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// Me возвращает профиль текущего пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Сессия валидна, профиля нет. Явная ошибка вместо пустого профиля.
			writeError(w, http.StatusForbidden, "profile_missing")
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки профиля")
		return
	}
	writeJSON(w, http.StatusOK, u.ToPublic())
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateMe меняет имя и телефон текущего пользователя.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Имя обязательно")
		return
	}
	if err := h.repo.UpdateProfile(r.Context(), userID, name, strings.TrimSpace(req.Phone)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusForbidden, "profile_missing")
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка сохранения")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const roleListLimit = 100

// Staff возвращает сотрудников обслуживания — список собеседников для
// граждан и админов.
func (h *UserHandler) Staff(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, model.RoleMaintenance)
}

// Admins возвращает администраторов — список собеседников для сотрудников.
func (h *UserHandler) Admins(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, model.RoleAdmin)
}

func (h *UserHandler) listByRole(w http.ResponseWriter, r *http.Request, role model.Role) {
	users, err := h.repo.ListByRole(r.Context(), role, roleListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	out := make([]model.UserPublic, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublic())
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}
