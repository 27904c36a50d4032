package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/toiletmap/internal/middleware"
	"github.com/toiletmap/internal/service"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// Submit принимает отчёт о проблеме с туалетом.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req service.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fb, err := h.svc.Submit(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFeedback) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка сохранения отчёта")
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}

// Mine возвращает отчёты текущего пользователя.
func (h *FeedbackHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.Mine(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": list})
}

// All — все отчёты для админ-панели (роль проверяется в middleware).
func (h *FeedbackHandler) All(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.All(r.Context(), queryInt(r, "limit", 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": list})
}
