package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
	"github.com/toiletmap/internal/ws"
)

// PushBroadcaster рассылает пуш всем подписчикам.
type PushBroadcaster interface {
	NotifyBroadcast(ctx context.Context, title, body string, data map[string]string)
}

type AlertHandler struct {
	repo *repository.AlertRepository
	hub  *ws.Hub
	push PushBroadcaster
}

func NewAlertHandler(repo *repository.AlertRepository, hub *ws.Hub, push PushBroadcaster) *AlertHandler {
	return &AlertHandler{repo: repo, hub: hub, push: push}
}

// List возвращает все объявления, новые первыми.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.repo.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

type createAlertRequest struct {
	Body string `json:"body"`
}

// Create публикует объявление и рассылает его по WebSocket и пушам.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		writeError(w, http.StatusBadRequest, "Текст объявления обязателен")
		return
	}
	a := &model.Alert{
		ID:        uuid.New().String(),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.Create(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка сохранения")
		return
	}
	if h.hub != nil {
		h.hub.BroadcastAlert(*a)
	}
	if h.push != nil {
		go h.push.NotifyBroadcast(context.Background(), "Городское объявление", body, map[string]string{"alert_id": a.ID})
	}
	writeJSON(w, http.StatusCreated, a)
}

// Delete удаляет объявление.
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Объявление не найдено")
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка удаления")
		return
	}
	if h.hub != nil {
		h.hub.BroadcastAlertDeleted(id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
