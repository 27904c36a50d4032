package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toiletmap/internal/chat"
	"github.com/toiletmap/internal/middleware"
	"github.com/toiletmap/internal/model"
)

const defaultHistoryLimit = 100

// MessageHistory читает историю комнаты из хранилища, новые первыми.
type MessageHistory interface {
	History(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error)
}

type MessageHandler struct {
	repo MessageHistory
}

func NewMessageHandler(repo MessageHistory) *MessageHandler {
	return &MessageHandler{repo: repo}
}

// RoomHistory возвращает историю комнаты с собеседником в хронологическом
// порядке. Ключ комнаты выводится из пары id, клиент передаёт только
// собеседника.
func (h *MessageHandler) RoomHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	counterpartID := chi.URLParam(r, "counterpartId")
	if counterpartID == "" || counterpartID == userID {
		writeError(w, http.StatusBadRequest, "counterpart required")
		return
	}
	roomID := chat.RoomKey(userID, counterpartID)
	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	messages, err := h.repo.History(r.Context(), roomID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки истории")
		return
	}
	// Хранилище отдаёт новые первыми, клиент рисует сверху вниз.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":  roomID,
		"messages": messages,
	})
}
