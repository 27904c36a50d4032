package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toiletmap/internal/chat"
	"github.com/toiletmap/internal/middleware"
	"github.com/toiletmap/internal/model"
)

type fakeMessageHistory struct {
	roomID   string
	limit    int
	messages []model.ChatMessage
}

func (f *fakeMessageHistory) History(_ context.Context, roomID string, limit int) ([]model.ChatMessage, error) {
	f.roomID = roomID
	f.limit = limit
	out := make([]model.ChatMessage, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func historyRequest(userID, counterpartID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+counterpartID+"/messages", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("counterpartId", counterpartID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestRoomHistoryChronologicalOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Хранилище отдаёт новые первыми.
	store := &fakeMessageHistory{messages: []model.ChatMessage{
		{ID: "m3", Body: "third", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m2", Body: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "m1", Body: "first", CreatedAt: base},
	}}
	h := NewMessageHandler(store)

	rec := httptest.NewRecorder()
	h.RoomHistory(rec, historyRequest("citizen-1", "staff-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RoomID   string              `json:"room_id"`
		Messages []model.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chat.RoomKey("citizen-1", "staff-1"), resp.RoomID)
	assert.Equal(t, resp.RoomID, store.roomID)

	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "m1", resp.Messages[0].ID)
	assert.Equal(t, "m2", resp.Messages[1].ID)
	assert.Equal(t, "m3", resp.Messages[2].ID)
	for i := 1; i < len(resp.Messages); i++ {
		assert.True(t, !resp.Messages[i].CreatedAt.Before(resp.Messages[i-1].CreatedAt))
	}
}

func TestRoomHistoryRejectsSelfAndAnonymous(t *testing.T) {
	h := NewMessageHandler(&fakeMessageHistory{})

	rec := httptest.NewRecorder()
	h.RoomHistory(rec, historyRequest("u1", "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.RoomHistory(rec, historyRequest("", "u2"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
