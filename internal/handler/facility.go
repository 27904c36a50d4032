package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toiletmap/internal/geo"
	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
)

// FacilityStore — операции над туалетами, нужные хендлеру.
type FacilityStore interface {
	ListAll(ctx context.Context) ([]model.Facility, error)
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	UpdateStatus(ctx context.Context, id string, status model.FacilityStatus) error
}

type FacilityHandler struct {
	repo          FacilityStore
	defaultOrigin geo.Point
}

func NewFacilityHandler(repo FacilityStore, defaultOrigin geo.Point) *FacilityHandler {
	return &FacilityHandler{repo: repo, defaultOrigin: defaultOrigin}
}

// List возвращает все туалеты без ранжирования.
func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.repo.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"toilets": facilities})
}

// Nearby возвращает туалеты, отсортированные по расстоянию от точки lat/lon.
// Без координат ранжирует от точки по умолчанию (центр города).
func (h *FacilityHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	origin := h.defaultOrigin
	lat, okLat := queryFloat(r, "lat")
	lon, okLon := queryFloat(r, "lon")
	if okLat && okLon {
		origin = geo.Point{Latitude: lat, Longitude: lon}
	}
	facilities, err := h.repo.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"toilets": geo.Rank(origin, facilities)})
}

// Get возвращает один туалет по id.
func (h *FacilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Туалет не найден")
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus меняет статус туалета. Доступно ролям maintenance и admin.
func (h *FacilityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := model.FacilityStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Недопустимый статус")
		return
	}
	if err := h.repo.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Туалет не найден")
			return
		}
		writeError(w, http.StatusInternalServerError, "Ошибка сохранения")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
