package handler

import (
	"net/http"

	"github.com/toiletmap/internal/model"
	"github.com/toiletmap/internal/repository"
)

type StatsHandler struct {
	facilityRepo *repository.FacilityRepository
	feedbackRepo *repository.FeedbackRepository
	userRepo     *repository.UserRepository
}

func NewStatsHandler(
	facilityRepo *repository.FacilityRepository,
	feedbackRepo *repository.FeedbackRepository,
	userRepo *repository.UserRepository,
) *StatsHandler {
	return &StatsHandler{facilityRepo: facilityRepo, feedbackRepo: feedbackRepo, userRepo: userRepo}
}

type statsResponse struct {
	Toilets            int `json:"toilets"`
	ToiletsUsable      int `json:"toilets_usable"`
	ToiletsMaintenance int `json:"toilets_maintenance"`
	FeedbackCount      int `json:"feedback_count"`
	Citizens           int `json:"citizens"`
	Staff              int `json:"staff"`
}

// Stats возвращает счётчики для админ-панели.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		resp statsResponse
		err  error
	)
	if resp.Toilets, err = h.facilityRepo.Count(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	if resp.ToiletsUsable, err = h.facilityRepo.CountByStatus(ctx, model.FacilityStatusUsable); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	if resp.ToiletsMaintenance, err = h.facilityRepo.CountByStatus(ctx, model.FacilityStatusMaintenance); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	if resp.FeedbackCount, err = h.feedbackRepo.Count(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	if resp.Citizens, err = h.userRepo.CountByRole(ctx, model.RoleCitizen); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	if resp.Staff, err = h.userRepo.CountByRole(ctx, model.RoleMaintenance); err != nil {
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
