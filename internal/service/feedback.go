package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toiletmap/internal/model"
)

var ErrInvalidFeedback = errors.New("invalid feedback")

// FeedbackStore абстрагирует хранилище отчётов для тестов.
type FeedbackStore interface {
	Create(ctx context.Context, f *model.Feedback) error
	ListByUser(ctx context.Context, userID string) ([]model.FeedbackWithDetails, error)
	ListAll(ctx context.Context, limit int) ([]model.FeedbackWithDetails, error)
}

type FeedbackService struct {
	store FeedbackStore
}

func NewFeedbackService(store FeedbackStore) *FeedbackService {
	return &FeedbackService{store: store}
}

type SubmitFeedbackRequest struct {
	ToiletID    string `json:"toilet_id"`
	IssueType   string `json:"issue_type"`
	Rating      int    `json:"rating"`
	Cleanliness int    `json:"cleanliness"`
	Comment     string `json:"comment"`
}

// Submit валидирует отчёт и сохраняет его. Все три поля обязательны:
// тип проблемы, общая оценка и оценка чистоты, обе в диапазоне 1..5.
func (s *FeedbackService) Submit(ctx context.Context, userID string, req SubmitFeedbackRequest) (*model.Feedback, error) {
	issue := model.IssueType(strings.TrimSpace(req.IssueType))
	if !issue.Valid() {
		return nil, fmt.Errorf("%w: unknown issue type %q", ErrInvalidFeedback, req.IssueType)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1..5", ErrInvalidFeedback)
	}
	if req.Cleanliness < 1 || req.Cleanliness > 5 {
		return nil, fmt.Errorf("%w: cleanliness must be 1..5", ErrInvalidFeedback)
	}
	f := &model.Feedback{
		ID:          uuid.New().String(),
		UserID:      userID,
		ToiletID:    strings.TrimSpace(req.ToiletID),
		IssueType:   issue,
		Rating:      req.Rating,
		Cleanliness: req.Cleanliness,
		Comment:     strings.TrimSpace(req.Comment),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Mine возвращает отчёты пользователя, новые первыми.
func (s *FeedbackService) Mine(ctx context.Context, userID string) ([]model.FeedbackWithDetails, error) {
	return s.store.ListByUser(ctx, userID)
}

// All — все отчёты для админ-панели.
func (s *FeedbackService) All(ctx context.Context, limit int) ([]model.FeedbackWithDetails, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.store.ListAll(ctx, limit)
}
