package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

type FeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	defer logger.DeferLogDuration("feedback.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO feedback (id, user_id, toilet_id, issue_type, rating, cleanliness, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.UserID, f.ToiletID, f.IssueType, f.Rating, f.Cleanliness, f.Comment, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("feedbackRepo.Create: %w", err)
	}
	return nil
}

const feedbackJoinCols = `f.id, f.user_id, f.toilet_id, f.issue_type, f.rating, f.cleanliness,
	COALESCE(f.comment,''), f.created_at, u.name, u.email, COALESCE(t.name,'')`

func scanFeedbackDetails(s interface{ Scan(dest ...any) error }, d *model.FeedbackWithDetails) error {
	return s.Scan(&d.ID, &d.UserID, &d.ToiletID, &d.IssueType, &d.Rating, &d.Cleanliness,
		&d.Comment, &d.CreatedAt, &d.UserName, &d.UserEmail, &d.FacilityName)
}

// ListByUser возвращает отчёты одного пользователя, новые первыми.
func (r *FeedbackRepository) ListByUser(ctx context.Context, userID string) ([]model.FeedbackWithDetails, error) {
	defer logger.DeferLogDuration("feedback.ListByUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+feedbackJoinCols+`
		 FROM feedback f
		 JOIN users u ON u.id = f.user_id
		 LEFT JOIN toilets t ON t.id = f.toilet_id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("feedbackRepo.ListByUser: %w", err)
	}
	defer rows.Close()
	return collectFeedback(rows, "feedbackRepo.ListByUser")
}

// ListAll возвращает все отчёты для админ-панели, новые первыми.
func (r *FeedbackRepository) ListAll(ctx context.Context, limit int) ([]model.FeedbackWithDetails, error) {
	defer logger.DeferLogDuration("feedback.ListAll", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+feedbackJoinCols+`
		 FROM feedback f
		 JOIN users u ON u.id = f.user_id
		 LEFT JOIN toilets t ON t.id = f.toilet_id
		 ORDER BY f.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("feedbackRepo.ListAll: %w", err)
	}
	defer rows.Close()
	return collectFeedback(rows, "feedbackRepo.ListAll")
}

func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	defer logger.DeferLogDuration("feedback.Count", time.Now())()
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("feedbackRepo.Count: %w", err)
	}
	return n, nil
}

func collectFeedback(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}, op string) ([]model.FeedbackWithDetails, error) {
	items := make([]model.FeedbackWithDetails, 0, 32)
	for rows.Next() {
		var d model.FeedbackWithDetails
		if err := scanFeedbackDetails(rows, &d); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return items, nil
}
