package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) Create(ctx context.Context, a *model.Alert) error {
	defer logger.DeferLogDuration("alert.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO alerts (id, body, created_at) VALUES ($1, $2, $3)`,
		a.ID, a.Body, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("alertRepo.Create: %w", err)
	}
	return nil
}

// ListAll возвращает все объявления, новые первыми.
func (r *AlertRepository) ListAll(ctx context.Context) ([]model.Alert, error) {
	defer logger.DeferLogDuration("alert.ListAll", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, body, created_at FROM alerts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("alertRepo.ListAll: %w", err)
	}
	defer rows.Close()
	alerts := make([]model.Alert, 0, 16)
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("alertRepo.ListAll scan: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alertRepo.ListAll rows: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	defer logger.DeferLogDuration("alert.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("alertRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
