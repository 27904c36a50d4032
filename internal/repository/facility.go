package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toiletmap/internal/logger"
	"github.com/toiletmap/internal/model"
)

const facilityCols = `id, name, COALESCE(address,''), latitude, longitude, status,
	COALESCE(capacity,0), COALESCE(region,''), created_at`

type FacilityRepository struct {
	pool *pgxpool.Pool
}

func NewFacilityRepository(pool *pgxpool.Pool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

func scanFacility(s interface{ Scan(dest ...any) error }, f *model.Facility) error {
	return s.Scan(&f.ID, &f.Name, &f.Address, &f.Latitude, &f.Longitude, &f.Status,
		&f.Capacity, &f.Region, &f.CreatedAt)
}

func (r *FacilityRepository) Create(ctx context.Context, f *model.Facility) error {
	defer logger.DeferLogDuration("facility.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO toilets (id, name, address, latitude, longitude, status, capacity, region, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), NULLIF($8, ''), $9)`,
		f.ID, f.Name, f.Address, f.Latitude, f.Longitude, f.Status, f.Capacity, f.Region, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("facilityRepo.Create: %w", err)
	}
	return nil
}

func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	defer logger.DeferLogDuration("facility.GetByID", time.Now())()
	f := &model.Facility{}
	row := r.pool.QueryRow(ctx, `SELECT `+facilityCols+` FROM toilets WHERE id = $1`, id)
	if err := scanFacility(row, f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("facilityRepo.GetByID: %w", err)
	}
	return f, nil
}

func (r *FacilityRepository) ListAll(ctx context.Context) ([]model.Facility, error) {
	defer logger.DeferLogDuration("facility.ListAll", time.Now())()
	rows, err := r.pool.Query(ctx, `SELECT `+facilityCols+` FROM toilets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("facilityRepo.ListAll: %w", err)
	}
	defer rows.Close()
	facilities := make([]model.Facility, 0, 64)
	for rows.Next() {
		var f model.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, fmt.Errorf("facilityRepo.ListAll scan: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("facilityRepo.ListAll rows: %w", err)
	}
	return facilities, nil
}

func (r *FacilityRepository) UpdateStatus(ctx context.Context, id string, status model.FacilityStatus) error {
	defer logger.DeferLogDuration("facility.UpdateStatus", time.Now())()
	tag, err := r.pool.Exec(ctx, `UPDATE toilets SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("facilityRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FacilityRepository) Count(ctx context.Context) (int, error) {
	defer logger.DeferLogDuration("facility.Count", time.Now())()
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM toilets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("facilityRepo.Count: %w", err)
	}
	return n, nil
}

func (r *FacilityRepository) CountByStatus(ctx context.Context, status model.FacilityStatus) (int, error) {
	defer logger.DeferLogDuration("facility.CountByStatus", time.Now())()
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM toilets WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("facilityRepo.CountByStatus: %w", err)
	}
	return n, nil
}
