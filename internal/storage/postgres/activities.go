package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activityColumns = `id, user_id, date, type, duration_minutes, estimated_calories, notes, created_at, updated_at`

type PostgresActivitiesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresActivitiesStorage(pool *pgxpool.Pool) *PostgresActivitiesStorage {
	return &PostgresActivitiesStorage{pool: pool}
}

func scanActivity(row pgx.Row) (storage.Activity, error) {
	var a storage.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.Type, &a.DurationMinutes,
		&a.EstimatedCalories, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *PostgresActivitiesStorage) CreateActivity(ctx context.Context, activity *storage.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, date, type, duration_minutes, estimated_calories, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		activity.ID, activity.UserID, activity.Date, activity.Type,
		activity.DurationMinutes, activity.EstimatedCalories, activity.Notes,
	).Scan(&activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (s *PostgresActivitiesStorage) GetActivity(ctx context.Context, userID string, id uuid.UUID) (*storage.Activity, error) {
	a, err := scanActivity(s.pool.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

func (s *PostgresActivitiesStorage) ListActivities(ctx context.Context, userID string, from, to time.Time) ([]storage.Activity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, created_at DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []storage.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *PostgresActivitiesStorage) UpdateActivity(ctx context.Context, activity *storage.Activity) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE activities
		SET date = $3, type = $4, duration_minutes = $5, estimated_calories = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at`,
		activity.ID, activity.UserID, activity.Date, activity.Type,
		activity.DurationMinutes, activity.EstimatedCalories, activity.Notes,
	).Scan(&activity.CreatedAt, &activity.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

func (s *PostgresActivitiesStorage) DeleteActivity(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
