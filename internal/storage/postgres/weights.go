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

type PostgresWeightsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresWeightsStorage(pool *pgxpool.Pool) *PostgresWeightsStorage {
	return &PostgresWeightsStorage{pool: pool}
}

func (s *PostgresWeightsStorage) AddWeight(ctx context.Context, sample *storage.WeightSample) error {
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	flags := sample.Flags
	if flags == nil {
		flags = []string{}
	}

	query := `
		INSERT INTO weight_samples (id, user_id, date, value_kg, flags, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		sample.ID,
		sample.UserID,
		sample.Date,
		sample.ValueKg,
		flags,
		sample.Source,
		sample.Notes,
	).Scan(&sample.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add weight: %w", err)
	}
	return nil
}

func (s *PostgresWeightsStorage) ListWeights(ctx context.Context, userID string, from, to time.Time) ([]storage.WeightSample, error) {
	query := `
		SELECT id, user_id, date, value_kg, flags, source, notes, created_at
		FROM weight_samples
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}
	defer rows.Close()

	samples := []storage.WeightSample{}
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *w)
	}
	return samples, rows.Err()
}

func (s *PostgresWeightsStorage) LatestWeight(ctx context.Context, userID string) (*storage.WeightSample, error) {
	query := `
		SELECT id, user_id, date, value_kg, flags, source, notes, created_at
		FROM weight_samples
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT 1
	`
	w, err := scanWeight(s.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return w, err
}

func (s *PostgresWeightsStorage) DeleteWeight(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM weight_samples WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete weight: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanWeight(row pgx.Row) (*storage.WeightSample, error) {
	var w storage.WeightSample
	err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.ValueKg, &w.Flags, &w.Source, &w.Notes, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
