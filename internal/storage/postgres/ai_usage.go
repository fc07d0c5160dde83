package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAIUsageStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresAIUsageStorage(pool *pgxpool.Pool) *PostgresAIUsageStorage {
	return &PostgresAIUsageStorage{pool: pool}
}

// ReserveUsage выполняется одним statement: строка блокируется на время UPDATE,
// поэтому параллельные вызовы не могут поднять счётчик выше limit.
func (s *PostgresAIUsageStorage) ReserveUsage(ctx context.Context, userID string, date time.Time, limit int) (int, bool, error) {
	if limit <= 0 {
		count, err := s.GetUsage(ctx, userID, date)
		return count, false, err
	}

	query := `
		INSERT INTO ai_usage (user_id, date, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, date) DO UPDATE
			SET count = ai_usage.count + 1
			WHERE ai_usage.count < $3
		RETURNING count
	`

	var count int
	err := s.pool.QueryRow(ctx, query, userID, date, limit).Scan(&count)
	if err == nil {
		return count, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to reserve ai usage: %w", err)
	}

	// лимит исчерпан: WHERE отфильтровал апдейт
	count, err = s.GetUsage(ctx, userID, date)
	return count, false, err
}

func (s *PostgresAIUsageStorage) GetUsage(ctx context.Context, userID string, date time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count FROM ai_usage WHERE user_id = $1 AND date = $2`, userID, date).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get ai usage: %w", err)
	}
	return count, nil
}
