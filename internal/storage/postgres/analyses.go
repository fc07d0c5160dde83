package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMealAnalysesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMealAnalysesStorage(pool *pgxpool.Pool) *PostgresMealAnalysesStorage {
	return &PostgresMealAnalysesStorage{pool: pool}
}

func (s *PostgresMealAnalysesStorage) SaveAnalysis(ctx context.Context, analysis *storage.MealAnalysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}

	query := `
		INSERT INTO meal_analyses (id, user_id, input_text, region, result_type, result, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.InputText,
		analysis.Region,
		analysis.ResultType,
		analysis.Result,
		analysis.Source,
	).Scan(&analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *PostgresMealAnalysesStorage) ListAnalyses(ctx context.Context, userID string, limit int) ([]storage.MealAnalysis, error) {
	query := `
		SELECT id, user_id, input_text, region, result_type, result, source, created_at
		FROM meal_analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	analyses := []storage.MealAnalysis{}
	for rows.Next() {
		var a storage.MealAnalysis
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.InputText,
			&a.Region,
			&a.ResultType,
			&a.Result,
			&a.Source,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
