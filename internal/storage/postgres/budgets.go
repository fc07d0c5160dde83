package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const budgetColumns = `id, user_id, start_date, end_date, target_calories, target_protein, target_fat, target_carbs,
		weekend_bonus_calories, status, created_at, updated_at`

type PostgresBudgetsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresBudgetsStorage(pool *pgxpool.Pool) *PostgresBudgetsStorage {
	return &PostgresBudgetsStorage{pool: pool}
}

func (s *PostgresBudgetsStorage) GetActiveBudget(ctx context.Context, userID string, startDate time.Time) (*storage.WeeklyBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM weekly_budgets
		WHERE user_id = $1 AND start_date = $2 AND status = 'active'`

	b, err := scanBudget(s.pool.QueryRow(ctx, query, userID, startDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active budget: %w", err)
	}
	return b, nil
}

// CreateActiveBudget вставляет бюджет через частичный уникальный индекс.
// Проигравший гонку получает пустой RETURNING и перечитывает строку победителя.
func (s *PostgresBudgetsStorage) CreateActiveBudget(ctx context.Context, budget storage.WeeklyBudget) (*storage.WeeklyBudget, bool, error) {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}

	query := `
		INSERT INTO weekly_budgets (id, user_id, start_date, end_date, target_calories, target_protein, target_fat,
			target_carbs, weekend_bonus_calories, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'active')
		ON CONFLICT (user_id, start_date) WHERE status = 'active' DO NOTHING
		RETURNING ` + budgetColumns

	created, err := scanBudget(s.pool.QueryRow(ctx, query,
		budget.ID,
		budget.UserID,
		budget.StartDate,
		budget.EndDate,
		budget.TargetCalories,
		budget.TargetProtein,
		budget.TargetFat,
		budget.TargetCarbs,
		budget.WeekendBonusCalories,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create budget: %w", err)
	}

	existing, err := s.GetActiveBudget(ctx, budget.UserID, budget.StartDate)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresBudgetsStorage) GetBudget(ctx context.Context, userID string, id uuid.UUID) (*storage.WeeklyBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM weekly_budgets WHERE id = $1 AND user_id = $2`

	b, err := scanBudget(s.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (s *PostgresBudgetsStorage) ListBudgets(ctx context.Context, userID string, limit int) ([]storage.WeeklyBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM weekly_budgets
		WHERE user_id = $1
		ORDER BY start_date DESC, created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []storage.WeeklyBudget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *PostgresBudgetsStorage) UpdateBudget(ctx context.Context, budget *storage.WeeklyBudget) error {
	query := `
		UPDATE weekly_budgets
		SET target_calories = $3, target_protein = $4, target_fat = $5, target_carbs = $6,
			weekend_bonus_calories = $7, status = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		budget.ID,
		budget.UserID,
		budget.TargetCalories,
		budget.TargetProtein,
		budget.TargetFat,
		budget.TargetCarbs,
		budget.WeekendBonusCalories,
		budget.Status,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return storage.ErrConflict
	default:
		return fmt.Errorf("failed to update budget: %w", err)
	}
}

func scanBudget(row pgx.Row) (*storage.WeeklyBudget, error) {
	var b storage.WeeklyBudget
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.StartDate,
		&b.EndDate,
		&b.TargetCalories,
		&b.TargetProtein,
		&b.TargetFat,
		&b.TargetCarbs,
		&b.WeekendBonusCalories,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
