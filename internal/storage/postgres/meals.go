package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMealsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMealsStorage(pool *pgxpool.Pool) *PostgresMealsStorage {
	return &PostgresMealsStorage{pool: pool}
}

func (s *PostgresMealsStorage) CreateMeal(ctx context.Context, meal *storage.Meal) error {
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}

	query := `
		INSERT INTO meals (id, user_id, date, meal_type, description, total_calories, total_protein, total_fat, total_carbs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		meal.ID,
		meal.UserID,
		meal.Date,
		meal.MealType,
		meal.Description,
		meal.TotalCalories,
		meal.TotalProtein,
		meal.TotalFat,
		meal.TotalCarbs,
	).Scan(&meal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meal: %w", err)
	}
	return nil
}

func (s *PostgresMealsStorage) ListMeals(ctx context.Context, userID string, from, to time.Time) ([]storage.Meal, error) {
	query := `
		SELECT id, user_id, date, meal_type, description, total_calories, total_protein, total_fat, total_carbs, created_at
		FROM meals
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	meals := []storage.Meal{}
	for rows.Next() {
		var m storage.Meal
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Date,
			&m.MealType,
			&m.Description,
			&m.TotalCalories,
			&m.TotalProtein,
			&m.TotalFat,
			&m.TotalCarbs,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *PostgresMealsStorage) DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
