package postgres

import (
	"context"
	"errors"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage Postgres реализация storage.Storage
type PostgresStorage struct {
	pool     *pgxpool.Pool
	weights  *PostgresWeightsStorage
	meals    *PostgresMealsStorage
	budgets  *PostgresBudgetsStorage
	aiUsage  *PostgresAIUsageStorage
	products *PostgresProductsStorage
	analyses *PostgresMealAnalysesStorage
	reports  *PostgresReportsStorage
	activity *PostgresActivitiesStorage
}

var _ storage.Storage = (*PostgresStorage)(nil)

// New создаёт PostgresStorage поверх пула соединений
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:     pool,
		weights:  NewPostgresWeightsStorage(pool),
		meals:    NewPostgresMealsStorage(pool),
		budgets:  NewPostgresBudgetsStorage(pool),
		aiUsage:  NewPostgresAIUsageStorage(pool),
		products: NewPostgresProductsStorage(pool),
		analyses: NewPostgresMealAnalysesStorage(pool),
		reports:  NewPostgresReportsStorage(pool),
		activity: NewPostgresActivitiesStorage(pool),
	}, nil
}

const profileColumns = `user_id, weight_kg, height_cm, age, gender, activity_level, target_weekly_loss_kg,
		weekend_mode, weekend_start_day, weekend_end_day, region, created_at, updated_at`

func scanProfile(row pgx.Row) (*storage.UserProfile, error) {
	var p storage.UserProfile
	err := row.Scan(
		&p.UserID,
		&p.WeightKg,
		&p.HeightCm,
		&p.Age,
		&p.Gender,
		&p.ActivityLevel,
		&p.TargetWeeklyLossKg,
		&p.WeekendMode,
		&p.WeekendStartDay,
		&p.WeekendEndDay,
		&p.Region,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *PostgresStorage) GetProfile(ctx context.Context, userID string) (*storage.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	return scanProfile(p.pool.QueryRow(ctx, query, userID))
}

func (p *PostgresStorage) UpsertProfile(ctx context.Context, profile *storage.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, weight_kg, height_cm, age, gender, activity_level, target_weekly_loss_kg,
			weekend_mode, weekend_start_day, weekend_end_day, region)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			target_weekly_loss_kg = EXCLUDED.target_weekly_loss_kg,
			weekend_mode = EXCLUDED.weekend_mode,
			weekend_start_day = EXCLUDED.weekend_start_day,
			weekend_end_day = EXCLUDED.weekend_end_day,
			region = EXCLUDED.region,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return p.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.WeightKg,
		profile.HeightCm,
		profile.Age,
		profile.Gender,
		profile.ActivityLevel,
		profile.TargetWeeklyLossKg,
		profile.WeekendMode,
		profile.WeekendStartDay,
		profile.WeekendEndDay,
		profile.Region,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) GetWeightsStorage() storage.WeightsStorage {
	return p.weights
}

func (p *PostgresStorage) GetMealsStorage() storage.MealsStorage {
	return p.meals
}

func (p *PostgresStorage) GetBudgetsStorage() storage.BudgetsStorage {
	return p.budgets
}

func (p *PostgresStorage) GetAIUsageStorage() storage.AIUsageStorage {
	return p.aiUsage
}

func (p *PostgresStorage) GetProductsStorage() storage.ProductsStorage {
	return p.products
}

func (p *PostgresStorage) GetMealAnalysesStorage() storage.MealAnalysesStorage {
	return p.analyses
}

// GetReportsStorage returns the reports storage
func (p *PostgresStorage) GetReportsStorage() storage.ReportsStorage {
	return p.reports
}

func (p *PostgresStorage) GetActivitiesStorage() storage.ActivitiesStorage {
	return p.activity
}
