package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `id, user_id, format, week_start, object_key, size_bytes, status, created_at`

// PostgresReportsStorage хранит метаданные отчётов; сами файлы лежат в blob store.
type PostgresReportsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresReportsStorage(pool *pgxpool.Pool) *PostgresReportsStorage {
	return &PostgresReportsStorage{pool: pool}
}

func scanReport(row pgx.Row) (storage.ReportMeta, error) {
	var r storage.ReportMeta
	err := row.Scan(&r.ID, &r.UserID, &r.Format, &r.WeekStart, &r.ObjectKey, &r.SizeBytes, &r.Status, &r.CreatedAt)
	return r, err
}

func (s *PostgresReportsStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO reports (id, user_id, format, week_start, object_key, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		report.ID, report.UserID, report.Format, report.WeekStart,
		report.ObjectKey, report.SizeBytes, report.Status,
	).Scan(&report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (s *PostgresReportsStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	r, err := scanReport(s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

// ListReports returns the user's reports, newest first.
func (s *PostgresReportsStorage) ListReports(ctx context.Context, userID string, limit, offset int) ([]storage.ReportMeta, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []storage.ReportMeta{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *PostgresReportsStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
