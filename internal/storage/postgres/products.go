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

const productColumns = `id, name, brand, barcode, calories_per_100g, protein_per_100g, fat_per_100g,
		carbs_per_100g, fiber_per_100g, sodium_per_100g, created_at`

type PostgresProductsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProductsStorage(pool *pgxpool.Pool) *PostgresProductsStorage {
	return &PostgresProductsStorage{pool: pool}
}

func (s *PostgresProductsStorage) CreateProduct(ctx context.Context, product *storage.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	query := `
		INSERT INTO products (id, name, brand, barcode, calories_per_100g, protein_per_100g, fat_per_100g,
			carbs_per_100g, fiber_per_100g, sodium_per_100g)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Brand,
		product.Barcode,
		product.CaloriesPer100g,
		product.ProteinPer100g,
		product.FatPer100g,
		product.CarbsPer100g,
		product.FiberPer100g,
		product.SodiumPer100g,
	).Scan(&product.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *PostgresProductsStorage) GetProduct(ctx context.Context, id uuid.UUID) (*storage.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *PostgresProductsStorage) SearchProducts(ctx context.Context, query string, limit int) ([]storage.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%' OR barcode = $1
		ORDER BY lower(name)
		LIMIT $2`

	rows, err := s.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []storage.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*storage.Product, error) {
	var p storage.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Barcode,
		&p.CaloriesPer100g,
		&p.ProteinPer100g,
		&p.FatPer100g,
		&p.CarbsPer100g,
		&p.FiberPer100g,
		&p.SodiumPer100g,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
