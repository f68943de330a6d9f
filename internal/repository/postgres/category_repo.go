package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/shopcore/internal/domain"
)

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT category_id, description FROM category`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query categories: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Description); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return result, nil
}

func (s *Store) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	query := `SELECT category_id, description FROM category WHERE category_id = $1`
	return scanCategory(s.pool.QueryRow(ctx, query, categoryID))
}

func (s *Store) GetCategoryByDescription(ctx context.Context, desc string) (*domain.Category, error) {
	query := `SELECT category_id, description FROM category WHERE description = $1`
	return scanCategory(s.pool.QueryRow(ctx, query, desc))
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	c := &domain.Category{}
	err := row.Scan(&c.ID, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to fetch category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, desc string) (*domain.Category, error) {
	query := `INSERT INTO category (description) VALUES ($1) RETURNING category_id, description`
	return scanCategory(s.pool.QueryRow(ctx, query, desc))
}

// DeleteCategory отвязывает товары и удаляет категорию одной транзакцией.
func (s *Store) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM product_category WHERE category_id = $1`, categoryID); err != nil {
			return fmt.Errorf("postgres: failed to unlink category: %w", err)
		}

		ct, err := tx.Exec(ctx, `DELETE FROM category WHERE category_id = $1`, categoryID)
		if err != nil {
			return fmt.Errorf("postgres: failed to delete category: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}
