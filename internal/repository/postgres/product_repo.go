package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/shopcore/internal/domain"
)

// ListProducts выбирает каталог плоскими строками (товар + опция + категория).
// Показываем только позиции с остатком; фильтры добавляются по мере наличия.
func (s *Store) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.ProductRow, error) {
	query := `
		SELECT p.product_id, p.price, po.color, po.size, po.stock, c.description AS category
		FROM product_option po
		JOIN product p ON po.product_id = p.product_id
		JOIN product_category pc ON p.product_id = pc.product_id
		JOIN category c ON pc.category_id = c.category_id
		WHERE po.stock > 0`

	var args []interface{}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND c.description = $%d", len(args))
	}
	if f.Color != "" {
		args = append(args, f.Color)
		query += fmt.Sprintf(" AND po.color = $%d", len(args))
	}
	if f.Size != "" {
		args = append(args, f.Size)
		query += fmt.Sprintf(" AND po.size = $%d", len(args))
	}
	if f.PriceMin > 0 {
		args = append(args, f.PriceMin)
		query += fmt.Sprintf(" AND p.price >= $%d", len(args))
	}
	if f.PriceMax > 0 {
		args = append(args, f.PriceMax)
		query += fmt.Sprintf(" AND p.price <= $%d", len(args))
	}
	query += " ORDER BY p.product_id, po.color"

	return s.queryProductRows(ctx, query, args...)
}

// GetProductRows возвращает строки одного товара. Пустой результат — товара нет.
// LEFT JOIN по опциям: товар без опций все равно виден.
func (s *Store) GetProductRows(ctx context.Context, productID int64) ([]domain.ProductRow, error) {
	query := `
		SELECT p.product_id, p.price, po.color, po.size, po.stock, c.description AS category
		FROM product p
		LEFT JOIN product_option po ON po.product_id = p.product_id
		JOIN product_category pc ON p.product_id = pc.product_id
		JOIN category c ON pc.category_id = c.category_id
		WHERE p.product_id = $1`

	return s.queryProductRows(ctx, query, productID)
}

func (s *Store) queryProductRows(ctx context.Context, query string, args ...interface{}) ([]domain.ProductRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductRow, 0)
	for rows.Next() {
		var (
			r           domain.ProductRow
			color, size *string
			stock       *int
		)
		if err := rows.Scan(&r.ProductID, &r.Price, &color, &size, &stock, &r.Category); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan product row: %w", err)
		}
		if color != nil {
			r.Color, r.Size, r.Stock = *color, *size, *stock
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return result, nil
}

// CreateProduct заводит товар и привязывает категории одной транзакцией.
// Недостающие категории создаются на лету (ON CONFLICT DO NOTHING).
func (s *Store) CreateProduct(ctx context.Context, price float64, categories []string) (int64, error) {
	var productID int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO product (price) VALUES ($1) RETURNING product_id`, price,
		).Scan(&productID)
		if err != nil {
			return fmt.Errorf("postgres: failed to create product: %w", err)
		}

		for _, desc := range categories {
			if err := linkCategory(ctx, tx, productID, desc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return productID, nil
}

func linkCategory(ctx context.Context, tx pgx.Tx, productID int64, desc string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO category (description) VALUES ($1) ON CONFLICT (description) DO NOTHING`, desc)
	if err != nil {
		return fmt.Errorf("postgres: failed to upsert category: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_category (product_id, category_id)
		SELECT $1, category_id FROM category WHERE description = $2`, productID, desc)
	if err != nil {
		return fmt.Errorf("postgres: failed to link category: %w", err)
	}
	return nil
}

// UpdateProduct меняет цену и/или полностью заменяет набор категорий.
func (s *Store) UpdateProduct(ctx context.Context, productID int64, upd domain.ProductUpdate) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if upd.Price != nil {
			ct, err := tx.Exec(ctx,
				`UPDATE product SET price = $1 WHERE product_id = $2`, *upd.Price, productID)
			if err != nil {
				return fmt.Errorf("postgres: failed to update price: %w", err)
			}
			if ct.RowsAffected() == 0 {
				return domain.ErrProductNotFound
			}
		}

		if upd.Categories != nil {
			_, err := tx.Exec(ctx,
				`DELETE FROM product_category WHERE product_id = $1`, productID)
			if err != nil {
				return fmt.Errorf("postgres: failed to unlink categories: %w", err)
			}
			for _, desc := range upd.Categories {
				if err := linkCategory(ctx, tx, productID, desc); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteProduct убирает товар и все, что на него ссылается:
// связи с категориями, позиции корзин, опции — одной транзакцией.
func (s *Store) DeleteProduct(ctx context.Context, productID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		steps := []string{
			`DELETE FROM product_category WHERE product_id = $1`,
			`DELETE FROM cart_item WHERE product_option_id IN
				(SELECT option_id FROM product_option WHERE product_id = $1)`,
			`DELETE FROM product_option WHERE product_id = $1`,
			`DELETE FROM product WHERE product_id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.Exec(ctx, q, productID); err != nil {
				return fmt.Errorf("postgres: failed to delete product: %w", err)
			}
		}
		return nil
	})
}

// CreateOptions добавляет опции товара. Существующая пара цвет/размер
// пополняет остаток, новая — создается (это приход на склад, не перезапись).
func (s *Store) CreateOptions(ctx context.Context, productID int64, opts domain.OptionSet) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for color, sizes := range opts {
			for size, stock := range sizes {
				_, err := tx.Exec(ctx, `
					INSERT INTO product_option (product_id, color, size, stock)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (product_id, color, size)
					DO UPDATE SET stock = product_option.stock + EXCLUDED.stock`,
					productID, color, size, stock)
				if err != nil {
					return fmt.Errorf("postgres: failed to upsert option: %w", err)
				}
			}
		}
		return nil
	})
}

// DeleteOption удаляет один размер либо, при пустом size, весь цвет.
func (s *Store) DeleteOption(ctx context.Context, productID int64, color, size string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if size != "" {
			ct, err := tx.Exec(ctx,
				`DELETE FROM product_option WHERE product_id = $1 AND color = $2 AND size = $3`,
				productID, color, size)
			if err != nil {
				return fmt.Errorf("postgres: failed to delete option: %w", err)
			}
			if ct.RowsAffected() == 0 {
				return domain.ErrOptionNotFound
			}
			return nil
		}

		ct, err := tx.Exec(ctx,
			`DELETE FROM product_option WHERE product_id = $1 AND color = $2`, productID, color)
		if err != nil {
			return fmt.Errorf("postgres: failed to delete options: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrOptionNotFound
		}
		return nil
	})
}

// ProductExists — легкая проверка перед операциями над опциями.
func (s *Store) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT product_id FROM product WHERE product_id = $1`, productID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("postgres: failed to check product: %w", err)
	}
	return true, nil
}
