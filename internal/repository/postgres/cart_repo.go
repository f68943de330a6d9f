package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/shopcore/internal/domain"
)

// WithinTx реализует domain.CartStore: все мутации корзины и склада
// проходят через один транзакционный скоуп.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.CartTx) error) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return fn(&cartTx{tx: tx})
	})
}

// cartTx — транзакционные примитивы поверх pgx.Tx.
type cartTx struct {
	tx pgx.Tx
}

func (c *cartTx) Option(ctx context.Context, productID int64, color, size string) (*domain.ProductOption, error) {
	query := `
		SELECT option_id, product_id, color, size, stock
		FROM product_option
		WHERE product_id = $1 AND color = $2 AND size = $3`

	return scanOption(c.tx.QueryRow(ctx, query, productID, color, size))
}

func (c *cartTx) OptionByID(ctx context.Context, optionID int64) (*domain.ProductOption, error) {
	query := `
		SELECT option_id, product_id, color, size, stock
		FROM product_option
		WHERE option_id = $1`

	return scanOption(c.tx.QueryRow(ctx, query, optionID))
}

func scanOption(row pgx.Row) (*domain.ProductOption, error) {
	o := &domain.ProductOption{}
	err := row.Scan(&o.ID, &o.ProductID, &o.Color, &o.Size, &o.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Отсутствие опции решает вызывающий слой
		}
		return nil, fmt.Errorf("postgres: failed to fetch option: %w", err)
	}
	return o, nil
}

// UpsertItem перезаписывает количество существующей позиции (last write wins).
func (c *cartTx) UpsertItem(ctx context.Context, cartID string, optionID int64, amount int) error {
	query := `
		INSERT INTO cart_item (cart_id, product_option_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_option_id) DO UPDATE SET amount = EXCLUDED.amount`

	if _, err := c.tx.Exec(ctx, query, cartID, optionID, amount); err != nil {
		return fmt.Errorf("postgres: failed to upsert cart item: %w", err)
	}
	return nil
}

func (c *cartTx) Items(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	query := `SELECT product_option_id, amount FROM cart_item WHERE cart_id = $1`

	rows, err := c.tx.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.OptionID, &it.Amount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return items, nil
}

// DecrementStock списывает склад с перепроверкой остатка на момент коммита.
// Условие stock >= $2 не дает уйти в минус: ноль затронутых строк означает,
// что опция исчезла либо остатка уже не хватает.
func (c *cartTx) DecrementStock(ctx context.Context, optionID int64, amount int) (bool, error) {
	query := `
		UPDATE product_option
		SET stock = stock - $2
		WHERE option_id = $1 AND stock >= $2`

	ct, err := c.tx.Exec(ctx, query, optionID, amount)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to decrement stock: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (c *cartTx) DeleteCartItems(ctx context.Context, cartID string) error {
	if _, err := c.tx.Exec(ctx, `DELETE FROM cart_item WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("postgres: failed to delete cart items: %w", err)
	}
	return nil
}

func (c *cartTx) DeleteCart(ctx context.Context, cartID string) (bool, error) {
	ct, err := c.tx.Exec(ctx, `DELETE FROM cart WHERE cart_id = $1`, cartID)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to delete cart: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// --- Операции вне транзакционного скоупа ---

func (s *Store) CreateCart(ctx context.Context, cartID, userID string) error {
	query := `INSERT INTO cart (cart_id, user_id) VALUES ($1, $2)`

	if _, err := s.pool.Exec(ctx, query, cartID, userID); err != nil {
		return fmt.Errorf("postgres: failed to create cart: %w", err)
	}
	return nil
}

func (s *Store) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	query := `SELECT cart_id, user_id FROM cart WHERE cart_id = $1`

	cart := &domain.Cart{}
	err := s.pool.QueryRow(ctx, query, cartID).Scan(&cart.ID, &cart.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // nil для 404 в хендлере
		}
		return nil, fmt.Errorf("postgres: failed to fetch cart: %w", err)
	}
	return cart, nil
}

// CartView собирает корзину с содержимым одним проходом по JOIN-выборке.
func (s *Store) CartView(ctx context.Context, cartID string) (*domain.CartView, error) {
	query := `
		SELECT c.cart_id, c.user_id, p.product_id, po.color, po.size, ci.amount
		FROM cart c
		LEFT JOIN cart_item ci ON c.cart_id = ci.cart_id
		LEFT JOIN product_option po ON ci.product_option_id = po.option_id
		LEFT JOIN product p ON po.product_id = p.product_id
		WHERE c.cart_id = $1`

	rows, err := s.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query cart view: %w", err)
	}
	defer rows.Close()

	var view *domain.CartView
	byProduct := make(map[int64]*domain.CartProduct)
	order := make([]int64, 0)

	for rows.Next() {
		var (
			cID, uID    string
			productID   *int64
			color, size *string
			amount      *int
		)
		if err := rows.Scan(&cID, &uID, &productID, &color, &size, &amount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan cart row: %w", err)
		}

		if view == nil {
			view = &domain.CartView{CartID: cID, UserID: uID, Products: []domain.CartProduct{}}
		}
		// Пустая корзина дает одну строку с NULL-ами из LEFT JOIN
		if productID == nil {
			continue
		}

		p, ok := byProduct[*productID]
		if !ok {
			p = &domain.CartProduct{ProductID: *productID, Options: domain.OptionSet{}}
			byProduct[*productID] = p
			order = append(order, *productID)
		}
		if p.Options[*color] == nil {
			p.Options[*color] = map[string]int{}
		}
		p.Options[*color][*size] = *amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	if view == nil {
		return nil, nil // Корзина не найдена
	}
	for _, id := range order {
		view.Products = append(view.Products, *byProduct[id])
	}
	return view, nil
}
