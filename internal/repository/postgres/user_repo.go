package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/shopcore/internal/domain"
)

func (s *Store) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	query := `SELECT user_id, name, email, role FROM users`
	var args []interface{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT user_id, name, email, role FROM users WHERE user_id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, userID))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT user_id, name, email, role FROM users WHERE email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// GetUserByCredentials сравнивает пароль на стороне базы, как это исторически
// делает система. Хранение учетных данных — зона ответственности внешнего
// контура; схему хеширования здесь не меняем.
func (s *Store) GetUserByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	query := `SELECT user_id, name, email, role FROM users WHERE email = $1 AND password = $2`
	return scanUser(s.pool.QueryRow(ctx, query, email, password))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, id, name, email, password, role string) (*domain.User, error) {
	query := `
		INSERT INTO users (user_id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id, name, email, role`

	return scanUser(s.pool.QueryRow(ctx, query, id, name, email, password, role))
}

// UpdateUser собирает SET динамически: обновляются только переданные поля.
func (s *Store) UpdateUser(ctx context.Context, userID string, upd domain.UserUpdate) (bool, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Email != nil {
		args = append(args, *upd.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if upd.Password != nil {
		args = append(args, *upd.Password)
		sets = append(sets, fmt.Sprintf("password = $%d", len(args)))
	}
	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE user_id = $%d",
		strings.Join(sets, ", "), len(args))

	ct, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update user: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres: failed to delete user: %w", err)
	}
	return nil
}
