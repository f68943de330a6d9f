package domain

import (
	"errors"
	"fmt"
)

// Ошибки токена. Снаружи обе схлопываются в 401, но внутри различаем
// для диагностики: подмена подписи и истекший срок — разные события.
var (
	ErrInvalidToken = errors.New("token is not valid")
	ErrExpiredToken = errors.New("token has expired")
)

// Ошибки коммерческого домена.
var (
	ErrOptionNotFound   = errors.New("product option not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmailTaken       = errors.New("email already exists")
	ErrCategoryExists   = errors.New("category already exists")

	// ErrInvalidCredentials намеренно не уточняет, что именно неверно
	// (email или пароль) — защита от перебора.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrTransactionFailure — сбой атомарной единицы на уровне хранилища.
	// Все шаги, выполненные внутри нее, к этому моменту уже откатаны.
	ErrTransactionFailure = errors.New("transaction failure")

	// ErrTooManyAttempts возвращается троттлером логина.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// InsufficientStockError несет идентичность опции и доступный остаток,
// чтобы вызывающий слой мог назвать клиенту конкретную позицию.
type InsufficientStockError struct {
	ProductID int64
	Color     string
	Size      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock of product %d in color %s size %s: requested %d, available %d",
		e.ProductID, e.Color, e.Size, e.Requested, e.Available)
}
