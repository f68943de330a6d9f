package domain

import "context"

// CartTx — примитивы хранилища, доступные внутри одной атомарной единицы.
// Механизм settlement оркестрирует их, не зная, что за ними стоит Postgres:
// в тестах подставляется in-memory реализация со snapshot/rollback.
type CartTx interface {
	// Option ищет опцию по товарной идентичности (товар, цвет, размер).
	// Отсутствие — это (nil, nil), а не ошибка.
	Option(ctx context.Context, productID int64, color, size string) (*ProductOption, error)

	// OptionByID нужен settlement-у для диагностики: позиция корзины
	// ссылается на опцию по surrogate id.
	OptionByID(ctx context.Context, optionID int64) (*ProductOption, error)

	// UpsertItem пишет позицию корзины с перезаписью количества
	// (last write wins, не суммирование).
	UpsertItem(ctx context.Context, cartID string, optionID int64, amount int) error

	Items(ctx context.Context, cartID string) ([]CartItem, error)

	// DecrementStock списывает склад. false — строка не изменена:
	// опция исчезла либо остатка не хватает. Ниже нуля не уходит.
	DecrementStock(ctx context.Context, optionID int64, amount int) (bool, error)

	DeleteCartItems(ctx context.Context, cartID string) error

	// DeleteCart возвращает false, если корзины уже нет.
	DeleteCart(ctx context.Context, cartID string) (bool, error)
}

// CartStore — ручка хранилища корзин, внедряется в сервис при сборке.
type CartStore interface {
	// WithinTx исполняет fn внутри одной транзакции: commit при nil,
	// откат всех шагов при любой ошибке. Ровно один исход на каждом
	// пути выхода, включая панику внутри fn.
	WithinTx(ctx context.Context, fn func(tx CartTx) error) error

	CreateCart(ctx context.Context, cartID, userID string) error
	GetCart(ctx context.Context, cartID string) (*Cart, error)
	CartView(ctx context.Context, cartID string) (*CartView, error)
}
