package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra"
	"go.uber.org/zap"
)

// memStore — in-memory реализация domain.CartStore с честной семантикой
// транзакции: fn работает с копией состояния, commit подменяет оригинал,
// любая ошибка выбрасывает копию целиком.
type memStore struct {
	state memState
}

type memState struct {
	options map[int64]domain.ProductOption
	carts   map[string]string            // cartID -> userID
	items   map[string][]domain.CartItem // порядок добавления сохраняется
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		options: map[int64]domain.ProductOption{},
		carts:   map[string]string{},
		items:   map[string][]domain.CartItem{},
	}}
}

func (m memState) clone() memState {
	out := memState{
		options: make(map[int64]domain.ProductOption, len(m.options)),
		carts:   make(map[string]string, len(m.carts)),
		items:   make(map[string][]domain.CartItem, len(m.items)),
	}
	for k, v := range m.options {
		out.options[k] = v
	}
	for k, v := range m.carts {
		out.carts[k] = v
	}
	for k, v := range m.items {
		out.items[k] = append([]domain.CartItem(nil), v...)
	}
	return out
}

func (m *memStore) WithinTx(_ context.Context, fn func(tx domain.CartTx) error) error {
	work := m.state.clone()
	if err := fn(&memTx{state: &work}); err != nil {
		return err // копия отбрасывается, состояние не тронуто
	}
	m.state = work
	return nil
}

func (m *memStore) CreateCart(_ context.Context, cartID, userID string) error {
	m.state.carts[cartID] = userID
	return nil
}

func (m *memStore) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	userID, ok := m.state.carts[cartID]
	if !ok {
		return nil, nil
	}
	return &domain.Cart{ID: cartID, UserID: userID}, nil
}

func (m *memStore) CartView(_ context.Context, cartID string) (*domain.CartView, error) {
	userID, ok := m.state.carts[cartID]
	if !ok {
		return nil, nil
	}
	view := &domain.CartView{CartID: cartID, UserID: userID, Products: []domain.CartProduct{}}
	for _, it := range m.state.items[cartID] {
		opt := m.state.options[it.OptionID]
		view.Products = append(view.Products, domain.CartProduct{
			ProductID: opt.ProductID,
			Options:   domain.OptionSet{opt.Color: {opt.Size: it.Amount}},
		})
	}
	return view, nil
}

type memTx struct {
	state *memState
}

func (t *memTx) Option(_ context.Context, productID int64, color, size string) (*domain.ProductOption, error) {
	for _, o := range t.state.options {
		if o.ProductID == productID && o.Color == color && o.Size == size {
			out := o
			return &out, nil
		}
	}
	return nil, nil
}

func (t *memTx) OptionByID(_ context.Context, optionID int64) (*domain.ProductOption, error) {
	o, ok := t.state.options[optionID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (t *memTx) UpsertItem(_ context.Context, cartID string, optionID int64, amount int) error {
	for i, it := range t.state.items[cartID] {
		if it.OptionID == optionID {
			t.state.items[cartID][i].Amount = amount
			return nil
		}
	}
	t.state.items[cartID] = append(t.state.items[cartID], domain.CartItem{OptionID: optionID, Amount: amount})
	return nil
}

func (t *memTx) Items(_ context.Context, cartID string) ([]domain.CartItem, error) {
	return append([]domain.CartItem(nil), t.state.items[cartID]...), nil
}

func (t *memTx) DecrementStock(_ context.Context, optionID int64, amount int) (bool, error) {
	o, ok := t.state.options[optionID]
	if !ok || o.Stock < amount {
		return false, nil
	}
	o.Stock -= amount
	t.state.options[optionID] = o
	return true, nil
}

func (t *memTx) DeleteCartItems(_ context.Context, cartID string) error {
	delete(t.state.items, cartID)
	return nil
}

func (t *memTx) DeleteCart(_ context.Context, cartID string) (bool, error) {
	if _, ok := t.state.carts[cartID]; !ok {
		return false, nil
	}
	delete(t.state.carts, cartID)
	return true, nil
}

func newCartService(store *memStore) *CartService {
	return NewCartService(store, infra.NewMetrics(nil), zap.NewNop())
}

func seedCart(store *memStore, cartID string) {
	store.state.carts[cartID] = "user-1"
}

func seedOption(store *memStore, id, productID int64, color, size string, stock int) {
	store.state.options[id] = domain.ProductOption{
		ID: id, ProductID: productID, Color: color, Size: size, Stock: stock,
	}
}

func TestAddItemsRejectsInsufficientStock(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 5)
	svc := newCartService(store)

	err := svc.AddItems(context.Background(), "c1", 100, domain.OptionSet{"red": {"M": 6}})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != 100 || stockErr.Color != "red" || stockErr.Size != "M" || stockErr.Available != 5 {
		t.Fatalf("error identity mismatch: %+v", stockErr)
	}
	if len(store.state.items["c1"]) != 0 {
		t.Fatal("cart must stay unchanged after rejected add")
	}
}

func TestAddItemsUnknownOption(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	svc := newCartService(store)

	err := svc.AddItems(context.Background(), "c1", 100, domain.OptionSet{"red": {"M": 1}})
	if !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
}

func TestAddItemsOverwritesAmount(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 10)
	svc := newCartService(store)

	ctx := context.Background()
	if err := svc.AddItems(ctx, "c1", 100, domain.OptionSet{"red": {"M": 2}}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddItems(ctx, "c1", 100, domain.OptionSet{"red": {"M": 3}}); err != nil {
		t.Fatalf("second add: %v", err)
	}

	items := store.state.items["c1"]
	if len(items) != 1 {
		t.Fatalf("expected exactly one line item, got %d", len(items))
	}
	// Перезапись, не суммирование: 3, а не 5
	if items[0].Amount != 3 {
		t.Fatalf("amount = %d, want 3", items[0].Amount)
	}
}

func TestAddItemsAllOrNothing(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 10)
	seedOption(store, 2, 100, "red", "L", 1)
	svc := newCartService(store)

	err := svc.AddItems(context.Background(), "c1", 100,
		domain.OptionSet{"red": {"M": 2, "L": 5}})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(store.state.items["c1"]) != 0 {
		t.Fatal("no line items must survive a partially failed add")
	}
}

func TestSettleSuccess(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 10)
	store.state.items["c1"] = []domain.CartItem{{OptionID: 1, Amount: 4}}
	svc := newCartService(store)

	if err := svc.Settle(context.Background(), "c1"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if got := store.state.options[1].Stock; got != 6 {
		t.Fatalf("stock = %d, want 6", got)
	}
	if _, ok := store.state.carts["c1"]; ok {
		t.Fatal("cart must be gone after settlement")
	}
	if len(store.state.items["c1"]) != 0 {
		t.Fatal("line items must be gone after settlement")
	}

	// Повторный settle той же корзины невозможен
	if err := svc.Settle(context.Background(), "c1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("second settle: expected ErrCartNotFound, got %v", err)
	}
}

func TestSettleRollsBackOnVanishedOption(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 10)
	// Вторая позиция ссылается на опцию, которой уже нет
	store.state.items["c1"] = []domain.CartItem{
		{OptionID: 1, Amount: 4},
		{OptionID: 2, Amount: 1},
	}
	svc := newCartService(store)

	err := svc.Settle(context.Background(), "c1")
	if !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}

	// Списание первой опции откатано, корзина цела вместе с обеими позициями
	if got := store.state.options[1].Stock; got != 10 {
		t.Fatalf("stock = %d, want 10 (rolled back)", got)
	}
	if _, ok := store.state.carts["c1"]; !ok {
		t.Fatal("cart must survive failed settlement")
	}
	if len(store.state.items["c1"]) != 2 {
		t.Fatalf("expected both line items intact, got %d", len(store.state.items["c1"]))
	}
}

func TestSettleRevalidatesStock(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 5)
	svc := newCartService(store)

	ctx := context.Background()
	if err := svc.AddItems(ctx, "c1", 100, domain.OptionSet{"red": {"M": 4}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Между добавлением и settlement-ом склад просел ниже запрошенного
	seedOption(store, 1, 100, "red", "M", 3)

	err := svc.Settle(ctx, "c1")
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 3 || stockErr.Requested != 4 {
		t.Fatalf("error detail mismatch: %+v", stockErr)
	}
	if got := store.state.options[1].Stock; got != 3 {
		t.Fatalf("stock = %d, want 3 (untouched)", got)
	}
	if _, ok := store.state.carts["c1"]; !ok {
		t.Fatal("cart must survive failed settlement")
	}
}

func TestDeleteCart(t *testing.T) {
	store := newMemStore()
	seedCart(store, "c1")
	seedOption(store, 1, 100, "red", "M", 5)
	store.state.items["c1"] = []domain.CartItem{{OptionID: 1, Amount: 2}}
	svc := newCartService(store)

	if err := svc.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Корзина и позиции удалены, склад не тронут
	if _, ok := store.state.carts["c1"]; ok {
		t.Fatal("cart must be deleted")
	}
	if got := store.state.options[1].Stock; got != 5 {
		t.Fatalf("stock = %d, want 5 (inventory untouched)", got)
	}

	if err := svc.Delete(context.Background(), "c1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestViewMissingCart(t *testing.T) {
	svc := newCartService(newMemStore())
	if _, err := svc.View(context.Background(), "nope"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}
