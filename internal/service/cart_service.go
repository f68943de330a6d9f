package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra"
	"go.uber.org/zap"
)

// CartService — механизм работы с корзиной и settlement-ом.
// Вся координация конкурентности делегирована транзакции хранилища:
// никаких mutex-ов и optimistic locking здесь нет. Изоляция между двумя
// одновременными settlement-ами — та, что дает уровень изоляции базы.
type CartService struct {
	store   domain.CartStore
	metrics *infra.Metrics
	logger  *zap.Logger
}

func NewCartService(store domain.CartStore, metrics *infra.Metrics, logger *zap.Logger) *CartService {
	return &CartService{
		store:   store,
		metrics: metrics,
		logger:  logger.Named("cart-service"),
	}
}

// Create заводит пустую корзину для пользователя.
func (s *CartService) Create(ctx context.Context, userID string) (*domain.CartView, error) {
	cartID := uuid.NewString()
	if err := s.store.CreateCart(ctx, cartID, userID); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	s.logger.Info("cart created",
		zap.String("cart_id", cartID),
		zap.String("user_id", userID))

	return &domain.CartView{CartID: cartID, UserID: userID, Products: []domain.CartProduct{}}, nil
}

// Find возвращает корзину без содержимого (для проверок владения).
func (s *CartService) Find(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	return cart, nil
}

// View возвращает корзину с содержимым, сгруппированным по товарам.
func (s *CartService) View(ctx context.Context, cartID string) (*domain.CartView, error) {
	view, err := s.store.CartView(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrCartNotFound
	}
	return view, nil
}

// AddItems добавляет позиции в корзину одной атомарной единицей.
// Для каждой пары цвет/размер: опция должна существовать, а запрошенное
// количество — не превышать текущий остаток. Резервирования нет — склад
// только проверяется; гонка между проверкой здесь и списанием в Settle
// закрывается повторной валидацией на settlement-е.
// Повторное добавление той же опции перезаписывает количество (last write wins).
func (s *CartService) AddItems(ctx context.Context, cartID string, productID int64, opts domain.OptionSet) error {
	return s.store.WithinTx(ctx, func(tx domain.CartTx) error {
		for color, sizes := range opts {
			for size, amount := range sizes {
				opt, err := tx.Option(ctx, productID, color, size)
				if err != nil {
					return err
				}
				if opt == nil {
					return domain.ErrOptionNotFound
				}
				if amount > opt.Stock {
					return &domain.InsufficientStockError{
						ProductID: productID,
						Color:     color,
						Size:      size,
						Requested: amount,
						Available: opt.Stock,
					}
				}

				if err := tx.UpsertItem(ctx, cartID, opt.ID, amount); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Settle превращает содержимое корзины в необратимые списания склада
// и удаляет корзину — все как одна единица: любой сбой откатывает
// каждый уже выполненный шаг, корзина и остатки остаются нетронутыми.
//
// Достаточность остатка перепроверяется в момент списания (между AddItems
// и Settle склад мог измениться), поэтому остаток не уходит в минус
// ни при каком исходе.
func (s *CartService) Settle(ctx context.Context, cartID string) error {
	err := s.store.WithinTx(ctx, func(tx domain.CartTx) error {
		items, err := tx.Items(ctx, cartID)
		if err != nil {
			return err
		}

		for _, it := range items {
			ok, err := tx.DecrementStock(ctx, it.OptionID, it.Amount)
			if err != nil {
				return err
			}
			if !ok {
				// Строка не изменена: выясняем для вызывающего, исчезла
				// опция или не хватило остатка.
				opt, err := tx.OptionByID(ctx, it.OptionID)
				if err != nil {
					return err
				}
				if opt == nil {
					return domain.ErrOptionNotFound
				}
				return &domain.InsufficientStockError{
					ProductID: opt.ProductID,
					Color:     opt.Color,
					Size:      opt.Size,
					Requested: it.Amount,
					Available: opt.Stock,
				}
			}
		}

		if err := tx.DeleteCartItems(ctx, cartID); err != nil {
			return err
		}
		found, err := tx.DeleteCart(ctx, cartID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCartNotFound
		}
		return nil
	})

	switch {
	case err == nil:
		s.metrics.SettlementsTotal.WithLabelValues("ok").Inc()
		s.logger.Info("cart settled", zap.String("cart_id", cartID))
	case isSettlementConflict(err):
		s.metrics.SettlementsTotal.WithLabelValues("conflict").Inc()
		s.logger.Warn("cart settlement rejected",
			zap.String("cart_id", cartID),
			zap.Error(err))
	default:
		s.metrics.SettlementsTotal.WithLabelValues("error").Inc()
		s.logger.Error("cart settlement failed",
			zap.String("cart_id", cartID),
			zap.Error(err))
	}
	return err
}

func isSettlementConflict(err error) bool {
	var stockErr *domain.InsufficientStockError
	return errors.Is(err, domain.ErrOptionNotFound) ||
		errors.Is(err, domain.ErrCartNotFound) ||
		errors.As(err, &stockErr)
}

// Delete удаляет корзину со всем содержимым, не трогая склад.
func (s *CartService) Delete(ctx context.Context, cartID string) error {
	return s.store.WithinTx(ctx, func(tx domain.CartTx) error {
		if err := tx.DeleteCartItems(ctx, cartID); err != nil {
			return err
		}
		found, err := tx.DeleteCart(ctx, cartID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCartNotFound
		}
		return nil
	})
}
