package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/shopcore/internal/domain"
	"go.uber.org/zap"
)

// CatalogRepository описывает требования к хранилищу каталога
type CatalogRepository interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.ProductRow, error)
	GetProductRows(ctx context.Context, productID int64) ([]domain.ProductRow, error)
	CreateProduct(ctx context.Context, price float64, categories []string) (int64, error)
	UpdateProduct(ctx context.Context, productID int64, upd domain.ProductUpdate) error
	DeleteProduct(ctx context.Context, productID int64) error
	ProductExists(ctx context.Context, productID int64) (bool, error)
	CreateOptions(ctx context.Context, productID int64, opts domain.OptionSet) error
	DeleteOption(ctx context.Context, productID int64, color, size string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error)
	GetCategoryByDescription(ctx context.Context, desc string) (*domain.Category, error)
	CreateCategory(ctx context.Context, desc string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID int64) error
}

type CatalogService struct {
	repo   CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger.Named("catalog-service")}
}

// GroupProducts сворачивает плоские JOIN-строки во внешнее представление:
// один товар — одна запись с набором категорий и картой опций.
func GroupProducts(rows []domain.ProductRow) []domain.ProductView {
	byID := make(map[int64]*domain.ProductView)
	order := make([]int64, 0)

	for _, r := range rows {
		v, ok := byID[r.ProductID]
		if !ok {
			v = &domain.ProductView{
				ProductID:  r.ProductID,
				Price:      r.Price,
				Categories: []string{},
				Options:    domain.OptionSet{},
			}
			byID[r.ProductID] = v
			order = append(order, r.ProductID)
		}

		if r.Category != "" && !containsString(v.Categories, r.Category) {
			v.Categories = append(v.Categories, r.Category)
		}
		// Товар без опций дает строку с пустым цветом (LEFT JOIN)
		if r.Color == "" {
			continue
		}
		if v.Options[r.Color] == nil {
			v.Options[r.Color] = map[string]int{}
		}
		v.Options[r.Color][r.Size] = r.Stock
	}

	out := make([]domain.ProductView, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.ProductView, error) {
	rows, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return GroupProducts(rows), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*domain.ProductView, error) {
	rows, err := s.repo.GetProductRows(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrProductNotFound
	}
	views := GroupProducts(rows)
	return &views[0], nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, price float64, categories []string) (*domain.ProductView, error) {
	productID, err := s.repo.CreateProduct(ctx, price, categories)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created",
		zap.Int64("product_id", productID),
		zap.Float64("price", price))

	return s.GetProduct(ctx, productID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID int64, upd domain.ProductUpdate) error {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, productID, upd)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", productID))
	return nil
}

// AddOptions пополняет склад: существующая пара цвет/размер суммирует
// остаток, новая — создается. Возвращает обновленный товар.
func (s *CatalogService) AddOptions(ctx context.Context, productID int64, opts domain.OptionSet) (*domain.ProductView, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.CreateOptions(ctx, productID, opts); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func (s *CatalogService) DeleteOption(ctx context.Context, productID int64, color, size string) error {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	return s.repo.DeleteOption(ctx, productID, color, size)
}

func (s *CatalogService) ensureProduct(ctx context.Context, productID int64) error {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return nil
}

// --- Категории ---

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	c, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, desc string) (*domain.Category, error) {
	existing, err := s.repo.GetCategoryByDescription(ctx, desc)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCategoryExists
	}
	return s.repo.CreateCategory(ctx, desc)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, categoryID)
}
