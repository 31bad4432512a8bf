package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/eshop/internal/domain/models"
	"github.com/linemk/eshop/internal/storage"
)

// CatalogService определяет интерфейс для работы с каталогом товаров.
type CatalogService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, userID int64, product *models.Product) (int64, error)
	Update(ctx context.Context, id int64, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// catalogService — конкретная реализация CatalogService.
type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

func (s *catalogService) List(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.List"

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.Get"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		s.log.Warn("failed to get product", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// Create сохраняет новый товар, привязывая его к создавшему пользователю.
func (s *catalogService) Create(ctx context.Context, userID int64, product *models.Product) (int64, error) {
	const op = "service.CatalogService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if product.Price < 0 || product.Stock < 0 {
		return 0, fmt.Errorf("%s: price and stock must be non-negative: %w", op, ErrValidation)
	}

	product.UserID = &userID
	id, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", id))
	return id, nil
}

// Update выполняет полную замену полей товара, все поля обязательны.
func (s *catalogService) Update(ctx context.Context, id int64, product *models.Product) error {
	const op = "service.CatalogService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if product.Price < 0 || product.Stock < 0 {
		return fmt.Errorf("%s: price and stock must be non-negative: %w", op, ErrValidation)
	}

	product.ID = id
	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Warn("failed to update product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product updated")
	return nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	const op = "service.CatalogService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Warn("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product deleted")
	return nil
}
