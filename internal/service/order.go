package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/eshop/internal/domain/models"
	"github.com/linemk/eshop/internal/storage"
)

// OrderLine — запрошенная позиция заказа.
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// OrderService определяет интерфейс оформления и просмотра заказов.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, items []OrderLine) (int64, error)
	ListOrders(ctx context.Context, userID int64, role string) ([]*models.Order, error)
	GetOrderItems(ctx context.Context, userID int64, role string, orderID int64) ([]*models.OrderItem, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// PlaceOrder оформляет заказ: проверяет остатки, фиксирует цены, пишет заголовок
// и позиции, списывает остатки. Вся последовательность выполняется в одной
// транзакции с блокировкой строк товаров, чтобы параллельные заказы не могли
// продать больше, чем есть на складе. Если что-то идет не так, транзакция откатывается.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, items []OrderLine) (int64, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int("items", len(items)))
	logger.Info("starting order transaction")

	if len(items) == 0 {
		return 0, fmt.Errorf("%s: order must contain at least one item: %w", op, ErrValidation)
	}
	for _, line := range items {
		if line.Quantity <= 0 {
			return 0, fmt.Errorf("%s: quantity must be positive: %w", op, ErrValidation)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Забираем все товары заказа одним запросом с блокировкой строк
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, line := range items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.LockProductsByIDsTx(ctx, tx, ids)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock products", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to lock products: %w", op, err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Проверяем позиции в порядке запроса по снапшоту остатков;
	// остаток вычитается по ходу, чтобы повтор товара в заказе не прошел проверку дважды
	var total float64
	for _, line := range items {
		product, ok := byID[line.ProductID]
		if !ok {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("product not found", slog.Int64("productID", line.ProductID))
			return 0, fmt.Errorf("%s: product %d: %w", op, line.ProductID, storage.ErrProductNotFound)
		}
		if product.Stock < line.Quantity {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("insufficient stock",
				slog.Int64("productID", product.ID),
				slog.Int("stock", product.Stock),
				slog.Int("requested", line.Quantity))
			return 0, fmt.Errorf("%s: product %q: %w", op, product.Name, ErrInsufficientStock)
		}
		product.Stock -= line.Quantity
		total += product.Price * float64(line.Quantity)
	}

	// Заголовок заказа с посчитанной суммой
	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, userID, total)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	// Позиции заказа с зафиксированной ценой и списание остатков
	for _, line := range items {
		product := byID[line.ProductID]
		if err := s.orderRepo.CreateOrderItemTx(ctx, tx, orderID, product.ID, line.Quantity, product.Price); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
		if err := s.productRepo.DecrementStockTx(ctx, tx, product.ID, line.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed successfully", slog.Int64("orderID", orderID))
	return orderID, nil
}

// ListOrders возвращает все заказы для админа и только свои — для остальных.
func (s *orderService) ListOrders(ctx context.Context, userID int64, role string) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("role", role))

	var (
		orders []*models.Order
		err    error
	)
	if role == models.RoleAdmin {
		orders, err = s.orderRepo.GetAllOrders(ctx)
	} else {
		orders, err = s.orderRepo.GetOrdersByUserID(ctx, userID)
	}
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return orders, nil
}

// GetOrderItems возвращает позиции заказа. Смотреть чужой заказ может только админ.
func (s *orderService) GetOrderItems(ctx context.Context, userID int64, role string, orderID int64) ([]*models.OrderItem, error) {
	const op = "service.OrderService.GetOrderItems"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if order.UserID != userID && role != models.RoleAdmin {
		logger.Warn("access to foreign order denied")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return items, nil
}
