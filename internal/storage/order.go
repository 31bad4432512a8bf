package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/eshop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// Запись заголовка, позиций и списание остатков выполняются в одной транзакции,
// которую открывает сервисный слой.
type OrderStorage interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, totalAmount float64) (int64, error)
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int, price float64) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetAllOrders возвращает все заказы с именем оформившего пользователя (для админа).
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrderTx вставляет заголовок заказа и возвращает его идентификатор.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, totalAmount float64) (int64, error) {
	var id int64
	query := `INSERT INTO orders (user_id, total_amount, created_at)
	          VALUES ($1, $2, NOW()) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, userID, totalAmount).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

// CreateOrderItemTx вставляет позицию заказа с зафиксированной ценой.
func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int, price float64) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity, price, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`
	_, err := tx.ExecContext(ctx, query, orderID, productID, quantity, price)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, user_id, total_amount, created_at FROM orders WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.username, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Username, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderItems возвращает позиции заказа с JOIN, чтобы получить имя и картинку товара.
func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, p.name, p.image_url, i.quantity, i.price, i.created_at
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ImageURL, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
