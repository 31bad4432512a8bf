package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/eshop/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (int64, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	// LockProductsByIDsTx выбирает товары по списку id с блокировкой строк (FOR UPDATE),
	// чтобы параллельное оформление заказов не увело остаток в минус.
	LockProductsByIDsTx(ctx context.Context, tx *sql.Tx, ids []int64) ([]*models.Product, error)
	// DecrementStockTx уменьшает остаток товара в рамках транзакции заказа.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
}

// productRepository — конкретная реализация интерфейса ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, description, image_url, price, stock, user_id, created_at, updated_at
		FROM products
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.ImageURL,
			&product.Price, &product.Stock, &product.UserID, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, name, description, image_url, price, stock, user_id, created_at, updated_at
		FROM products
		WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&product.ID, &product.Name, &product.Description, &product.ImageURL,
		&product.Price, &product.Stock, &product.UserID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	var id int64
	query := `INSERT INTO products (name, description, image_url, price, stock, user_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.ImageURL, product.Price, product.Stock, product.UserID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

// UpdateProduct выполняет полную замену полей товара.
func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `UPDATE products
	          SET name = $1, description = $2, image_url = $3, price = $4, stock = $5, updated_at = NOW()
	          WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.ImageURL, product.Price, product.Stock, product.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) LockProductsByIDsTx(ctx context.Context, tx *sql.Tx, ids []int64) ([]*models.Product, error) {
	query := `
		SELECT id, name, description, image_url, price, stock, user_id, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.ImageURL,
			&product.Price, &product.Stock, &product.UserID, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2", quantity, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
