package models

import "time"

// Order представляет заказ пользователя
type Order struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"` // заполняется через JOIN с таблицей users в админской выборке
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderItem представляет позицию заказа.
// Price — снапшот цены на момент оформления, последующие изменения
// каталога на него не влияют.
type OrderItem struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"` // через JOIN с таблицей products
	ImageURL    string    `json:"image_url,omitempty"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}
