package models

import "time"

// Product представляет товар каталога
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Price       float64   `json:"price"` // цена в условных единицах, DECIMAL(10,2) в БД
	Stock       int       `json:"stock"` // остаток на складе, не может уйти в минус
	UserID      *int64    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
