package models

import "time"

// Роли пользователей. Роль задаётся при регистрации и попадает в claims токена.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User представляет пользователя
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"` // хэш пароля никогда не отдаём клиенту
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
