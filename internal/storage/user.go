package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/linemk/eshop/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already taken")
)

type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// CreateUser вставляет нового пользователя. Уникальность username/email
// обеспечивается констрейнтами БД, нарушение транслируется в ErrUserExists.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, email, pass_hash, role) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Username, user.Email, user.PassHash, user.Role,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return nil, ErrUserExists
			}
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

// получение уже существующего пользователя
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, username, email, pass_hash, role, created_at FROM users WHERE username = $1", username)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PassHash, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, username, email, pass_hash, role, created_at FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PassHash, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
