package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/eshop/internal/domain/models"
	security "github.com/linemk/eshop/internal/jwt-new"
	"github.com/linemk/eshop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	tokenTTL    time.Duration
	defaultRole string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, defaultRole string) *AuthService {
	return &AuthService{
		log:         log,
		userRepo:    userRepo,
		tokenTTL:    tokenTTL,
		defaultRole: defaultRole,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

// Register создаёт нового пользователя с ролью по умолчанию.
// Пароль хэшируется через bcrypt (соль добавляется автоматически),
// уникальность username/email контролирует БД.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (int64, error) {
	const op = "auth.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("registering user")

	if username == "" || email == "" || password == "" {
		return 0, fmt.Errorf("%s: all fields are required: %w", op, ErrValidation)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	newUser := &models.User{
		Username: username,
		Email:    email,
		PassHash: passHash,
		Role:     a.defaultRole,
	}
	user, err := a.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user.ID, nil
}

// Login осуществляет аутентификацию пользователя.
// Несуществующий username и неверный пароль дают одну и ту же ошибку,
// чтобы по ответу нельзя было перебирать пользователей.
// После успешной проверки генерируется JWT-токен с id, username и ролью.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	// Генерация JWT-токена. Функция security.NewToken внутри сама загружает секрет из переменной окружения JWT_SECRET.
	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, user, nil
}

// Profile возвращает публичные данные пользователя для GET /api/auth/me.
func (a *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "auth.Profile"

	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		a.log.Error("failed to get user by id", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
