package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/eshop/internal/domain/models"
	"github.com/linemk/eshop/internal/service"
	"github.com/linemk/eshop/internal/storage"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ — username
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, storage.ErrUserExists
		}
	}
	user.ID = int64(len(f.users) + 1)
	user.CreatedAt = time.Now()
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestAuthService_Register_Success(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)
	ctx := context.Background()

	userID, err := authSvc.Register(ctx, "alice", "alice@example.com", "password123")
	assert.NoError(t, err, "Register should succeed for a new user")
	assert.Equal(t, int64(1), userID)

	user, err := fakeRepo.GetUserByUsername(ctx, "alice")
	assert.NoError(t, err, "User should exist after registration")
	assert.Equal(t, models.RoleClient, user.Role, "New user should get the default role")
	// Проверяем, что пароль хэширован и хэш совпадает с исходным паролем
	assert.NotEqual(t, "password123", string(user.PassHash), "Password should be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PassHash, []byte("password123")))
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)
	ctx := context.Background()

	_, err := authSvc.Register(ctx, "alice", "alice@example.com", "password123")
	assert.NoError(t, err)

	// Повторная регистрация с тем же username
	_, err = authSvc.Register(ctx, "alice", "other@example.com", "password123")
	assert.Error(t, err, "Second registration with same username should fail")
	assert.True(t, errors.Is(err, storage.ErrUserExists))

	// Повторная регистрация с тем же email
	_, err = authSvc.Register(ctx, "bob", "alice@example.com", "password123")
	assert.Error(t, err, "Second registration with same email should fail")
	assert.True(t, errors.Is(err, storage.ErrUserExists))
}

func TestAuthService_Register_EmptyFields(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)

	_, err := authSvc.Register(context.Background(), "", "alice@example.com", "password123")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestAuthService_Login_Success_TokenClaims(t *testing.T) {
	secret := "testsecret"
	os.Setenv("JWT_SECRET", secret)
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		PassHash: hashed,
		Role:     models.RoleAdmin,
	})
	assert.NoError(t, err)

	token, user, err := authSvc.Login(ctx, "alice", "password123")
	assert.NoError(t, err, "Login should succeed with correct password")
	assert.NotEmpty(t, token, "Token should be returned")
	assert.Equal(t, "alice", user.Username)

	// Claims токена должны совпадать с данными пользователя.
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, fmt.Sprintf("%d", user.ID), claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		PassHash: hashed,
		Role:     models.RoleClient,
	})
	assert.NoError(t, err)

	token, _, err := authSvc.Login(ctx, "alice", "wrongpassword")
	assert.Error(t, err, "Login should fail with incorrect password")
	assert.Empty(t, token, "Token should be empty on failed login")
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestAuthService_Login_UnknownUser_SameError(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)

	// Несуществующий пользователь даёт ту же ошибку, что и неверный пароль,
	// чтобы по ответу нельзя было перебирать учетные записи.
	token, _, err := authSvc.Login(context.Background(), "ghost", "password123")
	assert.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestAuthService_Profile(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(newTestLogger(), fakeRepo, 24*time.Hour, models.RoleClient)
	ctx := context.Background()

	created, err := fakeRepo.CreateUser(ctx, &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		PassHash: []byte("hashed"),
		Role:     models.RoleClient,
	})
	assert.NoError(t, err)

	user, err := authSvc.Profile(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = authSvc.Profile(ctx, 999)
	assert.Error(t, err, "Expected error for non-existing user")
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
}
