package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/eshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/eshop/internal/service"
	"github.com/linemk/eshop/internal/storage"
)

// RegisterRequest представляет структуру запроса на регистрацию с тегами валидации
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterResponse представляет ответ при успешной регистрации
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginRequest представляет структуру запроса на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse представляет структуру ответа с JWT-токеном
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

var validate = validator.New()

// RegisterHandler – HTTP-обработчик для POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		// Валидация структуры запроса с использованием validator
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "validation error")
			return
		}

		userID, err := authService.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUserExists):
				writeError(w, http.StatusBadRequest, "username or email already taken")
			case errors.Is(err, service.ErrValidation):
				writeError(w, http.StatusBadRequest, "validation error")
			default:
				logger.Error("registration failed", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		resp := RegisterResponse{Message: "user registered successfully", UserID: userID}
		if err := writeJSON(w, http.StatusCreated, resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// LoginHandler – HTTP-обработчик для POST /api/auth/login
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "validation error")
			return
		}

		// Вызов бизнес-логики для аутентификации
		token, user, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid username or password")
				return
			}
			logger.Error("login failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		resp := LoginResponse{
			Token:    token,
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		}
		if err := writeJSON(w, http.StatusOK, resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// MeHandler обрабатывает запрос GET /api/auth/me.
// Идентификатор пользователя берется из claims, установленных JWT-middleware.
func MeHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MeHandler"
		logger := log.With(slog.String("op", op))

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := authService.Profile(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			logger.Error("failed to get profile", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := writeJSON(w, http.StatusOK, user); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
