package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/eshop/internal/domain/models"
	"github.com/linemk/eshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/eshop/internal/service"
	"github.com/linemk/eshop/internal/storage"
)

// OrderItemRequest — одна запрошенная позиция заказа.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest представляет входной JSON для оформления заказа.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderResponse представляет ответ при успешном оформлении.
type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

// CreateOrderHandler обрабатывает запрос POST /api/orders.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
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

		// Извлекаем claims из контекста (установленные JWT middleware)
		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items := make([]service.OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.OrderLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		// Вызываем бизнес-логику оформления заказа
		orderID, err := orderService.PlaceOrder(r.Context(), claims.UserID, items)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrProductNotFound):
				writeError(w, http.StatusNotFound, "product not found")
			case errors.Is(err, service.ErrInsufficientStock):
				writeError(w, http.StatusBadRequest, "insufficient stock")
			case errors.Is(err, service.ErrValidation):
				writeError(w, http.StatusBadRequest, "validation error")
			default:
				logger.Error("failed to place order", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		resp := CreateOrderResponse{Message: "order placed successfully", OrderID: orderID}
		if err := writeJSON(w, http.StatusCreated, resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/orders.
// Админ видит все заказы, остальные — только свои.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderService.ListOrders(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		if err := writeJSON(w, http.StatusOK, orders); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// OrderItemsHandler обрабатывает запрос GET /api/orders/{id}.
func OrderItemsHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderItemsHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid order id")
			return
		}

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := orderService.GetOrderItems(r.Context(), claims.UserID, claims.Role, orderID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrForbidden):
				writeError(w, http.StatusForbidden, "access denied")
			default:
				logger.Error("failed to get order items", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		if items == nil {
			items = []*models.OrderItem{}
		}

		if err := writeJSON(w, http.StatusOK, items); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
