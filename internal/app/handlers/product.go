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

// CreateProductRequest — входной JSON для создания товара.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest — входной JSON для обновления товара.
// Обновление — это полная замена, поэтому все поля обязательны:
// указатели позволяют отличить пропущенное поле от нулевого значения.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	ImageURL    *string  `json:"image_url" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
}

// CreateProductResponse представляет ответ при успешном создании товара
type CreateProductResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"productId"`
}

// MessageResponse — ответ мутирующих операций без полезной нагрузки.
type MessageResponse struct {
	Message string `json:"message"`
}

// productIDFromURL извлекает и парсит параметр {id} из URL.
func productIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListProductsHandler обрабатывает запрос GET /api/products (публичный).
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.List(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if products == nil {
			products = []*models.Product{}
		}

		if err := writeJSON(w, http.StatusOK, products); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// GetProductHandler обрабатывает запрос GET /api/products/{id} (публичный).
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := productIDFromURL(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		product, err := catalog.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := writeJSON(w, http.StatusOK, product); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// CreateProductHandler обрабатывает запрос POST /api/products.
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req CreateProductRequest
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

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		product := &models.Product{
			Name:        req.Name,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Price:       req.Price,
			Stock:       req.Stock,
		}
		id, err := catalog.Create(r.Context(), claims.UserID, product)
		if err != nil {
			if errors.Is(err, service.ErrValidation) {
				writeError(w, http.StatusBadRequest, "validation error")
				return
			}
			logger.Error("failed to create product", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		resp := CreateProductResponse{Message: "product created successfully", ProductID: id}
		if err := writeJSON(w, http.StatusCreated, resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// UpdateProductHandler обрабатывает запрос PUT /api/products/{id}.
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := productIDFromURL(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		var req UpdateProductRequest
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

		product := &models.Product{
			Name:        *req.Name,
			Description: *req.Description,
			ImageURL:    *req.ImageURL,
			Price:       *req.Price,
			Stock:       *req.Stock,
		}
		if err := catalog.Update(r.Context(), id, product); err != nil {
			switch {
			case errors.Is(err, storage.ErrProductNotFound):
				writeError(w, http.StatusNotFound, "product not found")
			case errors.Is(err, service.ErrValidation):
				writeError(w, http.StatusBadRequest, "validation error")
			default:
				logger.Error("failed to update product", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "product updated successfully"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /api/products/{id}.
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := productIDFromURL(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := catalog.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to delete product", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := writeJSON(w, http.StatusOK, MessageResponse{Message: "product deleted successfully"}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
