package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/eshop/internal/app"
	"github.com/linemk/eshop/internal/app/handlers"
	"github.com/linemk/eshop/internal/config"
	"github.com/linemk/eshop/internal/domain/models"
	"github.com/linemk/eshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/eshop/internal/lib/logger"
	"github.com/linemk/eshop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/eshop/internal/service"
	"github.com/linemk/eshop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo,
		time.Duration(application.Config.JWT.TokenTTL)*time.Minute, application.Config.Auth.DefaultRole)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, productRepo, orderRepo)

	// публичные эндпоинты: регистрация, вход и чтение каталога
	router.Post("/api/auth/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(application.Logger, catalogService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		// профиль текущего пользователя
		r.Get("/api/auth/me", handlers.MeHandler(application.Logger, authService))
		// оформление и просмотр заказов
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{id}", handlers.OrderItemsHandler(application.Logger, orderService))

		// мутации каталога; требование роли admin включается флагом конфигурации
		r.Group(func(r chi.Router) {
			if cfg.Auth.RequireAdminForProductMutation {
				r.Use(jwtmiddleware.RequireRole(models.RoleAdmin))
			}
			r.Post("/api/products", handlers.CreateProductHandler(application.Logger, catalogService))
			r.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
			r.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
