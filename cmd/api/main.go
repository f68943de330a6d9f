package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/shopcore/internal/handler"
	"github.com/xela07ax/shopcore/internal/infra"
	"github.com/xela07ax/shopcore/internal/infra/auth"
	"github.com/xela07ax/shopcore/internal/repository/postgres"
	"github.com/xela07ax/shopcore/internal/server"
	"github.com/xela07ax/shopcore/internal/service"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инициализация ресурсов
	store, err := postgres.NewStore(appCtx, cfg.Database)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer store.Close()

	// База может подниматься дольше приложения (docker-compose),
	// поэтому пингуем с ретраями
	r := retry.New(
		retry.Context(appCtx),
		retry.Attempts(5),
		retry.Delay(time.Second),
	)
	if err := r.Do(func() error {
		pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
		defer pingCancel()
		return store.Ping(pingCtx)
	}); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Метрики
	reg := prometheus.NewRegistry()
	metrics := infra.NewMetrics(reg)

	// 3. Инициализация слоев (Dependency Injection)
	codec := auth.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	throttle := service.NewLoginThrottle(rdb, cfg.Limits.LoginAttempts, cfg.Limits.LoginWindow, logger)

	userService := service.NewUserService(store, logger)
	authService := service.NewAuthService(store, codec, throttle, metrics, logger)
	catalogService := service.NewCatalogService(store, logger)
	cartService := service.NewCartService(store, metrics, logger)

	userHandler := handler.NewUserHandler(userService, authService)
	productHandler := handler.NewProductHandler(catalogService)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService, userService)

	api := server.NewServer(cfg, logger, codec, metrics,
		userHandler, productHandler, categoryHandler, cartHandler)

	// Экспортируем метрики для Prometheus на отдельном порту
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics listener", zap.Error(err))
		}
	}()

	// 4. HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 5. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("shop API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("shop API stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("shop API exited properly")
}
