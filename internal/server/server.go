package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/shopcore/internal/handler"
	"github.com/xela07ax/shopcore/internal/infra"
	"github.com/xela07ax/shopcore/internal/infra/auth"
)

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Интерфейс для проверки токенов (HS256)
	tokenValidator auth.TokenValidator

	metrics *infra.Metrics

	// Обработчики бизнес-доменов
	userHandler     *handler.UserHandler     // /api/v1/users
	productHandler  *handler.ProductHandler  // /api/v1/products
	categoryHandler *handler.CategoryHandler // /api/v1/categories
	cartHandler     *handler.CartHandler     // /api/v1/carts
}

// NewServer инициализирует HTTP-сервер магазина со всеми зависимостями
func NewServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	metrics *infra.Metrics,
	userH *handler.UserHandler,
	productH *handler.ProductHandler,
	categoryH *handler.CategoryHandler,
	cartH *handler.CartHandler,
) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		logger:          logger.Named("shop-api"),
		cfg:             cfg,
		tokenValidator:  validator,
		metrics:         metrics,
		userHandler:     userH,
		productHandler:  productH,
		categoryHandler: categoryH,
		cartHandler:     cartH,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rateLimitMiddleware(s.cfg.Limits, s.metrics))
	r.Use(metricsMiddleware(s.metrics))

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Регистрация и логин должны быть доступны без токена
		r.Post("/api/v1/users/register", s.userHandler.Register)
		r.Post("/api/v1/users/login", s.userHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требует HS256 токен) ---
	r.Group(func(r chi.Router) {
		// Подключаем универсальный Middleware только для этой группы
		r.Use(auth.NewMiddleware(s.tokenValidator, s.logger))

		// Пользователи (list — только admin, остальное — admin или владелец)
		r.Route("/api/v1/users", func(r chi.Router) {
			r.Get("/", s.userHandler.List)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", s.userHandler.Get)
				r.Put("/", s.userHandler.Update)
				r.Delete("/", s.userHandler.Delete)
			})
		})

		// Каталог товаров и управление складом
		r.Route("/api/v1/products", func(r chi.Router) {
			r.Get("/", s.productHandler.List)
			r.Post("/", s.productHandler.Create)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", s.productHandler.Get)
				r.Put("/", s.productHandler.Update)
				r.Delete("/", s.productHandler.Delete)
				r.Post("/options", s.productHandler.CreateOptions)
				r.Delete("/options/{color}", s.productHandler.DeleteOption)
			})
		})

		// Категории
		r.Route("/api/v1/categories", func(r chi.Router) {
			r.Get("/", s.categoryHandler.List)
			r.Post("/", s.categoryHandler.Create)
			r.Route("/{categoryID}", func(r chi.Router) {
				r.Get("/", s.categoryHandler.Get)
				r.Delete("/", s.categoryHandler.Delete)
			})
		})

		// Корзины: наполнение, просмотр и расчёт.
		// Один wildcard на сегмент: для POST это ID пользователя,
		// для остальных методов — ID корзины.
		r.Route("/api/v1/carts/{id}", func(r chi.Router) {
			r.Post("/", s.cartHandler.Create)
			r.Get("/", s.cartHandler.Get)
			r.Put("/", s.cartHandler.Update)
			r.Delete("/", s.cartHandler.Delete)
			r.Delete("/buy", s.cartHandler.Buy)
		})
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
