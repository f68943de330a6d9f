package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/xela07ax/shopcore/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — интерфейс проверки токена для HTTP-периметра.
// Реализуется кодеком; в тестах подменяется фейком.
type TokenValidator interface {
	Decode(token string) (*domain.Claims, error)
}

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const claimsKey ctxKey = "auth_claims"

// NewMiddleware закрывает группу роутов проверкой токена.
// Снаружи любой провал аутентификации неразличим (единый 401):
// различие invalid/expired остается в логах для диагностики.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				token = r.Header.Get("X-Access-Token")
			}
			if token == "" {
				http.Error(w, "auth token is not supplied", http.StatusUnauthorized)
				return
			}

			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

			claims, err := v.Decode(token)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "token is not valid", http.StatusUnauthorized)
				return
			}

			// Прокидываем claims в контекст запроса
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext достает claims, положенные middleware.
// Второй результат false означает, что роут не был закрыт периметром.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.Claims)
	return claims, ok
}
