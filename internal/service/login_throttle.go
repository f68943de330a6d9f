package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/shopcore/internal/infra"
	"go.uber.org/zap"
)

// LoginThrottle считает неудачные попытки логина в Redis и отсекает перебор.
// Redis дает общий счетчик на все реплики сервиса. Обращения обернуты
// в circuit breaker: при недоступном Redis троттлер пропускает всех
// (fail-open) — деградация ограничителя не должна ронять логин целиком.
type LoginThrottle struct {
	rdb    *redis.Client
	cb     *gobreaker.CircuitBreaker
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewLoginThrottle(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "login-throttle-redis",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &LoginThrottle{
		rdb:    rdb,
		cb:     cb,
		limit:  limit,
		window: window,
		logger: logger.Named("login-throttle"),
	}
}

// Allow сообщает, пускать ли очередную попытку логина для email.
func (t *LoginThrottle) Allow(ctx context.Context, email string) bool {
	res, err := t.cb.Execute(func() (interface{}, error) {
		n, err := t.rdb.Get(ctx, infra.LoginAttemptsKey(email)).Int()
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return n, err
	})
	if err != nil {
		// Redis недоступен или предохранитель открыт — пропускаем
		t.logger.Warn("throttle check skipped", zap.Error(err))
		return true
	}
	return res.(int) < t.limit
}

// Fail фиксирует неудачную попытку. Счетчик живет window и гаснет по TTL.
func (t *LoginThrottle) Fail(ctx context.Context, email string) {
	_, err := t.cb.Execute(func() (interface{}, error) {
		key := infra.LoginAttemptsKey(email)
		n, err := t.rdb.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if n == 1 {
			if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		t.logger.Warn("failed to record login attempt", zap.Error(err))
	}
}
