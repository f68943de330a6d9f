package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "shopcore"
)

// LoginAttemptsKey — счетчик неудачных попыток логина для email.
// Живет limits.login_window, сбрасывается по TTL.
func LoginAttemptsKey(email string) string {
	return fmt.Sprintf("%s:auth:attempts:%s", RedisNamespace, email)
}
