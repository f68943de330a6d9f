package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/xela07ax/shopcore/internal/domain"
)

// Codec выпускает и проверяет компактный самодостаточный токен вида
// header.claims.checksum. Сегменты — base64url без паддинга, контрольная
// сумма — HMAC-SHA256 от строки "header.claims" на общем секрете.
// Токен читается любым держателем (это кодирование, не шифрование);
// кодек гарантирует только целостность и срок жизни.
//
// Отзыва нет: выпущенный токен живет до собственного exp независимо от
// изменений на сервере (смена пароля его не гасит). Это осознанное
// ограничение stateless-схемы, а не баг.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// DefaultTTL — фиксированное окно жизни выпущенного токена.
const DefaultTTL = time.Hour

// Заголовок фиксирован: алгоритм подписи и формат сериализации.
const tokenHeader = `{"alg":"HS256","typ":"JWT"}`

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Encode выпускает токен для переданных claims.
// exp всегда перезаписывается значением now + TTL: что бы ни пришло
// в структуре, срок жизни назначает только кодек.
func (c *Codec) Encode(claims domain.Claims) (string, error) {
	claims.ExpiresAt = c.now().Add(c.ttl).Unix()

	body, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	head := base64.RawURLEncoding.EncodeToString([]byte(tokenHeader))
	payload := base64.RawURLEncoding.EncodeToString(body)

	return head + "." + payload + "." + c.checksum(head, payload), nil
}

// Decode проверяет подпись и срок жизни токена.
// Любой мусор на входе (не три сегмента, битый base64, не-JSON) — это
// ErrInvalidToken, а не паника: вызывающему слою нужен исход
// "аутентифицирован или нет", а не исключение.
func (c *Codec) Decode(token string) (*domain.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, domain.ErrInvalidToken
	}
	head, payload, sum := parts[0], parts[1], parts[2]

	// Сравниваем суммы в константное время. Несовпадение не различает
	// подмену тела и чужой секрет — наружу это одно и то же.
	if !hmac.Equal([]byte(c.checksum(head, payload)), []byte(sum)) {
		return nil, domain.ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	var claims domain.Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, domain.ErrInvalidToken
	}

	// exp обязан присутствовать и быть строго больше текущего времени.
	if claims.ExpiresAt <= c.now().Unix() {
		return nil, domain.ErrExpiredToken
	}

	return &claims, nil
}

func (c *Codec) checksum(head, payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(head + "." + payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
