package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xela07ax/shopcore/internal/domain"
)

func testClaims() domain.Claims {
	return domain.Claims{
		Issuer:  "shopcore",
		Subject: "alice",
		Email:   "alice@example.com",
		UserID:  "6b6d2a8e-1111-4a59-9c39-000000000001",
		Role:    domain.RoleCustomer,
	}
}

func frozenCodec(secret string, at time.Time) *Codec {
	c := NewCodec(secret, DefaultTTL)
	c.now = func() time.Time { return at }
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	issued := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c := frozenCodec("top-secret", issued)

	token, err := c.Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	got, err := c.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := testClaims()
	want.ExpiresAt = issued.Add(time.Hour).Unix()
	if *got != want {
		t.Fatalf("claims mismatch:\n got  %+v\n want %+v", *got, want)
	}
}

func TestCodecExpInjectedByEncoder(t *testing.T) {
	issued := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c := frozenCodec("top-secret", issued)

	// Даже если вызывающий подсунул свой exp, кодек его перезаписывает.
	claims := testClaims()
	claims.ExpiresAt = issued.Add(100 * time.Hour).Unix()

	token, err := c.Encode(claims)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ExpiresAt != issued.Add(time.Hour).Unix() {
		t.Fatalf("exp = %d, want issued+1h", got.ExpiresAt)
	}
}

func TestCodecDeterministicForFixedClock(t *testing.T) {
	issued := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c := frozenCodec("top-secret", issued)

	t1, err := c.Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	t2, err := c.Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if t1 != t2 {
		t.Fatal("same clock and input must produce identical tokens")
	}
}

func TestCodecTamperedClaims(t *testing.T) {
	c := frozenCodec("top-secret", time.Now())

	token, err := c.Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	parts := strings.Split(token, ".")
	body := []byte(parts[1])
	for i := range body {
		mutated := append([]byte(nil), body...)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		forged := parts[0] + "." + string(mutated) + "." + parts[2]
		if _, err := c.Decode(forged); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("byte %d: expected ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestCodecWrongSecret(t *testing.T) {
	at := time.Now()
	token, err := frozenCodec("secret-one", at).Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := frozenCodec("secret-two", at).Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodecExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c := frozenCodec("top-secret", issued)

	token, err := c.Encode(testClaims())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cases := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"inside window", issued.Add(59 * time.Minute), nil},
		{"exactly at exp", issued.Add(time.Hour), domain.ErrExpiredToken}, // exp должен быть строго больше
		{"after exp", issued.Add(2 * time.Hour), domain.ErrExpiredToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			later := frozenCodec("top-secret", tc.at)
			_, err := later.Decode(token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("decode at %v: got %v, want %v", tc.at, err, tc.wantErr)
			}
		})
	}
}

// Корректно подписанный токен без exp в теле должен считаться истекшим.
func TestCodecMissingExp(t *testing.T) {
	secret := "top-secret"
	head := base64.RawURLEncoding.EncodeToString([]byte(tokenHeader))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"iss":"shopcore","userId":"u1"}`))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(head + "." + payload))
	sum := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	c := NewCodec(secret, DefaultTTL)
	if _, err := c.Decode(head + "." + payload + "." + sum); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestCodecMalformedInput(t *testing.T) {
	c := NewCodec("top-secret", DefaultTTL)

	// Подписанный токен с телом, которое не декодируется из base64.
	badBody := "not_base64!!"
	head := base64.RawURLEncoding.EncodeToString([]byte(tokenHeader))
	mac := hmac.New(sha256.New, []byte("top-secret"))
	mac.Write([]byte(head + "." + badBody))
	signedGarbage := head + "." + badBody + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"garbage checksum", "a.b.%%%"},
		{"signed non-base64 body", signedGarbage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Decode(tc.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
