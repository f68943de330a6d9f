package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestMultiLimiterAllow(t *testing.T) {
	// 2 события в секунду, burst 2
	ml := newMultiLimiter(rate.Limit(2), 2, time.Minute)
	key := "10.0.0.1"

	if !ml.allow(key) {
		t.Fatal("first allow should pass")
	}
	if !ml.allow(key) {
		t.Fatal("second allow should pass")
	}
	// Третий мгновенный вызов упирается в исчерпанный burst
	if ml.allow(key) {
		t.Fatal("third allow should be rate limited")
	}

	// Другой ключ имеет собственный bucket
	if !ml.allow("10.0.0.2") {
		t.Fatal("independent key should not be limited")
	}
}

func TestMultiLimiterEvictsStaleEntries(t *testing.T) {
	ml := newMultiLimiter(rate.Limit(1), 1, time.Nanosecond)
	ml.allow("a")
	time.Sleep(time.Millisecond)
	ml.allow("b") // при обращении вычищает протухший "a"

	ml.mu.Lock()
	defer ml.mu.Unlock()
	if _, ok := ml.entries["a"]; ok {
		t.Fatal("stale entry should have been evicted")
	}
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.168.1.10:4242"

	if ip := getClientIP(r); ip != "192.168.1.10" {
		t.Fatalf("expected remote addr host, got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := getClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", ip)
	}
}
