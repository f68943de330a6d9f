package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: время обработки HTTP-запроса
	RequestDuration *prometheus.HistogramVec

	// Traffic: общее кол-во запросов
	TotalRequests *prometheus.CounterVec

	// Бизнес: исходы settlement-а корзин (ok / conflict / error)
	SettlementsTotal *prometheus.CounterVec

	// Сработавшие ограничители
	ThrottledLogins prometheus.Counter
	RateLimited     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopcore_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shopcore_requests_total",
			Help: "Total number of processed requests.",
		}, []string{"route", "method"}),

		SettlementsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "shopcore_cart_settlements_total",
			Help: "Cart settlement outcomes.",
		}, []string{"result"}), // результаты: ok, conflict, error

		ThrottledLogins: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "shopcore_throttled_logins_total",
			Help: "Login attempts rejected by the attempt counter.",
		}),

		RateLimited: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "shopcore_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		}),
	}
}
