// metrics.go — Prometheus HTTP метрики сервиса.
// Регистрирует метрики: ps_http_requests_total, ps_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ps_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ps_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
// Длительность стриминга и websocket-сессий тоже попадает в гистограмму.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// knownPaths — статические маршруты API.
var knownPaths = map[string]struct{}{
	"/health":                   {},
	"/health/live":              {},
	"/health/ready":             {},
	"/metrics":                  {},
	"/socket":                   {},
	"/api/users":                {},
	"/api/users/regenerate":     {},
	"/api/filters":              {},
	"/api/stream/text":          {},
	"/api/worker/process":       {},
	"/api/worker/status":        {},
	"/api/redis-worker/process": {},
	"/api/redis-worker/queue":   {},
}

// normalizePath заменяет id задачи на {id} и сводит неизвестные пути
// к одному лейблу.
// /api/redis-worker/job/<id>       → /api/redis-worker/job/{id}
// /api/redis-worker/job/<id>/retry → /api/redis-worker/job/{id}/retry
func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}

	const jobPrefix = "/api/redis-worker/job/"
	if rest, ok := strings.CutPrefix(path, jobPrefix); ok && rest != "" {
		id, suffix, hasSuffix := strings.Cut(rest, "/")
		switch {
		case id == "":
		case !hasSuffix:
			return jobPrefix + "{id}"
		case suffix == "retry":
			return jobPrefix + "{id}/retry"
		}
	}

	return "unmatched"
}
