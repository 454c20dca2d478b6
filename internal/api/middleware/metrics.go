// metrics.go — Prometheus HTTP метрики для Planner Module.
// Регистрирует метрики: pl_http_requests_total, pl_http_request_duration_seconds.
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
			Name: "pl_http_requests_total",
			Help: "Общее количество HTTP-запросов к Planner Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pl_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Planner Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// collections — ресурсы с идентификатором во втором сегменте пути.
var collections = []string{"sections", "persons", "projects", "users"}

// normalizePath заменяет идентификаторы в пути на {id}, чтобы
// число лейблов метрик не росло вместе с числом записей.
// /api/v1/users/a1b2c3d4-.../password → /api/v1/users/{id}/password
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/", "/planner", "/login", "/logout", "/set-language",
		"/api/v1/auth/login", "/api/v1/auth/logout", "/api/v1/auth/me",
		"/api/v1/assignments", "/api/v1/assignments/bulk",
		"/api/v1/holidays",
		"/api/v1/sections", "/api/v1/persons", "/api/v1/projects", "/api/v1/users":
		return path
	}

	if rest, ok := strings.CutPrefix(path, "/person/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/person/{id}"
	}

	for _, c := range collections {
		prefix := "/api/v1/" + c + "/"
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if rest == "" {
			break
		}
		result := prefix + "{id}"
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			if c == "users" && rest[i:] == "/password" {
				return result + "/password"
			}
			return "other"
		}
		return result
	}

	return "other"
}
