// routes.go — таблица маршрутов API поверх chi.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServerInterface — обработчики всех маршрутов API.
type ServerInterface interface {
	// GET /health
	Health(w http.ResponseWriter, r *http.Request)
	// GET /health/live
	HealthLive(w http.ResponseWriter, r *http.Request)
	// GET /health/ready
	HealthReady(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// GET /socket
	Socket(w http.ResponseWriter, r *http.Request)

	// GET /api/users
	ListUsers(w http.ResponseWriter, r *http.Request)
	// POST /api/users/regenerate
	RegenerateUsers(w http.ResponseWriter, r *http.Request)
	// GET /api/filters
	GetFilterOptions(w http.ResponseWriter, r *http.Request)
	// GET /api/stream/text
	StreamText(w http.ResponseWriter, r *http.Request)

	// POST /api/worker/process
	ProcessWorkerRequest(w http.ResponseWriter, r *http.Request)
	// GET /api/worker/status
	GetWorkerStatus(w http.ResponseWriter, r *http.Request)

	// POST /api/redis-worker/process
	ProcessRedisRequest(w http.ResponseWriter, r *http.Request)
	// GET /api/redis-worker/queue
	GetRedisQueue(w http.ResponseWriter, r *http.Request)
	// GET /api/redis-worker/job/{jobId}
	GetRedisJob(w http.ResponseWriter, r *http.Request, jobID string)
	// POST /api/redis-worker/job/{jobId}/retry
	RetryRedisJob(w http.ResponseWriter, r *http.Request, jobID string)

	NotFound(w http.ResponseWriter, r *http.Request)
	MethodNotAllowed(w http.ResponseWriter, r *http.Request)
}

// HandlerFromMux регистрирует маршруты si в роутере r.
// submit оборачивает эндпоинты постановки задач (nil — без обёртки).
func HandlerFromMux(si ServerInterface, r chi.Router, submit func(http.Handler) http.Handler) {
	if submit == nil {
		submit = func(next http.Handler) http.Handler { return next }
	}

	r.NotFound(si.NotFound)
	r.MethodNotAllowed(si.MethodNotAllowed)

	r.Get("/health", si.Health)
	r.Get("/health/live", si.HealthLive)
	r.Get("/health/ready", si.HealthReady)
	r.Get("/metrics", si.GetMetrics)
	r.Get("/socket", si.Socket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", si.ListUsers)
		r.Get("/filters", si.GetFilterOptions)
		r.Get("/stream/text", si.StreamText)

		r.Group(func(r chi.Router) {
			r.Use(submit)
			r.Post("/users/regenerate", si.RegenerateUsers)
			r.Post("/worker/process", si.ProcessWorkerRequest)
			r.Post("/redis-worker/process", si.ProcessRedisRequest)
			r.Post("/redis-worker/job/{jobId}/retry", func(w http.ResponseWriter, r *http.Request) {
				si.RetryRedisJob(w, r, chi.URLParam(r, "jobId"))
			})
		})

		r.Get("/worker/status", si.GetWorkerStatus)
		r.Get("/redis-worker/queue", si.GetRedisQueue)
		r.Get("/redis-worker/job/{jobId}", func(w http.ResponseWriter, r *http.Request) {
			si.GetRedisJob(w, r, chi.URLParam(r, "jobId"))
		})
	})
}
