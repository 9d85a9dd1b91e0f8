// handler.go — основной обработчик API.
// Объединяет health, листинг пользователей, стриминг, очереди задач и websocket.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/presight/internal/domain/model"
	"github.com/bigkaa/presight/internal/jobs/memqueue"
	"github.com/bigkaa/presight/internal/jobs/redisqueue"
	"github.com/bigkaa/presight/internal/repository"
)

// UserService — листинг, опции фильтров и регенерация датасета.
type UserService interface {
	List(ctx context.Context, filter model.UserFilter) *model.UserList
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	Regenerate(ctx context.Context) (repository.Snapshot, error)
}

// TextStreamer — потоковая выдача текста в ответ.
type TextStreamer interface {
	Stream(ctx context.Context, w http.ResponseWriter) error
}

// WorkerQueue — in-process очередь задач.
type WorkerQueue interface {
	Enqueue(item memqueue.Item)
	List() []memqueue.Item
}

// RedisQueue — Redis-очередь задач.
type RedisQueue interface {
	Add(ctx context.Context, id, data string) (*redisqueue.Job, error)
	Jobs(ctx context.Context) ([]*redisqueue.Job, error)
	Job(ctx context.Context, id string) (*redisqueue.Job, error)
	Retry(ctx context.Context, id string) (bool, error)
}

// APIHandler — основной обработчик API.
// redisQueue == nil — Redis выключен, эндпоинты redis-worker отвечают 503.
type APIHandler struct {
	health     *HealthHandler
	users      UserService
	streamer   TextStreamer
	workQueue  WorkerQueue
	redisQueue RedisQueue
	socket     http.Handler
	logger     *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	users UserService,
	streamer TextStreamer,
	workQueue WorkerQueue,
	redisQueue RedisQueue,
	socket http.Handler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:     health,
		users:      users,
		streamer:   streamer,
		workQueue:  workQueue,
		redisQueue: redisQueue,
		socket:     socket,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// Health — простой статус процесса.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.health.Health(w, r)
}

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// Socket — websocket-подключение к событиям обработчиков очередей.
func (h *APIHandler) Socket(w http.ResponseWriter, r *http.Request) {
	h.socket.ServeHTTP(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
