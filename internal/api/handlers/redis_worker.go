// redis_worker.go — обработчики Redis-очереди:
// POST /api/redis-worker/process, GET /api/redis-worker/queue,
// GET /api/redis-worker/job/{jobId}, POST /api/redis-worker/job/{jobId}/retry.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
	"github.com/bigkaa/presight/internal/jobs/redisqueue"
)

// redisQueueName — значение поля queue в ответе на постановку.
const redisQueueName = "redis"

// redisQueueResponse — ответ GET /api/redis-worker/queue.
type redisQueueResponse struct {
	Success bool              `json:"success"`
	Queue   []*redisqueue.Job `json:"queue"`
}

// redisJobResponse — ответ GET /api/redis-worker/job/{jobId}.
type redisJobResponse struct {
	Success bool            `json:"success"`
	Job     *redisqueue.Job `json:"job"`
}

// messageResponse — успешный ответ с сообщением.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// redisEnabled отвечает 503, если Redis-очередь выключена.
func (h *APIHandler) redisEnabled(w http.ResponseWriter) bool {
	if h.redisQueue == nil {
		apierrors.ServiceUnavailable(w, "Redis queue is disabled")
		return false
	}
	return true
}

// ProcessRedisRequest — POST /api/redis-worker/process: задача в Redis-очередь.
func (h *APIHandler) ProcessRedisRequest(w http.ResponseWriter, r *http.Request) {
	if !h.redisEnabled(w) {
		return
	}
	data, err := readJobData(w, r, defaultRedisWorkerData)
	if err != nil {
		apierrors.BadRequest(w, "Invalid JSON body")
		return
	}

	job, err := h.redisQueue.Add(r.Context(), uuid.NewString(), data)
	if err != nil {
		h.logger.Error("Ошибка постановки задачи в Redis", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to process Redis request")
		return
	}

	writeJSON(w, http.StatusAccepted, processResponse{
		Success:   true,
		RequestID: job.ID,
		Status:    string(redisqueue.StatusPending),
		Queue:     redisQueueName,
	})
}

// GetRedisQueue — GET /api/redis-worker/queue: задачи во всех состояниях.
func (h *APIHandler) GetRedisQueue(w http.ResponseWriter, r *http.Request) {
	if !h.redisEnabled(w) {
		return
	}
	jobs, err := h.redisQueue.Jobs(r.Context())
	if err != nil {
		h.logger.Error("Ошибка чтения Redis-очереди", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to get Redis queue status")
		return
	}
	writeJSON(w, http.StatusOK, redisQueueResponse{Success: true, Queue: jobs})
}

// GetRedisJob — GET /api/redis-worker/job/{jobId}.
func (h *APIHandler) GetRedisJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if !h.redisEnabled(w) {
		return
	}
	job, err := h.redisQueue.Job(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, redisqueue.ErrJobNotFound) {
			apierrors.NotFound(w, "Redis job not found")
			return
		}
		h.logger.Error("Ошибка чтения задачи Redis",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Failed to get Redis job")
		return
	}
	writeJSON(w, http.StatusOK, redisJobResponse{Success: true, Job: job})
}

// RetryRedisJob — POST /api/redis-worker/job/{jobId}/retry.
// Повтор возможен только для задачи в состоянии failed.
func (h *APIHandler) RetryRedisJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if !h.redisEnabled(w) {
		return
	}
	ok, err := h.redisQueue.Retry(r.Context(), jobID)
	if err != nil {
		h.logger.Error("Ошибка повтора задачи Redis",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Failed to retry Redis job")
		return
	}
	if !ok {
		apierrors.BadRequest(w, "Redis job not found or not in failed state")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: fmt.Sprintf("Redis job %s queued for retry", jobID),
	})
}
