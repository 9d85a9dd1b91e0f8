// worker.go — обработчики in-process очереди:
// POST /api/worker/process, GET /api/worker/status.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
	"github.com/bigkaa/presight/internal/jobs/memqueue"
)

// Данные задачи, если клиент их не передал.
const (
	defaultWorkerData      = "Default request data"
	defaultRedisWorkerData = "Redis worker request data"
)

// maxRequestBody — предельный размер тела запроса постановки задачи.
const maxRequestBody = 100 << 10

// processResponse — ответ на постановку задачи.
type processResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Queue     string `json:"queue,omitempty"`
}

// workerStatusResponse — ответ GET /api/worker/status.
type workerStatusResponse struct {
	Success bool            `json:"success"`
	Queue   []memqueue.Item `json:"queue"`
}

// ProcessWorkerRequest — POST /api/worker/process: задача в in-process очередь.
func (h *APIHandler) ProcessWorkerRequest(w http.ResponseWriter, r *http.Request) {
	data, err := readJobData(w, r, defaultWorkerData)
	if err != nil {
		apierrors.BadRequest(w, "Invalid JSON body")
		return
	}

	id := uuid.NewString()
	h.workQueue.Enqueue(memqueue.Item{
		ID:        id,
		Data:      data,
		Status:    memqueue.StatusPending,
		Timestamp: time.Now().UTC(),
	})

	writeJSON(w, http.StatusAccepted, processResponse{
		Success:   true,
		RequestID: id,
		Status:    string(memqueue.StatusPending),
	})
}

// GetWorkerStatus — GET /api/worker/status: снимок in-process очереди.
func (h *APIHandler) GetWorkerStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, workerStatusResponse{
		Success: true,
		Queue:   h.workQueue.List(),
	})
}

// readJobData читает поле data из JSON-тела {"data": ...}.
// Пустое тело, null, false, 0 и "" дают fallback; строка берётся без кавычек,
// любое другое значение — как исходный JSON.
func readJobData(w http.ResponseWriter, r *http.Request, fallback string) (string, error) {
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return fallback, nil
		}
		return "", err
	}

	raw := bytes.TrimSpace(body.Data)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return fallback, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}
