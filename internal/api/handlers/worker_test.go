package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/presight/internal/jobs/memqueue"
	"github.com/bigkaa/presight/internal/jobs/redisqueue"
)

func TestProcessWorkerRequest_Data(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"без тела", "", defaultWorkerData},
		{"пустой объект", "{}", defaultWorkerData},
		{"пустая строка", `{"data":""}`, defaultWorkerData},
		{"null", `{"data":null}`, defaultWorkerData},
		{"строка", `{"data":"hello"}`, "hello"},
		{"объект", `{"data":{"a":1}}`, `{"a":1}`},
		{"число", `{"data":42}`, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &mockWorkerQueue{}
			h := newTestHandler(&mockUserService{}, queue, nil)

			rec := httptest.NewRecorder()
			h.ProcessWorkerRequest(rec, httptest.NewRequest(http.MethodPost, "/api/worker/process",
				strings.NewReader(tt.body)))

			if rec.Code != http.StatusAccepted {
				t.Fatalf("статус: ожидался 202, получен %d: %s", rec.Code, rec.Body.String())
			}
			var body processResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("некорректный JSON: %v", err)
			}
			if !body.Success || body.Status != "pending" || body.RequestID == "" || body.Queue != "" {
				t.Errorf("тело ответа: %+v", body)
			}

			items := queue.List()
			if len(items) != 1 {
				t.Fatalf("в очереди %d задач, ожидалась 1", len(items))
			}
			if items[0].ID != body.RequestID || items[0].Data != tt.want || items[0].Status != memqueue.StatusPending {
				t.Errorf("задача: %+v, ожидались data=%q", items[0], tt.want)
			}
		})
	}
}

func TestProcessWorkerRequest_InvalidJSON(t *testing.T) {
	queue := &mockWorkerQueue{}
	h := newTestHandler(&mockUserService{}, queue, nil)

	rec := httptest.NewRecorder()
	h.ProcessWorkerRequest(rec, httptest.NewRequest(http.MethodPost, "/api/worker/process",
		strings.NewReader("{oops")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус: ожидался 400, получен %d", rec.Code)
	}
	if len(queue.List()) != 0 {
		t.Error("задача не должна попасть в очередь")
	}
}

func TestGetWorkerStatus(t *testing.T) {
	queue := &mockWorkerQueue{}
	queue.Enqueue(memqueue.Item{ID: "a", Data: "x", Status: memqueue.StatusCompleted, Result: "done"})
	h := newTestHandler(&mockUserService{}, queue, nil)

	rec := httptest.NewRecorder()
	h.GetWorkerStatus(rec, httptest.NewRequest(http.MethodGet, "/api/worker/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидался 200, получен %d", rec.Code)
	}
	var body workerStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if !body.Success || len(body.Queue) != 1 || body.Queue[0].Result != "done" {
		t.Errorf("тело ответа: %+v", body)
	}
}

func TestRedisWorker_Disabled(t *testing.T) {
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, nil)

	calls := []func(w http.ResponseWriter, r *http.Request){
		h.ProcessRedisRequest,
		h.GetRedisQueue,
		func(w http.ResponseWriter, r *http.Request) { h.GetRedisJob(w, r, "x") },
		func(w http.ResponseWriter, r *http.Request) { h.RetryRedisJob(w, r, "x") },
	}
	for i, call := range calls {
		rec := httptest.NewRecorder()
		call(rec, httptest.NewRequest(http.MethodGet, "/api/redis-worker/queue", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("вызов %d: статус %d, ожидался 503", i, rec.Code)
		}
	}
}

func TestProcessRedisRequest(t *testing.T) {
	var gotID, gotData string
	rq := &mockRedisQueue{
		addFn: func(_ context.Context, id, data string) (*redisqueue.Job, error) {
			gotID, gotData = id, data
			return &redisqueue.Job{ID: id, Data: data, Status: redisqueue.StatusPending}, nil
		},
	}
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, rq)

	rec := httptest.NewRecorder()
	h.ProcessRedisRequest(rec, httptest.NewRequest(http.MethodPost, "/api/redis-worker/process", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("статус: ожидался 202, получен %d", rec.Code)
	}
	var body processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body.RequestID != gotID || body.Queue != "redis" || body.Status != "pending" {
		t.Errorf("тело ответа: %+v", body)
	}
	if gotData != defaultRedisWorkerData {
		t.Errorf("data: %q, ожидалось %q", gotData, defaultRedisWorkerData)
	}
}

func TestProcessRedisRequest_AddError(t *testing.T) {
	rq := &mockRedisQueue{
		addFn: func(context.Context, string, string) (*redisqueue.Job, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, rq)

	rec := httptest.NewRecorder()
	h.ProcessRedisRequest(rec, httptest.NewRequest(http.MethodPost, "/api/redis-worker/process",
		strings.NewReader(`{"data":"x"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("статус: ожидался 500, получен %d", rec.Code)
	}
}

func TestGetRedisQueue(t *testing.T) {
	rq := &mockRedisQueue{
		jobsFn: func(context.Context) ([]*redisqueue.Job, error) {
			return []*redisqueue.Job{{ID: "1", Status: redisqueue.StatusFailed}}, nil
		},
	}
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, rq)

	rec := httptest.NewRecorder()
	h.GetRedisQueue(rec, httptest.NewRequest(http.MethodGet, "/api/redis-worker/queue", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидался 200, получен %d", rec.Code)
	}
	var body redisQueueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if !body.Success || len(body.Queue) != 1 || body.Queue[0].Status != redisqueue.StatusFailed {
		t.Errorf("тело ответа: %+v", body)
	}
}

func TestGetRedisJob(t *testing.T) {
	rq := &mockRedisQueue{
		jobFn: func(_ context.Context, id string) (*redisqueue.Job, error) {
			if id == "known" {
				return &redisqueue.Job{ID: id, Status: redisqueue.StatusCompleted, Result: "ok"}, nil
			}
			return nil, redisqueue.ErrJobNotFound
		},
	}
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, rq)

	rec := httptest.NewRecorder()
	h.GetRedisJob(rec, httptest.NewRequest(http.MethodGet, "/api/redis-worker/job/known", nil), "known")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус: ожидался 200, получен %d", rec.Code)
	}
	var body redisJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body.Job == nil || body.Job.Result != "ok" {
		t.Errorf("тело ответа: %+v", body)
	}

	rec = httptest.NewRecorder()
	h.GetRedisJob(rec, httptest.NewRequest(http.MethodGet, "/api/redis-worker/job/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("статус: ожидался 404, получен %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Redis job not found") {
		t.Errorf("тело ответа: %s", rec.Body.String())
	}
}

func TestRetryRedisJob(t *testing.T) {
	rq := &mockRedisQueue{
		retryFn: func(_ context.Context, id string) (bool, error) {
			switch id {
			case "failed":
				return true, nil
			case "broken":
				return false, errors.New("boom")
			default:
				return false, nil
			}
		},
	}
	h := newTestHandler(&mockUserService{}, &mockWorkerQueue{}, rq)

	tests := []struct {
		id   string
		code int
	}{
		{"failed", http.StatusOK},
		{"active", http.StatusBadRequest},
		{"broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.RetryRedisJob(rec, httptest.NewRequest(http.MethodPost, "/api/redis-worker/job/"+tt.id+"/retry", nil), tt.id)
		if rec.Code != tt.code {
			t.Errorf("%s: статус %d, ожидался %d", tt.id, rec.Code, tt.code)
		}
	}

	rec := httptest.NewRecorder()
	h.RetryRedisJob(rec, httptest.NewRequest(http.MethodPost, "/", nil), "failed")
	var body messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if body.Message != "Redis job failed queued for retry" {
		t.Errorf("message: %q", body.Message)
	}
}
