package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bigkaa/presight/internal/domain/model"
	"github.com/bigkaa/presight/internal/jobs/memqueue"
	"github.com/bigkaa/presight/internal/jobs/redisqueue"
	"github.com/bigkaa/presight/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserService struct {
	listFn          func(ctx context.Context, filter model.UserFilter) *model.UserList
	filterOptionsFn func(ctx context.Context) (*model.FilterOptions, error)
	regenerateFn    func(ctx context.Context) (repository.Snapshot, error)
}

func (m *mockUserService) List(ctx context.Context, filter model.UserFilter) *model.UserList {
	return m.listFn(ctx, filter)
}

func (m *mockUserService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	return m.filterOptionsFn(ctx)
}

func (m *mockUserService) Regenerate(ctx context.Context) (repository.Snapshot, error) {
	return m.regenerateFn(ctx)
}

type mockStreamer struct {
	streamFn func(ctx context.Context, w http.ResponseWriter) error
}

func (m *mockStreamer) Stream(ctx context.Context, w http.ResponseWriter) error {
	return m.streamFn(ctx, w)
}

type mockWorkerQueue struct {
	mu    sync.Mutex
	items []memqueue.Item
}

func (m *mockWorkerQueue) Enqueue(item memqueue.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

func (m *mockWorkerQueue) List() []memqueue.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]memqueue.Item(nil), m.items...)
}

type mockRedisQueue struct {
	addFn   func(ctx context.Context, id, data string) (*redisqueue.Job, error)
	jobsFn  func(ctx context.Context) ([]*redisqueue.Job, error)
	jobFn   func(ctx context.Context, id string) (*redisqueue.Job, error)
	retryFn func(ctx context.Context, id string) (bool, error)
}

func (m *mockRedisQueue) Add(ctx context.Context, id, data string) (*redisqueue.Job, error) {
	return m.addFn(ctx, id, data)
}

func (m *mockRedisQueue) Jobs(ctx context.Context) ([]*redisqueue.Job, error) {
	return m.jobsFn(ctx)
}

func (m *mockRedisQueue) Job(ctx context.Context, id string) (*redisqueue.Job, error) {
	return m.jobFn(ctx, id)
}

func (m *mockRedisQueue) Retry(ctx context.Context, id string) (bool, error) {
	return m.retryFn(ctx, id)
}

// newTestHandler собирает APIHandler; redis == nil — Redis выключен.
func newTestHandler(users UserService, queue WorkerQueue, redis RedisQueue) *APIHandler {
	return NewAPIHandler(
		NewHealthHandler(nil),
		users,
		&mockStreamer{streamFn: func(context.Context, http.ResponseWriter) error { return nil }},
		queue,
		redis,
		http.NotFoundHandler(),
		testLogger(),
	)
}
