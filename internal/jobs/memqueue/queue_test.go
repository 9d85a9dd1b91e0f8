package memqueue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigkaa/presight/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingPublisher — events.Publisher, запоминающий события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.data = append(p.data, payload)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func pending(id, data string) Item {
	return Item{ID: id, Data: data, Status: StatusPending, Timestamp: time.Now()}
}

func TestQueue_DequeueFirstPending(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(pending("a", "1"))
	q.Enqueue(pending("b", "2"))

	item, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", item.ID)
	assert.Equal(t, StatusProcessing, item.Status)

	item, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "b", item.ID)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueue_ListIsCopy(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(pending("a", "1"))

	list := q.List()
	list[0].Status = StatusCompleted

	assert.Equal(t, StatusPending, q.List()[0].Status)
}

func TestQueue_Update(t *testing.T) {
	q := NewQueue(0)
	q.Enqueue(pending("a", "1"))

	status := StatusCompleted
	result := "done"
	assert.True(t, q.Update("a", Patch{Status: &status, Result: &result}))
	assert.False(t, q.Update("missing", Patch{Status: &status}))

	got := q.List()[0]
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "done", got.Result)
	assert.Equal(t, "1", got.Data)
}

func TestQueue_PruneCompleted(t *testing.T) {
	q := NewQueue(2)
	for i := range 4 {
		q.Enqueue(pending(fmt.Sprint(i), "x"))
	}
	q.Enqueue(pending("p", "x"))

	status := StatusCompleted
	for i := range 4 {
		q.Update(fmt.Sprint(i), Patch{Status: &status})
	}

	ids := make([]string, 0)
	for _, it := range q.List() {
		ids = append(ids, it.ID)
	}
	// самые старые завершённые удалены, pending сохранена
	assert.Equal(t, []string{"2", "3", "p"}, ids)
}

func TestWorker_TickProcessesAndPublishes(t *testing.T) {
	q := NewQueue(0)
	pub := &recordingPublisher{}
	w := NewWorker(q, pub, time.Hour, 10*time.Millisecond, testLogger())
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	q.Enqueue(pending("req-1", "hello"))

	require.True(t, w.Tick(context.Background()))
	assert.False(t, w.Tick(context.Background()), "вторая задача отсутствует")

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, "worker:result", pub.events[0])
	ev, ok := pub.data[0].(events.WorkerResult)
	require.True(t, ok)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, "completed", ev.Status)
	assert.Equal(t, "Processed request req-1: hello at 2025-03-01T10:00:00Z", ev.Result)

	got := q.List()[0]
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, ev.Result, got.Result)
	require.NotNil(t, got.CompletedAt)
}

func TestWorker_StartStop(t *testing.T) {
	q := NewQueue(0)
	pub := &recordingPublisher{}
	w := NewWorker(q, pub, 5*time.Millisecond, time.Millisecond, testLogger())

	q.Enqueue(pending("a", "1"))
	q.Enqueue(pending("b", "2"))

	w.Start(context.Background())
	require.Eventually(t, func() bool { return pub.count() == 2 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	for _, it := range q.List() {
		assert.Equal(t, StatusCompleted, it.Status)
		assert.True(t, strings.HasPrefix(it.Result, "Processed request "+it.ID))
	}

	// повторный Stop безопасен
	w.Stop()
}

func TestWorker_StopAbandonsInFlight(t *testing.T) {
	q := NewQueue(0)
	pub := &recordingPublisher{}
	w := NewWorker(q, pub, time.Millisecond, time.Hour, testLogger())

	q.Enqueue(pending("a", "1"))
	w.Start(context.Background())
	require.Eventually(t, func() bool {
		return q.List()[0].Status == StatusProcessing
	}, time.Second, time.Millisecond)

	w.Stop()
	assert.Equal(t, 0, pub.count())
	assert.Equal(t, StatusProcessing, q.List()[0].Status)
}
