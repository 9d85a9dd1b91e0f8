package memqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/presight/internal/events"
)

// Prometheus-метрики in-process очереди.
var (
	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ps_memqueue_jobs",
		Help: "Количество задач in-process очереди (по состоянию).",
	}, []string{"status"})

	jobsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_memqueue_jobs_processed_total",
		Help: "Количество обработанных задач in-process очереди.",
	})
)

// Worker — фоновый обработчик in-process очереди.
// Каждый тик забирает не более одной задачи; обработка задачи идёт
// в отдельной горутине, поэтому задачи могут обрабатываться параллельно.
type Worker struct {
	queue        *Queue
	publisher    events.Publisher
	pollInterval time.Duration
	processDelay time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker создаёт обработчик очереди.
func NewWorker(
	queue *Queue,
	publisher events.Publisher,
	pollInterval time.Duration,
	processDelay time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		queue:        queue,
		publisher:    publisher,
		pollInterval: pollInterval,
		processDelay: processDelay,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "memqueue_worker")),
	}
}

// Start запускает фоновый цикл опроса очереди.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(workerCtx)

	w.logger.Info("Обработчик in-process очереди запущен",
		slog.String("poll_interval", w.pollInterval.String()),
		slog.String("process_delay", w.processDelay.String()),
	)
}

// Stop останавливает цикл и ждёт завершения задач в обработке.
// Задачи, не дождавшиеся ProcessDelay, остаются в состоянии processing.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
	w.logger.Info("Обработчик in-process очереди остановлен")
}

// run — основной цикл опроса.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick забирает одну pending-задачу и запускает её обработку.
// Возвращает false, если pending-задач нет.
func (w *Worker) Tick(ctx context.Context) bool {
	item, ok := w.queue.Dequeue()
	if !ok {
		return false
	}

	w.logger.Debug("Задача взята в обработку", slog.String("request_id", item.ID))

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.process(ctx, item)
	}()
	return true
}

// process имитирует обработку: ждёт processDelay, помечает задачу
// completed и публикует результат.
func (w *Worker) process(ctx context.Context, item Item) {
	timer := time.NewTimer(w.processDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	completedAt := w.now()
	result := fmt.Sprintf("Processed request %s: %s at %s",
		item.ID, item.Data, completedAt.UTC().Format(time.RFC3339Nano))
	status := StatusCompleted

	w.queue.Update(item.ID, Patch{
		Status:      &status,
		Result:      &result,
		CompletedAt: &completedAt,
	})
	jobsProcessed.Inc()

	w.publisher.Publish(events.EventWorkerResult, events.WorkerResult{
		RequestID:   item.ID,
		Result:      result,
		Status:      string(StatusCompleted),
		CompletedAt: completedAt,
	})

	w.logger.Info("Задача обработана", slog.String("request_id", item.ID))
}
