package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/presight/internal/events"
)

// Prometheus-метрики Redis-очереди.
var (
	jobsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_redisqueue_jobs_added_total",
		Help: "Количество задач, поставленных в Redis-очередь.",
	})
	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ps_redisqueue_jobs_finished_total",
		Help: "Количество попыток обработки задач Redis-очереди (по исходу).",
	}, []string{"outcome"})
	jobsRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_redisqueue_jobs_retried_total",
		Help: "Количество ручных retry упавших задач.",
	})
	jobsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_redisqueue_jobs_evicted_total",
		Help: "Количество задач, удалённых усечением completed/failed.",
	})
	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ps_redisqueue_job_duration_seconds",
		Help:    "Длительность обработки задачи Redis-очереди.",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// DefaultBlockTimeout — таймаут блокирующего ожидания задачи.
// go-redis округляет таймауты блокирующих команд до секунд.
const DefaultBlockTimeout = time.Second

// Processor обрабатывает задачу и возвращает результат.
type Processor func(ctx context.Context, job *Job) (string, error)

// DelayProcessor — обработчик по умолчанию: ждёт delay и возвращает
// "Processed: <data> at <RFC3339>".
func DelayProcessor(delay time.Duration) Processor {
	return func(ctx context.Context, job *Job) (string, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
		return fmt.Sprintf("Processed: %s at %s", job.Data, time.Now().UTC().Format(time.RFC3339Nano)), nil
	}
}

// WorkerOptions — параметры обработчика.
type WorkerOptions struct {
	// Concurrency — количество параллельных обработчиков (по умолчанию 1)
	Concurrency int
	// BlockTimeout — таймаут ожидания задачи в BLMOVE
	BlockTimeout time.Duration
}

// Worker — обработчик Redis-очереди.
type Worker struct {
	queue     *Queue
	process   Processor
	publisher events.Publisher
	opts      WorkerOptions
	logger    *slog.Logger
}

// NewWorker создаёт обработчик очереди.
func NewWorker(
	queue *Queue,
	process Processor,
	publisher events.Publisher,
	opts WorkerOptions,
	logger *slog.Logger,
) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.BlockTimeout <= 0 {
		opts.BlockTimeout = DefaultBlockTimeout
	}
	return &Worker{
		queue:     queue,
		process:   process,
		publisher: publisher,
		opts:      opts,
		logger: logger.With(
			slog.String("component", "redisqueue_worker"),
			slog.String("queue", queue.Name()),
		),
	}
}

// Run обрабатывает задачи до отмены ctx.
// Перед стартом возвращает в wait задачи, оставшиеся в active.
// Возвращает nil при отмене ctx.
func (w *Worker) Run(ctx context.Context) error {
	moved, err := w.queue.RequeueActive(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		w.logger.Warn("Незавершённые задачи возвращены в очередь", slog.Int("jobs", moved))
	}

	w.logger.Info("Обработчик Redis-очереди запущен", slog.Int("concurrency", w.opts.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	for range w.opts.Concurrency {
		g.Go(func() error { return w.loop(gctx) })
	}
	err = g.Wait()

	w.logger.Info("Обработчик Redis-очереди остановлен")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// loop забирает и обрабатывает задачи одну за другой.
func (w *Worker) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		id, err := w.queue.next(ctx, w.opts.BlockTimeout)
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("Ошибка получения задачи", slog.String("error", err.Error()))
			// пауза перед повтором при недоступном Redis
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.opts.BlockTimeout):
			}
			continue
		}

		w.handle(ctx, id)
	}
}

// handle выполняет одну попытку обработки задачи id.
func (w *Worker) handle(ctx context.Context, id string) {
	start := time.Now()
	logger := w.logger.With(slog.String("job_id", id))

	job, err := w.queue.start(ctx, id)
	if err != nil {
		logger.Error("Ошибка старта задачи", slog.String("error", err.Error()))
		return
	}
	logger.Debug("Задача в обработке", slog.Int("attempt", job.AttemptsMade))

	result, procErr := w.safeProcess(ctx, job)
	if ctx.Err() != nil {
		// остановка: задача останется в active и вернётся в wait при следующем Run
		logger.Info("Обработка прервана остановкой")
		return
	}
	jobDuration.Observe(time.Since(start).Seconds())

	if procErr == nil {
		if err := w.queue.complete(ctx, id, result); err != nil {
			logger.Error("Ошибка завершения задачи", slog.String("error", err.Error()))
			return
		}
		jobsFinished.WithLabelValues("completed").Inc()
		w.publisher.Publish(events.EventWorkerResult, events.WorkerResult{
			RequestID:   id,
			Result:      result,
			Status:      string(StatusCompleted),
			CompletedAt: time.Now(),
		})
		logger.Info("Задача завершена")
		return
	}

	willRetry, err := w.queue.fail(ctx, job, procErr.Error())
	if err != nil {
		logger.Error("Ошибка сохранения сбоя задачи", slog.String("error", err.Error()))
		return
	}
	outcome := "failed"
	if willRetry {
		outcome = "retried"
	}
	jobsFinished.WithLabelValues(outcome).Inc()

	w.publisher.Publish(events.EventWorkerError, events.WorkerError{
		RequestID:    id,
		Error:        procErr.Error(),
		Status:       string(StatusFailed),
		FailedAt:     time.Now(),
		AttemptsMade: job.AttemptsMade,
		WillRetry:    willRetry,
	})
	logger.Warn("Задача завершилась ошибкой",
		slog.String("error", procErr.Error()),
		slog.Int("attempt", job.AttemptsMade),
		slog.Bool("will_retry", willRetry),
	)
}

// safeProcess вызывает Processor, превращая панику в ошибку.
func (w *Worker) safeProcess(ctx context.Context, job *Job) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника обработчика: %v", r)
		}
	}()
	return w.process(ctx, job)
}
