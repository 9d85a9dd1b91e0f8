// Пакет redisqueue — очередь демонстрационных задач в Redis (go-redis).
//
// Раскладка ключей для очереди <name>:
//
//	presight:<name>:wait       — list ожидающих id (LPUSH, забираются справа)
//	presight:<name>:active     — list id в обработке (reliable queue, BLMOVE)
//	presight:<name>:completed  — list завершённых id, новые слева, усечён до KeepCompleted
//	presight:<name>:failed     — list упавших id, новые слева, усечён до KeepFailed
//	presight:<name>:job:<id>   — hash задачи
//
// Hash задачи удаляется вместе с усечением списков completed/failed.
// Неудачная попытка ниже лимита Attempts возвращает задачу в wait.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ошибки очереди.
var (
	// ErrJobNotFound — задача не найдена.
	ErrJobNotFound = errors.New("задача не найдена")
	// ErrJobExists — задача с таким id уже существует.
	ErrJobExists = errors.New("задача уже существует")
)

// Status — состояние задачи, как его видит клиент API.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Значения по умолчанию.
const (
	DefaultName          = "tasks"
	DefaultAttempts      = 3
	DefaultKeepCompleted = 100
	DefaultKeepFailed    = 100
	keyPrefix            = "presight"
)

// Поля hash задачи.
const (
	fieldID          = "id"
	fieldData        = "data"
	fieldStatus      = "status"
	fieldTimestamp   = "timestamp"
	fieldAttempts    = "attemptsMade"
	fieldMaxAttempts = "maxAttempts"
	fieldResult      = "result"
	fieldError       = "error"
	fieldProcessedOn = "processedOn"
	fieldFinishedOn  = "finishedOn"
)

// Job — задача Redis-очереди.
type Job struct {
	ID           string     `json:"id"`
	Data         string     `json:"data"`
	Status       Status     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
	AttemptsMade int        `json:"attemptsMade"`
	Result       string     `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
	ProcessedOn  *time.Time `json:"processedOn,omitempty"`
	FinishedOn   *time.Time `json:"finishedOn,omitempty"`
}

// Options — параметры очереди.
type Options struct {
	// Name — имя очереди (по умолчанию "tasks")
	Name string
	// Attempts — максимальное количество попыток обработки
	Attempts int
	// KeepCompleted — сколько завершённых задач хранить
	KeepCompleted int
	// KeepFailed — сколько упавших задач хранить
	KeepFailed int
}

type keys struct {
	wait, active, completed, failed string
	jobPrefix                       string
}

func (k keys) job(id string) string { return k.jobPrefix + id }

// Queue — очередь задач в Redis.
type Queue struct {
	client redis.UniversalClient
	opts   Options
	keys   keys
	now    func() time.Time
}

// New создаёт очередь поверх клиента go-redis.
func New(client redis.UniversalClient, opts Options) *Queue {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.KeepCompleted <= 0 {
		opts.KeepCompleted = DefaultKeepCompleted
	}
	if opts.KeepFailed <= 0 {
		opts.KeepFailed = DefaultKeepFailed
	}

	base := keyPrefix + ":" + opts.Name + ":"
	return &Queue{
		client: client,
		opts:   opts,
		keys: keys{
			wait:      base + "wait",
			active:    base + "active",
			completed: base + "completed",
			failed:    base + "failed",
			jobPrefix: base + "job:",
		},
		now: time.Now,
	}
}

// Name возвращает имя очереди.
func (q *Queue) Name() string { return q.opts.Name }

// Ping проверяет доступность Redis (readiness probe).
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Add ставит задачу id с данными data в очередь.
func (q *Queue) Add(ctx context.Context, id, data string) (*Job, error) {
	jobKey := q.keys.job(id)

	exists, err := q.client.Exists(ctx, jobKey).Result()
	if err != nil {
		return nil, fmt.Errorf("проверка задачи %s: %w", id, err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrJobExists, id)
	}

	now := q.now()
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobKey,
			fieldID, id,
			fieldData, data,
			fieldStatus, string(StatusPending),
			fieldTimestamp, now.UnixMilli(),
			fieldAttempts, 0,
			fieldMaxAttempts, q.opts.Attempts,
		)
		pipe.LPush(ctx, q.keys.wait, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("постановка задачи %s: %w", id, err)
	}
	jobsAdded.Inc()

	return &Job{
		ID:        id,
		Data:      data,
		Status:    StatusPending,
		Timestamp: time.UnixMilli(now.UnixMilli()),
	}, nil
}

// Job возвращает задачу по id или ErrJobNotFound.
func (q *Queue) Job(ctx context.Context, id string) (*Job, error) {
	fields, err := q.client.HGetAll(ctx, q.keys.job(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("получение задачи %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrJobNotFound
	}
	return parseJob(fields), nil
}

// Jobs возвращает задачи всех состояний: ожидающие (в порядке обработки),
// активные, завершённые и упавшие (новые первыми).
func (q *Queue) Jobs(ctx context.Context) ([]*Job, error) {
	var waitCmd, activeCmd, completedCmd, failedCmd *redis.StringSliceCmd
	_, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		waitCmd = pipe.LRange(ctx, q.keys.wait, 0, -1)
		activeCmd = pipe.LRange(ctx, q.keys.active, 0, -1)
		completedCmd = pipe.LRange(ctx, q.keys.completed, 0, -1)
		failedCmd = pipe.LRange(ctx, q.keys.failed, 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("чтение списков очереди: %w", err)
	}

	// wait заполняется слева и читается справа
	waiting := waitCmd.Val()
	slices.Reverse(waiting)
	active := activeCmd.Val()
	slices.Reverse(active)

	ids := slices.Concat(waiting, active, completedCmd.Val(), failedCmd.Val())
	if len(ids) == 0 {
		return []*Job{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, q.keys.job(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("чтение задач: %w", err)
	}

	jobs := make([]*Job, 0, len(ids))
	for _, cmd := range cmds {
		// hash мог быть удалён усечением между двумя чтениями
		if fields := cmd.Val(); len(fields) > 0 {
			jobs = append(jobs, parseJob(fields))
		}
	}
	return jobs, nil
}

// Retry возвращает упавшую задачу в очередь со сброшенным счётчиком попыток.
// false — задача не найдена или не в состоянии failed.
func (q *Queue) Retry(ctx context.Context, id string) (bool, error) {
	// LREM атомарен: из нескольких конкурентных Retry выигрывает один
	removed, err := q.client.LRem(ctx, q.keys.failed, 1, id).Result()
	if err != nil {
		return false, fmt.Errorf("retry задачи %s: %w", id, err)
	}
	if removed == 0 {
		return false, nil
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.keys.job(id),
			fieldStatus, string(StatusPending),
			fieldAttempts, 0,
		)
		pipe.HDel(ctx, q.keys.job(id), fieldError, fieldProcessedOn, fieldFinishedOn)
		pipe.LPush(ctx, q.keys.wait, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("retry задачи %s: %w", id, err)
	}
	jobsRetried.Inc()
	return true, nil
}

// RequeueActive возвращает все задачи из active в wait.
// Вызывается при старте обработчика: задачи, прерванные остановкой
// процесса, обрабатываются заново.
func (q *Queue) RequeueActive(ctx context.Context) (int, error) {
	moved := 0
	for {
		id, err := q.client.LMove(ctx, q.keys.active, q.keys.wait, "RIGHT", "RIGHT").Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("возврат активных задач: %w", err)
		}
		if err := q.client.HSet(ctx, q.keys.job(id), fieldStatus, string(StatusPending)).Err(); err != nil {
			return moved, fmt.Errorf("возврат активных задач: %w", err)
		}
		moved++
	}
}

// next блокирующе забирает следующий id из wait в active.
// Возвращает redis.Nil по истечении timeout.
func (q *Queue) next(ctx context.Context, timeout time.Duration) (string, error) {
	return q.client.BLMove(ctx, q.keys.wait, q.keys.active, "RIGHT", "LEFT", timeout).Result()
}

// start отмечает начало попытки и возвращает задачу.
func (q *Queue) start(ctx context.Context, id string) (*Job, error) {
	now := q.now()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, q.keys.job(id), fieldAttempts, 1)
		pipe.HSet(ctx, q.keys.job(id),
			fieldStatus, string(StatusProcessing),
			fieldProcessedOn, now.UnixMilli(),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("старт задачи %s: %w", id, err)
	}
	return q.Job(ctx, id)
}

// complete переносит задачу из active в completed.
func (q *Queue) complete(ctx context.Context, id, result string) error {
	now := q.now()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.keys.active, 1, id)
		pipe.HSet(ctx, q.keys.job(id),
			fieldStatus, string(StatusCompleted),
			fieldResult, result,
			fieldFinishedOn, now.UnixMilli(),
		)
		pipe.HDel(ctx, q.keys.job(id), fieldError)
		pipe.LPush(ctx, q.keys.completed, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("завершение задачи %s: %w", id, err)
	}
	return q.trim(ctx, q.keys.completed, q.opts.KeepCompleted)
}

// fail обрабатывает неудачную попытку. Возвращает true, если задача
// возвращена в wait для следующей попытки.
func (q *Queue) fail(ctx context.Context, job *Job, reason string) (bool, error) {
	retry := job.AttemptsMade < q.opts.Attempts
	now := q.now()

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.keys.active, 1, job.ID)
		if retry {
			pipe.HSet(ctx, q.keys.job(job.ID),
				fieldStatus, string(StatusPending),
				fieldError, reason,
			)
			pipe.LPush(ctx, q.keys.wait, job.ID)
			return nil
		}
		pipe.HSet(ctx, q.keys.job(job.ID),
			fieldStatus, string(StatusFailed),
			fieldError, reason,
			fieldFinishedOn, now.UnixMilli(),
		)
		pipe.LPush(ctx, q.keys.failed, job.ID)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("обработка ошибки задачи %s: %w", job.ID, err)
	}
	if retry {
		return true, nil
	}
	return false, q.trim(ctx, q.keys.failed, q.opts.KeepFailed)
}

// trim усекает список до keep новейших id и удаляет hash вытесненных задач.
func (q *Queue) trim(ctx context.Context, list string, keep int) error {
	var evictedCmd *redis.StringSliceCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		evictedCmd = pipe.LRange(ctx, list, int64(keep), -1)
		pipe.LTrim(ctx, list, 0, int64(keep-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("усечение %s: %w", list, err)
	}

	evicted := evictedCmd.Val()
	if len(evicted) == 0 {
		return nil
	}
	jobKeys := make([]string, len(evicted))
	for i, id := range evicted {
		jobKeys[i] = q.keys.job(id)
	}
	if err := q.client.Del(ctx, jobKeys...).Err(); err != nil {
		return fmt.Errorf("удаление вытесненных задач: %w", err)
	}
	jobsEvicted.Add(float64(len(evicted)))
	return nil
}

// parseJob собирает Job из полей hash.
func parseJob(fields map[string]string) *Job {
	job := &Job{
		ID:     fields[fieldID],
		Data:   fields[fieldData],
		Status: Status(fields[fieldStatus]),
		Result: fields[fieldResult],
		Error:  fields[fieldError],
	}
	if ms, err := strconv.ParseInt(fields[fieldTimestamp], 10, 64); err == nil {
		job.Timestamp = time.UnixMilli(ms)
	}
	if n, err := strconv.Atoi(fields[fieldAttempts]); err == nil {
		job.AttemptsMade = n
	}
	job.ProcessedOn = parseMillis(fields[fieldProcessedOn])
	job.FinishedOn = parseMillis(fields[fieldFinishedOn])
	return job
}

func parseMillis(s string) *time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}
