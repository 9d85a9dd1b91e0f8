// Пакет memqueue — in-process очередь демонстрационных задач.
//
// Queue хранит задачи в памяти в порядке постановки; Worker раз в
// PollInterval забирает первую pending-задачу, через ProcessDelay
// помечает её completed и публикует событие worker:result.
// Очередь не персистентна: при рестарте задачи теряются.
package memqueue

import (
	"slices"
	"sync"
	"time"
)

// Status — состояние задачи.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// DefaultKeepCompleted — сколько завершённых задач хранится в очереди.
const DefaultKeepCompleted = 100

// Item — задача in-process очереди.
type Item struct {
	ID          string     `json:"id"`
	Data        string     `json:"data"`
	Status      Status     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Result      string     `json:"result,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Patch — частичное обновление задачи; nil-поля не меняются.
type Patch struct {
	Status      *Status
	Result      *string
	CompletedAt *time.Time
}

// Queue — потокобезопасная FIFO-очередь задач.
type Queue struct {
	mu            sync.Mutex
	items         []*Item
	keepCompleted int
}

// NewQueue создаёт очередь. keepCompleted <= 0 → DefaultKeepCompleted.
func NewQueue(keepCompleted int) *Queue {
	if keepCompleted <= 0 {
		keepCompleted = DefaultKeepCompleted
	}
	return &Queue{keepCompleted: keepCompleted}
}

// Enqueue добавляет задачу в конец очереди.
func (q *Queue) Enqueue(item Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	copied := item
	q.items = append(q.items, &copied)
	queueDepth.WithLabelValues(string(item.Status)).Inc()
}

// Dequeue находит первую pending-задачу, помечает её processing
// и возвращает копию. false — pending-задач нет.
func (q *Queue) Dequeue() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, it := range q.items {
		if it.Status == StatusPending {
			q.setStatus(it, StatusProcessing)
			return *it, true
		}
	}
	return Item{}, false
}

// List возвращает копию всех задач в порядке постановки.
func (q *Queue) List() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, len(q.items))
	for i, it := range q.items {
		out[i] = *it
	}
	return out
}

// Update применяет patch к задаче id. false — задача не найдена.
func (q *Queue) Update(id string, patch Patch) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.items, func(it *Item) bool { return it.ID == id })
	if idx < 0 {
		return false
	}
	it := q.items[idx]
	if patch.Status != nil {
		q.setStatus(it, *patch.Status)
	}
	if patch.Result != nil {
		it.Result = *patch.Result
	}
	if patch.CompletedAt != nil {
		t := *patch.CompletedAt
		it.CompletedAt = &t
	}
	if it.Status == StatusCompleted {
		q.pruneCompleted()
	}
	return true
}

// setStatus меняет статус и gauge глубины. Вызывается под q.mu.
func (q *Queue) setStatus(it *Item, status Status) {
	queueDepth.WithLabelValues(string(it.Status)).Dec()
	it.Status = status
	queueDepth.WithLabelValues(string(status)).Inc()
}

// pruneCompleted удаляет самые старые завершённые задачи сверх лимита.
// Вызывается под q.mu.
func (q *Queue) pruneCompleted() {
	completed := 0
	for _, it := range q.items {
		if it.Status == StatusCompleted {
			completed++
		}
	}
	excess := completed - q.keepCompleted
	if excess <= 0 {
		return
	}
	q.items = slices.DeleteFunc(q.items, func(it *Item) bool {
		if excess > 0 && it.Status == StatusCompleted {
			excess--
			queueDepth.WithLabelValues(string(StatusCompleted)).Dec()
			return true
		}
		return false
	})
}
