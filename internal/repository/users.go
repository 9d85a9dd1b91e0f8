package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryRepository — потокобезопасная in-memory реализация UserRepository.
// Новый датасет строится вне блокировки и подменяется целиком,
// поэтому читатель никогда не видит частично собранный снимок.
type MemoryRepository struct {
	mu       sync.RWMutex
	source   Source
	size     int
	snapshot Snapshot
	ready    bool
	regenMu  sync.Mutex // сериализует регенерации
	logger   *slog.Logger
}

// NewUserRepository создаёт репозиторий на size записей.
// Датасет пуст до первого вызова Load или Regenerate.
func NewUserRepository(source Source, size int, logger *slog.Logger) *MemoryRepository {
	return &MemoryRepository{
		source: source,
		size:   size,
		logger: logger.With(slog.String("component", "user_repository")),
	}
}

// Load генерирует начальный датасет. Вызывается при старте.
func (r *MemoryRepository) Load(ctx context.Context) error {
	_, err := r.Regenerate(ctx)
	return err
}

// Snapshot возвращает текущий снимок датасета.
func (r *MemoryRepository) Snapshot(_ context.Context) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		return Snapshot{}, ErrNotReady
	}
	return r.snapshot, nil
}

// Regenerate строит новый датасет и атомарно подменяет текущий.
func (r *MemoryRepository) Regenerate(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	r.regenMu.Lock()
	defer r.regenMu.Unlock()

	start := time.Now()
	users := r.source.Generate(r.size)

	r.mu.Lock()
	r.snapshot = Snapshot{
		Users:      users,
		Generation: r.snapshot.Generation + 1,
	}
	r.ready = true
	snap := r.snapshot
	r.mu.Unlock()

	r.logger.Info("Датасет пользователей сгенерирован",
		slog.Int("users", len(users)),
		slog.Uint64("generation", snap.Generation),
		slog.Duration("duration", time.Since(start)),
	)
	return snap, nil
}

// IsReady возвращает true, если датасет сгенерирован.
func (r *MemoryRepository) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}
