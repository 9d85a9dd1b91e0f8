// users.go — сервис листинга пользователей.
// Координирует репозиторий датасета, конвейер listing, кэш опций фильтров
// и Prometheus-метрики.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/presight/internal/domain/listing"
	"github.com/bigkaa/presight/internal/domain/model"
	"github.com/bigkaa/presight/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrDatasetNotReady — датасет ещё не сгенерирован.
	ErrDatasetNotReady = errors.New("датасет пользователей не готов")
)

// Prometheus-метрики листинга.
var (
	listTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_list_requests_total",
		Help: "Общее количество запросов листинга пользователей.",
	})
	listFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_list_failures_total",
		Help: "Количество листингов, завершившихся failure-ответом.",
	})
	listDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ps_list_duration_seconds",
		Help:    "Длительность конвейера filter → sort → paginate.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})
	datasetUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ps_dataset_users",
		Help: "Количество пользователей в текущем датасете.",
	})
	datasetGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ps_dataset_generation",
		Help: "Поколение текущего датасета.",
	})
)

// UserService — листинг пользователей, опции фильтров и регенерация датасета.
type UserService struct {
	repo   repository.UserRepository
	cache  *FilterOptionsCache
	topN   int
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
// topN — количество значений в опциях фильтров (<= 0 → 20).
func NewUserService(
	repo repository.UserRepository,
	cache *FilterOptionsCache,
	topN int,
	logger *slog.Logger,
) *UserService {
	if topN <= 0 {
		topN = listing.DefaultTopN
	}
	return &UserService{
		repo:   repo,
		cache:  cache,
		topN:   topN,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List выполняет filter → sort → paginate над текущим снимком датасета.
// Некорректные sort/order/page/limit заменяются значениями по умолчанию.
// Не возвращает ошибок: любой сбой конвейера (включая panic)
// превращается в failure-ответ с пустыми данными и нулевыми итогами.
func (s *UserService) List(ctx context.Context, filter model.UserFilter) (result *model.UserList) {
	start := time.Now()
	listTotal.Inc()
	filter = filter.Normalize()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Паника в конвейере листинга",
				slog.Any("panic", r),
			)
			result = failureList(filter)
		}
		if !result.Success {
			listFailuresTotal.Inc()
		}
		listDuration.Observe(time.Since(start).Seconds())
	}()

	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения датасета", slog.String("error", err.Error()))
		return failureList(filter)
	}

	filtered := listing.Filter(snap.Users, filter)
	sorted := listing.Sort(filtered, filter.Sort, filter.Order)
	page, meta := listing.Paginate(sorted, filter.Page, filter.Limit)

	s.logger.Debug("Листинг выполнен",
		slog.Int("total", meta.Total),
		slog.Int("returned", len(page)),
		slog.String("sort", string(filter.Sort)),
		slog.String("order", string(filter.Order)),
	)

	return &model.UserList{
		Success:  true,
		Data:     page,
		Metadata: meta,
	}
}

// FilterOptions возвращает частоты национальностей и хобби по всему датасету.
// Результат кэшируется до следующей регенерации.
func (s *UserService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotReady) {
			return nil, ErrDatasetNotReady
		}
		return nil, fmt.Errorf("получение датасета: %w", err)
	}

	return s.cache.GetOrCompute(snap.Generation, func() *model.FilterOptions {
		s.logger.Debug("Вычисление опций фильтров", slog.Uint64("generation", snap.Generation))
		return listing.BuildFilterOptions(snap.Users, s.topN)
	}), nil
}

// Regenerate заменяет датасет новым и сбрасывает кэш опций фильтров.
func (s *UserService) Regenerate(ctx context.Context) (repository.Snapshot, error) {
	snap, err := s.repo.Regenerate(ctx)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("регенерация датасета: %w", err)
	}
	s.cache.Invalidate(snap.Generation)
	ObserveDataset(snap)

	s.logger.Info("Датасет регенерирован",
		slog.Int("users", len(snap.Users)),
		slog.Uint64("generation", snap.Generation),
	)
	return snap, nil
}

// IsReady — датасет загружен (для readiness probe).
func (s *UserService) IsReady() bool {
	return s.repo.IsReady()
}

// ObserveDataset обновляет gauge-метрики датасета.
func ObserveDataset(snap repository.Snapshot) {
	datasetUsers.Set(float64(len(snap.Users)))
	datasetGeneration.Set(float64(snap.Generation))
}

// failureList — failure-ответ листинга.
func failureList(filter model.UserFilter) *model.UserList {
	return &model.UserList{
		Success: false,
		Data:    []*model.User{},
		Metadata: model.PageMetadata{
			Page:  filter.Page,
			Limit: filter.Limit,
		},
	}
}
