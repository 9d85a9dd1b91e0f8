// Точка входа сервиса каталога пользователей Presight.
// Загружает конфигурацию, генерирует датасет, создаёт сервисный слой,
// запускает обработчики очередей (in-process и Redis), websocket-хаб,
// мониторинг зависимостей и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/presight/internal/api/handlers"
	"github.com/bigkaa/presight/internal/api/middleware"
	"github.com/bigkaa/presight/internal/config"
	"github.com/bigkaa/presight/internal/events"
	"github.com/bigkaa/presight/internal/jobs/memqueue"
	"github.com/bigkaa/presight/internal/jobs/redisqueue"
	"github.com/bigkaa/presight/internal/mockdata"
	"github.com/bigkaa/presight/internal/repository"
	"github.com/bigkaa/presight/internal/server"
	"github.com/bigkaa/presight/internal/service"
)

// readinessTimeout — таймаут ping Redis в readiness probe.
const readinessTimeout = 2 * time.Second

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Presight запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Генерация датасета
	generator := mockdata.New(mockdata.Options{
		Seed:       cfg.FakerSeed,
		MaxHobbies: cfg.MaxHobbies,
	})
	userRepo := repository.NewUserRepository(generator, cfg.UsersCount, logger)
	if err := userRepo.Load(ctx); err != nil {
		logger.Error("Ошибка генерации датасета", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Services
	filterCache := service.NewFilterOptionsCache(0)
	userSvc := service.NewUserService(userRepo, filterCache, cfg.FilterOptionsLimit, logger)
	if snap, err := userRepo.Snapshot(ctx); err == nil {
		service.ObserveDataset(snap)
	}
	streamSvc := service.NewStreamService(generator, cfg.StreamParagraphs, cfg.StreamDelay, logger)

	// 5. Websocket-хаб событий обработчиков
	hub := events.NewHub(logger)

	// 6. In-process очередь
	workQueue := memqueue.NewQueue(memqueue.DefaultKeepCompleted)
	memWorker := memqueue.NewWorker(workQueue, hub, cfg.WorkerPollInterval, cfg.WorkerProcessDelay, logger)
	memWorker.Start(ctx)

	// 7. Redis-очередь (опционально, PS_REDIS_ENABLED)
	checkers := map[string]handlers.ReadinessChecker{
		"dataset": handlers.DatasetChecker(userSvc.IsReady),
	}
	var (
		redisJobs    handlers.RedisQueue
		redisClient  *redis.Client
		dephealthSvc *service.DephealthService
		workersWG    sync.WaitGroup
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		queue := redisqueue.New(redisClient, redisqueue.Options{
			Name:          cfg.Redis.Queue,
			Attempts:      cfg.Redis.Attempts,
			KeepCompleted: cfg.Redis.KeepCompleted,
			KeepFailed:    cfg.Redis.KeepFailed,
		})
		if err := queue.Ping(ctx); err != nil {
			logger.Warn("Redis недоступен при старте, обработчик будет повторять подключение",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		}
		redisJobs = queue
		checkers["redis"] = handlers.RedisChecker(queue.Ping, readinessTimeout)

		redisWorker := redisqueue.NewWorker(queue, redisqueue.DelayProcessor(cfg.WorkerProcessDelay), hub,
			redisqueue.WorkerOptions{Concurrency: cfg.Redis.Concurrency}, logger)
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			runRedisWorker(ctx, redisWorker, logger)
		}()

		// 7.1 topologymetrics — мониторинг Redis
		dephealthSvc, err = service.NewDephealthService(
			config.ServiceName,
			cfg.Dephealth.Group,
			redisClient,
			cfg.Redis.Addr,
			cfg.Redis.DB,
			cfg.Dephealth.CheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
			dephealthSvc = nil
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.Dephealth.Group),
				slog.String("check_interval", cfg.Dephealth.CheckInterval.String()),
			)
		}
	} else {
		logger.Info("Redis-очередь отключена (PS_REDIS_ENABLED=false)")
	}

	// 8. API handlers
	healthHandler := handlers.NewHealthHandler(checkers)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		userSvc,
		streamSvc,
		workQueue,
		redisJobs,
		hub,
		logger,
	)

	// 9. Middleware
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRate, cfg.SubmitBurst, time.Minute)
	defer submitLimiter.Stop()

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, submitLimiter.Middleware(),
		middleware.Recovery(logger),
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS),
	)
	srv.RegisterOnShutdown(hub.Close)

	runErr := srv.Run(ctx)
	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
	}

	// 11. Graceful shutdown фоновых задач
	logger.Info("Останавливаем фоновые задачи...")
	cancel()
	memWorker.Stop()
	workersWG.Wait()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			logger.Warn("Ошибка закрытия Redis-клиента", slog.String("error", err.Error()))
		}
	}

	submitLimiter.Stop()

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("Presight остановлен")
}

// runRedisWorker запускает обработчик Redis-очереди и перезапускает его
// с паузой, пока Redis недоступен.
func runRedisWorker(ctx context.Context, w *redisqueue.Worker, logger *slog.Logger) {
	const retryDelay = 5 * time.Second
	for {
		err := w.Run(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		logger.Warn("Обработчик Redis-очереди упал, перезапуск",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", retryDelay),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}
