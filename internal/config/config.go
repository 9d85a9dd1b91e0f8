// Пакет config — загрузка и валидация конфигурации сервиса
// из переменных окружения (префикс PS_).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// ServiceName — имя сервиса в health-ответах и метриках зависимостей.
const ServiceName = "presight"

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int `env:"PS_PORT" env-default:"3001"`
	// Уровень логирования (debug, info, warn, error)
	LogLevelName string `env:"PS_LOG_LEVEL" env-default:"info"`
	// Формат логов (json, text)
	LogFormat string `env:"PS_LOG_FORMAT" env-default:"json"`
	// LogLevel — разобранный LogLevelName, заполняется в Validate
	LogLevel slog.Level

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера
	HTTPReadTimeout time.Duration `env:"PS_HTTP_READ_TIMEOUT" env-default:"30s"`
	// Таймаут записи HTTP-сервера (стриминг снимает его для своего ответа)
	HTTPWriteTimeout time.Duration `env:"PS_HTTP_WRITE_TIMEOUT" env-default:"60s"`
	// Таймаут простоя HTTP-сервера
	HTTPIdleTimeout time.Duration `env:"PS_HTTP_IDLE_TIMEOUT" env-default:"120s"`

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration `env:"PS_SHUTDOWN_TIMEOUT" env-default:"5s"`

	// --- Датасет ---

	// Размер генерируемого датасета
	UsersCount int `env:"PS_USERS_COUNT" env-default:"1000"`
	// Максимум хобби у пользователя
	MaxHobbies int `env:"PS_MAX_HOBBIES" env-default:"10"`
	// Seed генератора (0 — случайный)
	FakerSeed uint64 `env:"PS_FAKER_SEED" env-default:"0"`
	// Сколько самых частых значений отдаёт /api/filters
	FilterOptionsLimit int `env:"PS_FILTER_OPTIONS_LIMIT" env-default:"20"`

	// --- Стриминг ---

	// Пауза между символами
	StreamDelay time.Duration `env:"PS_STREAM_DELAY" env-default:"15ms"`
	// Количество абзацев текста
	StreamParagraphs int `env:"PS_STREAM_PARAGRAPHS" env-default:"32"`

	// --- In-process очередь ---

	// Период опроса очереди
	WorkerPollInterval time.Duration `env:"PS_WORKER_POLL_INTERVAL" env-default:"1s"`
	// Время обработки одной задачи
	WorkerProcessDelay time.Duration `env:"PS_WORKER_PROCESS_DELAY" env-default:"2s"`

	// --- Лимит постановки задач ---

	// Скорость пополнения (задач в секунду на клиента)
	SubmitRate float64 `env:"PS_SUBMIT_RATE" env-default:"20"`
	// Размер всплеска
	SubmitBurst int `env:"PS_SUBMIT_BURST" env-default:"40"`

	Redis     RedisConfig
	CORS      CORSConfig
	Dephealth DephealthConfig
}

// RedisConfig — подключение к Redis и параметры Redis-очереди.
type RedisConfig struct {
	// Enabled — false отключает Redis-очередь (эндпоинты отвечают 503)
	Enabled  bool   `env:"PS_REDIS_ENABLED" env-default:"true"`
	Addr     string `env:"PS_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"PS_REDIS_PASSWORD"`
	DB       int    `env:"PS_REDIS_DB" env-default:"0"`
	// Queue — имя очереди
	Queue         string `env:"PS_REDIS_QUEUE" env-default:"tasks"`
	Attempts      int    `env:"PS_REDIS_ATTEMPTS" env-default:"3"`
	KeepCompleted int    `env:"PS_REDIS_KEEP_COMPLETED" env-default:"100"`
	KeepFailed    int    `env:"PS_REDIS_KEEP_FAILED" env-default:"100"`
	Concurrency   int    `env:"PS_REDIS_CONCURRENCY" env-default:"1"`
}

// CORSConfig — параметры CORS.
type CORSConfig struct {
	AllowedOrigins   string `env:"PS_CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods   string `env:"PS_CORS_ALLOWED_METHODS" env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `env:"PS_CORS_ALLOWED_HEADERS" env-default:"Content-Type,Authorization"`
	AllowCredentials bool   `env:"PS_CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `env:"PS_CORS_MAX_AGE" env-default:"86400"`
}

// DephealthConfig — мониторинг зависимостей (topologymetrics).
type DephealthConfig struct {
	Group         string        `env:"PS_DEPHEALTH_GROUP" env-default:"presight"`
	CheckInterval time.Duration `env:"PS_DEPHEALTH_CHECK_INTERVAL" env-default:"15s"`
}

// Load загружает конфигурацию из переменных окружения и валидирует её.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("чтение переменных окружения: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения и заполняет производные поля (LogLevel).
// Возвращает все найденные ошибки одной ошибкой.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Port >= 1 && c.Port <= 65535, "PS_PORT: порт вне диапазона 1-65535: %d", c.Port)

	level, err := parseLogLevel(c.LogLevelName)
	if err != nil {
		errs = append(errs, fmt.Errorf("PS_LOG_LEVEL: %w", err))
	}
	c.LogLevel = level

	check(c.LogFormat == "json" || c.LogFormat == "text",
		"PS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", c.LogFormat)

	check(c.HTTPReadTimeout > 0, "PS_HTTP_READ_TIMEOUT: значение должно быть > 0")
	check(c.HTTPWriteTimeout > 0, "PS_HTTP_WRITE_TIMEOUT: значение должно быть > 0")
	check(c.HTTPIdleTimeout > 0, "PS_HTTP_IDLE_TIMEOUT: значение должно быть > 0")
	check(c.ShutdownTimeout > 0, "PS_SHUTDOWN_TIMEOUT: значение должно быть > 0")

	check(c.UsersCount >= 0, "PS_USERS_COUNT: значение должно быть >= 0")
	check(c.MaxHobbies >= 1, "PS_MAX_HOBBIES: значение должно быть >= 1")
	check(c.FilterOptionsLimit >= 1, "PS_FILTER_OPTIONS_LIMIT: значение должно быть >= 1")

	check(c.StreamDelay >= 0, "PS_STREAM_DELAY: значение должно быть >= 0")
	check(c.StreamParagraphs >= 1, "PS_STREAM_PARAGRAPHS: значение должно быть >= 1")

	check(c.WorkerPollInterval > 0, "PS_WORKER_POLL_INTERVAL: значение должно быть > 0")
	check(c.WorkerProcessDelay >= 0, "PS_WORKER_PROCESS_DELAY: значение должно быть >= 0")

	check(c.SubmitRate > 0, "PS_SUBMIT_RATE: значение должно быть > 0")
	check(c.SubmitBurst >= 1, "PS_SUBMIT_BURST: значение должно быть >= 1")

	if c.Redis.Enabled {
		check(c.Redis.Addr != "", "PS_REDIS_ADDR: обязателен при PS_REDIS_ENABLED=true")
		check(c.Redis.DB >= 0, "PS_REDIS_DB: значение должно быть >= 0")
		check(c.Redis.Queue != "", "PS_REDIS_QUEUE: имя очереди не может быть пустым")
		check(c.Redis.Attempts >= 1, "PS_REDIS_ATTEMPTS: значение должно быть >= 1")
		check(c.Redis.KeepCompleted >= 1, "PS_REDIS_KEEP_COMPLETED: значение должно быть >= 1")
		check(c.Redis.KeepFailed >= 1, "PS_REDIS_KEEP_FAILED: значение должно быть >= 1")
		check(c.Redis.Concurrency >= 1, "PS_REDIS_CONCURRENCY: значение должно быть >= 1")
		check(c.Dephealth.CheckInterval > 0, "PS_DEPHEALTH_CHECK_INTERVAL: значение должно быть > 0")
	}

	check(c.CORS.MaxAge >= 0, "PS_CORS_MAX_AGE: значение должно быть >= 0")

	return errors.Join(errs...)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
