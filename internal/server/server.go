// Пакет server — HTTP-сервер сервиса с graceful shutdown.
// Без TLS — TLS termination на ingress / reverse proxy.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/presight/internal/config"
)

// Server — HTTP-сервер сервиса.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config

	// baseCtx — родительский контекст всех запросов, отменяется,
	// если graceful shutdown не уложился в ShutdownTimeout.
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// submit — middleware для эндпоинтов постановки задач (rate limit), может быть nil.
// middlewares — общие middleware, добавляются в порядке переданного среза.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	handler ServerInterface,
	submit func(http.Handler) http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) *Server {
	router := chi.NewRouter()

	for _, mw := range middlewares {
		router.Use(mw)
	}

	HandlerFromMux(handler, router, submit)

	baseCtx, baseCancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "http_server")),
		cfg:        cfg,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}

// Handler возвращает корневой обработчик (роутер с middleware).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// RegisterOnShutdown регистрирует функцию, вызываемую при graceful shutdown.
// Shutdown не ждёт hijacked-соединения (websocket), их закрывает f.
func (s *Server) RegisterOnShutdown(f func()) {
	s.httpServer.RegisterOnShutdown(f)
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM)
// или отмены ctx. После этого выполняется graceful shutdown.
// Запросы, не завершившиеся за ShutdownTimeout (текстовые стримы),
// прерываются отменой их контекста; это не считается ошибкой.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.baseCancel()
		return fmt.Errorf("ошибка HTTP-сервера: %w", err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	defer s.baseCancel()

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", ln.Addr().String()),
		)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	err := s.httpServer.Shutdown(shutdownCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("Graceful shutdown не уложился в таймаут, прерываем активные запросы",
			slog.Duration("timeout", s.cfg.ShutdownTimeout),
		)
		s.baseCancel()
		if err := s.httpServer.Close(); err != nil {
			s.logger.Warn("Ошибка принудительного закрытия", slog.String("error", err.Error()))
		}
	case err != nil:
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
