// stream.go — сервис потоковой отдачи текста.
// Текст отдаётся по одному символу (руне) с паузой между записями,
// каждая запись сбрасывается клиенту через http.ResponseController.
// Отключение клиента (отмена контекста) прерывает поток.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики streaming.
var (
	streamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ps_streams_total",
		Help: "Общее количество потоков текста (по статусу завершения).",
	}, []string{"status"})

	streamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ps_stream_bytes_total",
		Help: "Общее количество байт, переданных в потоках текста.",
	})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ps_active_streams",
		Help: "Количество активных потоков текста.",
	})
)

// TextSource — источник текста для потока.
type TextSource interface {
	Paragraphs(count int) string
}

// StreamService — потоковая отдача lorem ipsum текста.
type StreamService struct {
	source     TextSource
	paragraphs int
	delay      time.Duration
	logger     *slog.Logger
}

// NewStreamService создаёт сервис потоковой отдачи.
// paragraphs — количество абзацев, delay — пауза между символами.
func NewStreamService(source TextSource, paragraphs int, delay time.Duration, logger *slog.Logger) *StreamService {
	return &StreamService{
		source:     source,
		paragraphs: paragraphs,
		delay:      delay,
		logger:     logger.With(slog.String("component", "stream_service")),
	}
}

// Stream пишет текст в w посимвольно до конца текста или отмены ctx.
// Возвращает ctx.Err() при отключении клиента и ошибку записи при сбое сети.
// Заголовки отправляются до первого символа, поэтому ошибки после начала
// потока клиенту не передаются.
func (s *StreamService) Stream(ctx context.Context, w http.ResponseWriter) error {
	start := time.Now()
	activeStreams.Inc()
	defer activeStreams.Dec()

	text := s.source.Paragraphs(s.paragraphs)

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	// Поток длиннее WriteTimeout сервера — снимаем дедлайн записи
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Warn("Не удалось снять дедлайн записи", slog.String("error", err.Error()))
	}

	var timer *time.Timer
	if s.delay > 0 {
		timer = time.NewTimer(s.delay)
		defer timer.Stop()
	}

	var written int64
	buf := make([]byte, utf8.UTFMax)
	for i, r := range text {
		if i > 0 && timer != nil {
			timer.Reset(s.delay)
			select {
			case <-ctx.Done():
				return s.finish("canceled", written, start, ctx.Err())
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return s.finish("canceled", written, start, err)
		}

		n := utf8.EncodeRune(buf, r)
		if _, err := w.Write(buf[:n]); err != nil {
			return s.finish("error", written, start, err)
		}
		written += int64(n)
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return s.finish("error", written, start, err)
		}
	}

	return s.finish("completed", written, start, nil)
}

// finish обновляет метрики и логирует завершение потока.
func (s *StreamService) finish(status string, written int64, start time.Time, err error) error {
	streamsTotal.WithLabelValues(status).Inc()
	streamBytesTotal.Add(float64(written))

	attrs := []any{
		slog.String("status", status),
		slog.Int64("bytes", written),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.Debug("Поток текста завершён", attrs...)
	return err
}
