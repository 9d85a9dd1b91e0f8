// stream.go — обработчик GET /api/stream/text (chunked text/plain).
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// StreamText — GET /api/stream/text. Заголовки и статус выставляет сервис,
// поэтому ошибка после начала стрима только логируется.
func (h *APIHandler) StreamText(w http.ResponseWriter, r *http.Request) {
	err := h.streamer.Stream(r.Context(), w)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		h.logger.Debug("Клиент отключился от стрима", slog.String("remote_addr", r.RemoteAddr))
	default:
		h.logger.Warn("Стрим прерван", slog.String("error", err.Error()))
	}
}
