// recovery.go — перехват паник в обработчиках.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
)

// Recovery возвращает middleware, перехватывающий панику обработчика:
// паника логируется со стеком, клиент получает 500 в формате API.
// http.ErrAbortHandler пробрасывается дальше — это штатный обрыв ответа.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "Паника в обработчике",
					slog.Any("error", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				apierrors.InternalError(w, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
