// notfound.go — ответы для неизвестных маршрутов и методов.
package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
)

// NotFound — 404 для неизвестного пути.
func (h *APIHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	apierrors.NotFound(w, "Not found: "+r.URL.RequestURI())
}

// MethodNotAllowed — 405 для известного пути с неподдерживаемым методом.
func (h *APIHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierrors.MethodNotAllowed(w, "Method "+r.Method+" not allowed for "+r.URL.Path)
}
