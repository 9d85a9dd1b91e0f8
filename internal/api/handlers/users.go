// users.go — обработчики каталога пользователей:
// GET /api/users, GET /api/filters, POST /api/users/regenerate.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/presight/internal/api/errors"
	"github.com/bigkaa/presight/internal/domain/model"
	"github.com/bigkaa/presight/internal/service"
)

// filterOptionsResponse — ответ GET /api/filters.
type filterOptionsResponse struct {
	Success bool                 `json:"success"`
	Data    *model.FilterOptions `json:"data"`
}

// regenerateResponse — ответ POST /api/users/regenerate.
type regenerateResponse struct {
	Success    bool   `json:"success"`
	Total      int    `json:"total"`
	Generation uint64 `json:"generation"`
}

// ListUsers — GET /api/users: валидация query, фильтрация, сортировка, пагинация.
// Failure-ответ сервиса (success=false) отдаётся как есть со статусом 200.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, fieldErrs := parseUserFilter(r.URL.Query())
	if len(fieldErrs) > 0 {
		apierrors.ValidationError(w, fieldErrs)
		return
	}

	result := h.users.List(r.Context(), filter)
	if !result.Success {
		h.logger.Warn("Список пользователей недоступен, отдаём пустой ответ",
			slog.Int("page", filter.Page),
			slog.Int("limit", filter.Limit),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

// GetFilterOptions — GET /api/filters: частоты национальностей и хобби.
func (h *APIHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.users.FilterOptions(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrDatasetNotReady) {
			apierrors.ServiceUnavailable(w, "Dataset is not loaded")
			return
		}
		h.logger.Error("Ошибка получения опций фильтров", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to get filter options")
		return
	}
	writeJSON(w, http.StatusOK, filterOptionsResponse{Success: true, Data: opts})
}

// RegenerateUsers — POST /api/users/regenerate: новый датасет того же размера.
func (h *APIHandler) RegenerateUsers(w http.ResponseWriter, r *http.Request) {
	snap, err := h.users.Regenerate(r.Context())
	if err != nil {
		h.logger.Error("Ошибка регенерации датасета", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to regenerate users")
		return
	}
	writeJSON(w, http.StatusOK, regenerateResponse{
		Success:    true,
		Total:      len(snap.Users),
		Generation: snap.Generation,
	})
}
