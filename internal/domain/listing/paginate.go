package listing

import "github.com/bigkaa/presight/internal/domain/model"

// Paginate возвращает страницу page размера limit и метаданные.
// page < 1 → 1, limit < 1 → model.DefaultLimit. Верхняя граница limit
// здесь не проверяется (ограничивается валидацией запроса).
// Страница за пределами диапазона — пустой срез с реальными итогами.
func Paginate[T any](items []T, page, limit int) ([]T, model.PageMetadata) {
	if page < 1 {
		page = model.DefaultPage
	}
	if limit < 1 {
		limit = model.DefaultLimit
	}

	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	meta := model.PageMetadata{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	// page <= totalPages гарантирует, что смещение не переполняется.
	if page > totalPages {
		return []T{}, meta
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
