package listing

import (
	"slices"

	"github.com/bigkaa/presight/internal/domain/model"
)

// DefaultTopN — количество значений в опциях фильтров по умолчанию.
const DefaultTopN = 20

// CountOccurrences считает частоту каждого уникального значения и
// возвращает первые limit элементов по убыванию частоты.
// limit <= 0 заменяется на DefaultTopN. При равной частоте сохраняется
// порядок первого появления значения во входе.
func CountOccurrences(values []string, limit int) []model.FilterCountItem {
	if limit <= 0 {
		limit = DefaultTopN
	}

	index := make(map[string]int, len(values))
	items := make([]model.FilterCountItem, 0)
	for _, v := range values {
		if i, ok := index[v]; ok {
			items[i].Count++
			continue
		}
		index[v] = len(items)
		items = append(items, model.FilterCountItem{Value: v, Count: 1})
	}

	slices.SortStableFunc(items, func(a, b model.FilterCountItem) int {
		return b.Count - a.Count
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// BuildFilterOptions считает опции фильтров по всему датасету:
// национальности и хобби (развёрнутые из списков всех записей).
func BuildFilterOptions(users []*model.User, limit int) *model.FilterOptions {
	nationalities := make([]string, 0, len(users))
	hobbies := make([]string, 0, len(users)*2)
	for _, u := range users {
		nationalities = append(nationalities, u.Nationality)
		hobbies = append(hobbies, u.Hobbies...)
	}
	return &model.FilterOptions{
		Nationalities: CountOccurrences(nationalities, limit),
		Hobbies:       CountOccurrences(hobbies, limit),
	}
}
