// Пакет listing — конвейер листинга пользователей:
// фильтрация → сортировка → пагинация, плюс подсчёт частот для опций фильтров.
// Функции пакета чистые: не меняют вход, не выполняют I/O и не возвращают ошибок.
package listing

import (
	"strings"

	"github.com/bigkaa/presight/internal/domain/model"
)

// Filter возвращает новый срез записей, удовлетворяющих всем активным
// критериям, в исходном порядке. Пустые критерии не ограничивают выборку.
// Порядок применения фиксирован: search → nationality → hobby.
func Filter(users []*model.User, f model.UserFilter) []*model.User {
	search := strings.ToLower(f.Search)
	nationality := strings.ToLower(f.Nationality)
	hobby := strings.ToLower(f.Hobby)

	result := make([]*model.User, 0, len(users))
	for _, u := range users {
		if search != "" && !matchName(u, search) {
			continue
		}
		if nationality != "" && strings.ToLower(u.Nationality) != nationality {
			continue
		}
		if hobby != "" && !matchHobby(u, hobby) {
			continue
		}
		result = append(result, u)
	}
	return result
}

// matchName — подстрока (без учёта регистра) в имени или фамилии.
func matchName(u *model.User, term string) bool {
	return strings.Contains(strings.ToLower(u.FirstName), term) ||
		strings.Contains(strings.ToLower(u.LastName), term)
}

// matchHobby — хотя бы одно хобби содержит подстроку (не точное равенство).
func matchHobby(u *model.User, term string) bool {
	for _, h := range u.Hobbies {
		if strings.Contains(strings.ToLower(h), term) {
			return true
		}
	}
	return false
}
