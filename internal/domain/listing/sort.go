package listing

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bigkaa/presight/internal/domain/model"
)

// Sort возвращает новый срез, упорядоченный по полю и направлению.
// Сортировка стабильная: записи с равными ключами сохраняют входной порядок.
// Неизвестное поле не меняет порядок.
func Sort(users []*model.User, field model.SortField, order model.SortOrder) []*model.User {
	result := slices.Clone(users)
	compare := Comparator(field)
	if order == model.OrderDesc {
		slices.SortStableFunc(result, func(a, b *model.User) int { return -compare(a, b) })
	} else {
		slices.SortStableFunc(result, compare)
	}
	return result
}

// Comparator строит функцию сравнения для поля (по возрастанию).
// Строки сравниваются с учётом локали, возраст — числом,
// даты — по миллисекундам Unix.
func Comparator(field model.SortField) func(a, b *model.User) int {
	switch field.Kind() {
	case model.KindString:
		// collate.Collator не потокобезопасен — свой экземпляр на вызов
		col := collate.New(language.English)
		return func(a, b *model.User) int {
			av, _ := field.StringValue(a)
			bv, _ := field.StringValue(b)
			return col.CompareString(av, bv)
		}
	case model.KindNumber:
		return func(a, b *model.User) int {
			av, _ := field.NumberValue(a)
			bv, _ := field.NumberValue(b)
			return cmp.Compare(av, bv)
		}
	case model.KindTime:
		return func(a, b *model.User) int {
			av, _ := field.TimeValue(a)
			bv, _ := field.TimeValue(b)
			return cmp.Compare(av.UnixMilli(), bv.UnixMilli())
		}
	default:
		return func(_, _ *model.User) int { return 0 }
	}
}
