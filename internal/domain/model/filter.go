package model

import (
	"strings"
	"time"
)

// Значения по умолчанию для листинга пользователей.
// Единственный default сортировки для всех точек входа — lastName ASC.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	DefaultSort  = SortLastName
	DefaultOrder = OrderAsc
)

// SortField — поле сортировки (закрытое перечисление).
type SortField string

const (
	SortFirstName   SortField = "firstName"
	SortLastName    SortField = "lastName"
	SortAge         SortField = "age"
	SortNationality SortField = "nationality"
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
)

// SortFields — все допустимые поля сортировки в порядке документации.
var SortFields = []SortField{
	SortFirstName,
	SortLastName,
	SortAge,
	SortNationality,
	SortCreatedAt,
	SortUpdatedAt,
}

// SortKind — тип значения поля сортировки, определяет правило сравнения.
type SortKind int

const (
	// KindUnknown — поле не распознано, сравнение возвращает 0.
	KindUnknown SortKind = iota
	KindString
	KindNumber
	KindTime
)

// Valid сообщает, входит ли поле в перечисление.
func (f SortField) Valid() bool {
	return f.Kind() != KindUnknown
}

// Kind возвращает тип значения поля.
func (f SortField) Kind() SortKind {
	switch f {
	case SortFirstName, SortLastName, SortNationality:
		return KindString
	case SortAge:
		return KindNumber
	case SortCreatedAt, SortUpdatedAt:
		return KindTime
	default:
		return KindUnknown
	}
}

// StringValue возвращает строковое значение поля записи.
// Для нестроковых полей возвращает false.
func (f SortField) StringValue(u *User) (string, bool) {
	switch f {
	case SortFirstName:
		return u.FirstName, true
	case SortLastName:
		return u.LastName, true
	case SortNationality:
		return u.Nationality, true
	default:
		return "", false
	}
}

// NumberValue возвращает числовое значение поля записи.
func (f SortField) NumberValue(u *User) (int, bool) {
	if f == SortAge {
		return u.Age, true
	}
	return 0, false
}

// TimeValue возвращает временное значение поля записи.
func (f SortField) TimeValue(u *User) (time.Time, bool) {
	switch f {
	case SortCreatedAt:
		return u.CreatedAt, true
	case SortUpdatedAt:
		return u.UpdatedAt, true
	default:
		return time.Time{}, false
	}
}

// ParseSortField разбирает имя поля сортировки (регистр значим, как в API).
func ParseSortField(s string) (SortField, bool) {
	f := SortField(s)
	return f, f.Valid()
}

// SortOrder — направление сортировки.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// ParseSortOrder разбирает направление без учёта регистра.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToUpper(s)) {
	case OrderAsc:
		return OrderAsc, true
	case OrderDesc:
		return OrderDesc, true
	default:
		return "", false
	}
}

// UserFilter — критерии листинга. Все поля опциональны:
// пустые фильтры не ограничивают выборку, пустые sort/order/page/limit
// заменяются значениями по умолчанию.
type UserFilter struct {
	Page        int
	Limit       int
	Search      string
	Nationality string
	Hobby       string
	Sort        SortField
	Order       SortOrder
}

// Normalize возвращает копию фильтра с подставленными значениями по умолчанию.
// Некорректные sort/order заменяются на default, а не отклоняются.
func (f UserFilter) Normalize() UserFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if !f.Sort.Valid() {
		f.Sort = DefaultSort
	}
	if order, ok := ParseSortOrder(string(f.Order)); ok {
		f.Order = order
	} else {
		f.Order = DefaultOrder
	}
	return f
}
