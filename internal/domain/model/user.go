// Пакет model — доменные модели сервиса каталога пользователей.
// User — запись mock-каталога, генерируется целиком при старте и при regenerate.
package model

import "time"

// User — запись пользователя в in-memory каталоге.
// После генерации запись не изменяется (включая временные метки).
type User struct {
	// ID — UUID пользователя, уникален в пределах датасета
	ID string `json:"id"`
	// Avatar — URL аватара (gravatar identicon или ui-avatars)
	Avatar string `json:"avatar"`
	// FirstName — имя
	FirstName string `json:"firstName"`
	// LastName — фамилия
	LastName string `json:"lastName"`
	// Age — возраст (18-80)
	Age int `json:"age"`
	// Nationality — национальность (одно значение из справочника)
	Nationality string `json:"nationality"`
	// Hobbies — хобби без повторов, порядок не значим
	Hobbies []string `json:"hobbies"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time `json:"updatedAt"`
}

// FilterCountItem — пара (значение, частота) для опций фильтров UI.
type FilterCountItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FilterOptions — частоты национальностей и хобби по всему датасету.
type FilterOptions struct {
	Nationalities []FilterCountItem `json:"nationalities"`
	Hobbies       []FilterCountItem `json:"hobbies"`
}

// PageMetadata — метаданные страницы.
// Total — количество записей после фильтрации, до пагинации.
type PageMetadata struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// UserList — результат листинга: страница пользователей и метаданные.
// Success = false — sentinel внутренней ошибки конвейера (пустые данные, нулевые итоги).
type UserList struct {
	Success  bool         `json:"success"`
	Data     []*User      `json:"data"`
	Metadata PageMetadata `json:"metadata"`
}
