// Пакет repository — слой хранения датасета пользователей.
// Датасет целиком живёт в памяти: генерируется при старте и заменяется
// целиком при регенерации. Записи после генерации не изменяются.
package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/presight/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotReady — датасет ещё не сгенерирован.
	ErrNotReady = errors.New("датасет не готов")
)

// Snapshot — неизменяемый снимок датасета.
// Users нельзя модифицировать: срез разделяется между читателями.
type Snapshot struct {
	// Users — записи в порядке генерации
	Users []*model.User
	// Generation — версия датасета, растёт при каждой регенерации
	Generation uint64
}

// UserRepository — интерфейс доступа к датасету пользователей.
type UserRepository interface {
	// Snapshot возвращает текущий снимок или ErrNotReady.
	Snapshot(ctx context.Context) (Snapshot, error)
	// Regenerate заменяет датасет новым и возвращает новый снимок.
	Regenerate(ctx context.Context) (Snapshot, error)
	// IsReady — датасет загружен.
	IsReady() bool
}

// Source — источник записей для (ре)генерации датасета.
type Source interface {
	Generate(n int) []*model.User
}
