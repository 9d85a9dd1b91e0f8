// Пакет mockdata — генерация mock-датасета пользователей на gofakeit.
// Генератор детерминирован при фиксированном seed и часах.
package mockdata

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/bigkaa/presight/internal/domain/model"
)

const (
	// MinAge и MaxAge — диапазон возраста (включительно).
	MinAge = 18
	MaxAge = 80
	// DefaultMaxHobbies — максимальное количество хобби на пользователя.
	DefaultMaxHobbies = 10
)

// Options — параметры генератора.
type Options struct {
	// Seed — зерно PRNG (0 — случайное).
	Seed uint64
	// MaxHobbies — верхняя граница количества хобби (0 → DefaultMaxHobbies).
	MaxHobbies int
	// Now — источник текущего времени (nil → time.Now).
	Now func() time.Time
}

// Generator создаёт записи пользователей.
// Безопасен для конкурентного использования.
type Generator struct {
	mu         sync.Mutex
	faker      *gofakeit.Faker
	maxHobbies int
	now        func() time.Time
}

// New создаёт генератор.
func New(opts Options) *Generator {
	if opts.MaxHobbies <= 0 {
		opts.MaxHobbies = DefaultMaxHobbies
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{
		faker:      gofakeit.New(opts.Seed),
		maxHobbies: min(opts.MaxHobbies, len(Hobbies)),
		now:        opts.Now,
	}
}

// Generate создаёт n пользователей.
func (g *Generator) Generate(n int) []*model.User {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	users := make([]*model.User, 0, max(n, 0))
	for range n {
		users = append(users, g.user(now))
	}
	return users
}

// Paragraphs возвращает count абзацев lorem ipsum, разделённых пустой строкой.
func (g *Generator) Paragraphs(count int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.LoremIpsumParagraph(count, 5, 12, "\n\n")
}

// user создаёт одну запись. Вызывается под g.mu.
func (g *Generator) user(now time.Time) *model.User {
	f := g.faker
	firstName := f.FirstName()
	lastName := f.LastName()

	createdAt := f.DateRange(now.AddDate(-2, 0, 0), now)
	updatedAt := f.DateRange(now.AddDate(0, 0, -30), now)
	if updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}

	return &model.User{
		ID:          g.uuid(),
		Avatar:      AvatarURL(firstName, lastName),
		FirstName:   firstName,
		LastName:    lastName,
		Age:         f.Number(MinAge, MaxAge),
		Nationality: f.RandomString(Nationalities),
		Hobbies:     g.pickHobbies(f.Number(0, g.maxHobbies)),
		CreatedAt:   createdAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   updatedAt.UTC().Truncate(time.Millisecond),
	}
}

// pickHobbies возвращает count уникальных хобби в случайном порядке.
func (g *Generator) pickHobbies(count int) []string {
	shuffled := make([]string, len(Hobbies))
	copy(shuffled, Hobbies)
	g.faker.ShuffleStrings(shuffled)
	return shuffled[:count]
}

// uuid строит UUID v4 из потока генератора, чтобы seed воспроизводил id.
func (g *Generator) uuid() string {
	id, err := uuid.NewRandomFromReader(fakerReader{g.faker})
	if err != nil {
		// fakerReader не возвращает ошибок
		return uuid.NewString()
	}
	return id.String()
}

// fakerReader — io.Reader поверх PRNG gofakeit.
type fakerReader struct {
	f *gofakeit.Faker
}

func (r fakerReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.f.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// AvatarURL строит URL аватара gravatar (identicon) по хэшу
// адреса first.last@example.com. Для пустых имён — ui-avatars с инициалами.
func AvatarURL(firstName, lastName string) string {
	if firstName == "" || lastName == "" {
		initials := firstRune(firstName) + firstRune(lastName)
		return "https://ui-avatars.com/api/?name=" + url.QueryEscape(initials) + "&background=random"
	}
	email := fmt.Sprintf("%s.%s@example.com", strings.ToLower(firstName), strings.ToLower(lastName))
	return "https://www.gravatar.com/avatar/" + avatarHash(email) + "?d=identicon&s=200"
}

// avatarHash — 32-символьный hex-хэш строки (не криптографический):
// h = h*31 + c по UTF-16 единицам с переполнением int32,
// затем модуль, hex и дополнение нулями слева.
func avatarHash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	hex := strconv.FormatInt(abs, 16)
	return strings.Repeat("0", 32-len(hex)) + hex
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
