package mockdata

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *Generator {
	return New(Options{Seed: seed, Now: func() time.Time { return fixedNow }})
}

func TestGenerate_FieldInvariants(t *testing.T) {
	users := newTestGenerator(42).Generate(500)
	require.Len(t, users, 500)

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		require.False(t, seen[u.ID], "повтор id %s", u.ID)
		seen[u.ID] = true

		assert.NotEmpty(t, u.FirstName)
		assert.NotEmpty(t, u.LastName)
		assert.GreaterOrEqual(t, u.Age, MinAge)
		assert.LessOrEqual(t, u.Age, MaxAge)
		assert.Contains(t, Nationalities, u.Nationality)
		assert.LessOrEqual(t, len(u.Hobbies), DefaultMaxHobbies)

		hobbies := make(map[string]bool, len(u.Hobbies))
		for _, h := range u.Hobbies {
			assert.False(t, hobbies[h], "повтор хобби %s", h)
			hobbies[h] = true
		}

		assert.False(t, u.CreatedAt.Before(fixedNow.AddDate(-2, 0, 0).Add(-time.Millisecond)))
		assert.False(t, u.CreatedAt.After(fixedNow))
		assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
		assert.True(t, strings.HasPrefix(u.Avatar, "https://www.gravatar.com/avatar/"))
	}
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	a := newTestGenerator(7).Generate(20)
	b := newTestGenerator(7).Generate(20)
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}

	c := newTestGenerator(8).Generate(20)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestGenerate_MaxHobbies(t *testing.T) {
	g := New(Options{Seed: 1, MaxHobbies: 2, Now: func() time.Time { return fixedNow }})
	for _, u := range g.Generate(200) {
		assert.LessOrEqual(t, len(u.Hobbies), 2)
	}
}

func TestGenerate_Zero(t *testing.T) {
	users := newTestGenerator(1).Generate(0)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/000000000000000000000000428a2dec?d=identicon&s=200",
		AvatarURL("John", "Doe"))
	assert.Equal(t,
		"https://ui-avatars.com/api/?name=J&background=random",
		AvatarURL("John", ""))
}

func TestParagraphs(t *testing.T) {
	text := newTestGenerator(3).Paragraphs(4)
	assert.Len(t, strings.Split(text, "\n\n"), 4)
}
