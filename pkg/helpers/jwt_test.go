package helpers

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerateAndParse(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.Generate("user-42")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
}

func TestJWTExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour)
	m.Now = func() time.Time { return now }

	token, _, err := m.Generate("user-42")
	require.NoError(t, err)

	m.Now = func() time.Time { return now.Add(time.Hour + time.Second) }
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	a := NewJWTManager("secret-a", time.Hour)
	b := NewJWTManager("secret-b", time.Hour)

	token, _, err := a.Generate("user-42")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestJWTGarbageToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	for _, s := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Parse(s)
		assert.Error(t, err, strconv.Quote(s))
	}
}
