package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}

func TestNormalizeClock(t *testing.T) {
	v, err := NormalizeClock("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", v)

	v, err = NormalizeClock("15:30:00")
	require.NoError(t, err)
	assert.Equal(t, "15:30:00", v)

	_, err = NormalizeClock("3pm")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, KindPersistence, KindOf(errors.New("driver exploded")))

	err := Persistence("load user", errors.New("connection reset"))
	assert.Equal(t, KindPersistence, err.Kind)
	assert.NotContains(t, err.Message, "connection reset")
	assert.Equal(t, 500, err.Kind.HTTPStatus())
	assert.Equal(t, 409, KindConflict.HTTPStatus())
}
