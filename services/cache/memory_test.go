package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryServiceSetGet(t *testing.T) {
	m := NewMemoryService()

	require.NoError(t, m.Set("key", []byte("value"), 0))
	value, err := m.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
}

func TestMemoryServiceMiss(t *testing.T) {
	m := NewMemoryService()
	_, err := m.Get("absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryServiceExpiry(t *testing.T) {
	m := NewMemoryService()
	require.NoError(t, m.Set("key", []byte("value"), 10*time.Millisecond))

	_, err := m.Get("key")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = m.Get("key")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryServiceDelete(t *testing.T) {
	m := NewMemoryService()
	require.NoError(t, m.Set("key", []byte("value"), 0))
	require.NoError(t, m.Delete("key"))

	_, err := m.Get("key")
	assert.ErrorIs(t, err, ErrMiss)
}
