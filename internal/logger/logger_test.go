package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New("INFO", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New("loud", "json")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", Email("email", "jane@example.com").String)
	assert.Equal(t, "***", Email("email", "a@b").String)
	assert.Equal(t, "***", Email("email", "nobody").String)
}
