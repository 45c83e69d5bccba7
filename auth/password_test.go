package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))
}

func TestCheckPassword_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "plaintext stored by mistake", hash: "secret1"},
		{name: "truncated bcrypt", hash: "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, CheckPassword("secret1", tt.hash))
		})
	}
}
