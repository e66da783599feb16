package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// HashPassword Tests
// ============================================

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"minimum length", "password"},
		{"long passphrase", "correct-horse-battery-staple-42"},
		{"special characters", "p@ssw0rd!"},
		{"unicode", "パスワード12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash, "hash must not be the plaintext")
		})
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	for _, password := range []string{"", "a", "1234567", "       "} {
		hash, err := HashPassword(password)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.Empty(t, hash)
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, CheckPassword("samepassword", hash1))
	assert.True(t, CheckPassword("samepassword", hash2))
}

// ============================================
// CheckPassword Tests
// ============================================

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecretPhrase1")
	require.NoError(t, err)

	assert.True(t, CheckPassword("SecretPhrase1", hash))
	assert.False(t, CheckPassword("secretphrase1", hash), "comparison is case sensitive")
	assert.False(t, CheckPassword("SomethingElse", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("password", ""))
}
