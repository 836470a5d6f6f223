package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lumeweb.com/accountd/core"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	t.Run("hash verifies", func(t *testing.T) {
		hash, err := svc.HashPassword("pw123")
		require.NoError(t, err)
		assert.NotEqual(t, "pw123", hash)
		assert.True(t, svc.VerifyPassword("pw123", hash))
		assert.False(t, svc.VerifyPassword("pw124", hash))
	})

	t.Run("salted", func(t *testing.T) {
		a, err := svc.HashPassword("same")
		require.NoError(t, err)
		b, err := svc.HashPassword("same")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("malformed hash never matches", func(t *testing.T) {
		assert.False(t, svc.VerifyPassword("pw123", "not-a-hash"))
		assert.False(t, svc.VerifyPassword("", ""))
	})

	t.Run("longer than 72 bytes", func(t *testing.T) {
		long := strings.Repeat("p", 100)
		hash, err := svc.HashPassword(long)
		require.NoError(t, err)
		assert.True(t, svc.VerifyPassword(long, hash))
		assert.True(t, svc.VerifyPassword(long[:maxPasswordBytes], hash))
		assert.False(t, svc.VerifyPassword(long[:maxPasswordBytes-1], hash))
	})

	t.Run("bad cost", func(t *testing.T) {
		bad := &PasswordServiceDefault{cost: bcrypt.MaxCost + 1}
		_, err := bad.HashPassword("pw123")
		require.Error(t, err)
		assert.True(t, core.IsAccountErrorType(err, core.ErrKeyHashingFailed))
	})
}

func TestClampCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, clampCost(0))
	assert.Equal(t, bcrypt.MinCost, clampCost(1))
	assert.Equal(t, bcrypt.MaxCost, clampCost(99))
	assert.Equal(t, 12, clampCost(12))
}
