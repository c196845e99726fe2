package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHashService(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewHashService(bcrypt.MinCost).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHashService(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHashService(bcrypt.MaxCost+1).cost)
}

func TestHashPassword(t *testing.T) {
	hashService := NewHashService(bcrypt.MinCost)

	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{name: "Valid password", password: "securepassword"},
		{name: "Exactly 72 bytes", password: strings.Repeat("a", 72)},
		{name: "Empty password", password: "", expectedErr: ErrEmptyPassword},
		{name: "Too long", password: strings.Repeat("a", 73), expectedErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := hashService.HashPassword(tt.password)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, hashed)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hashed)
			cost, err := bcrypt.Cost([]byte(hashed))
			require.NoError(t, err)
			assert.Equal(t, bcrypt.MinCost, cost)
		})
	}
}

func TestComparePassword(t *testing.T) {
	hashService := NewHashService(bcrypt.MinCost)
	hashed, err := hashService.HashPassword("securepassword")
	require.NoError(t, err)

	assert.True(t, hashService.ComparePassword(hashed, "securepassword"))
	assert.False(t, hashService.ComparePassword(hashed, "wrongpassword"))
	assert.False(t, hashService.ComparePassword(hashed, ""))
	assert.False(t, hashService.ComparePassword("", "securepassword"))
	assert.False(t, hashService.ComparePassword("not-a-bcrypt-hash", "securepassword"))
}
