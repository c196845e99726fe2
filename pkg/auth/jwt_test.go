package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGenerateJWT(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jwtService := NewJWTService("test-secret")
	jwtService.now = func() time.Time { return fixed }

	token, err := jwtService.GenerateJWT(42, fixed.Add(time.Hour))
	require.NoError(t, err)

	parsed := &Claims{}
	_, _, err = new(jwt.Parser).ParseUnverified(token, parsed)
	require.NoError(t, err)
	assert.Equal(t, 42, parsed.UserID)
	assert.Equal(t, "42", parsed.Subject)
	assert.Equal(t, issuer, parsed.Issuer)
	assert.Equal(t, fixed.Unix(), parsed.IssuedAt)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), parsed.ExpiresAt)

	_, err = jwtService.GenerateJWT(0, fixed.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTokenClaims)
}

func TestValidateToken(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	valid := func(c *Claims) *Claims {
		claims := &Claims{
			UserID: 123,
			StandardClaims: jwt.StandardClaims{
				Subject:   "123",
				Issuer:    issuer,
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
			},
		}
		if c != nil {
			claims.UserID = c.UserID
			claims.Subject = c.Subject
			claims.Issuer = c.Issuer
		}
		return claims
	}

	tests := []struct {
		name        string
		token       func() string
		expectedErr error
	}{
		{
			name: "Valid token",
			token: func() string {
				token, _ := jwtService.GenerateJWT(123, time.Now().Add(time.Hour))
				return token
			},
		},
		{
			name: "Signed with another secret",
			token: func() string {
				token, _ := NewJWTService("other-secret").GenerateJWT(123, time.Now().Add(time.Hour))
				return token
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "Garbage",
			token:       func() string { return "invalid.token.string" },
			expectedErr: ErrInvalidToken,
		},
		{
			name: "Expired token",
			token: func() string {
				token, _ := jwtService.GenerateJWT(123, time.Now().Add(-time.Hour))
				return token
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "HS512 is rejected",
			token: func() string {
				return sign(t, jwt.SigningMethodHS512, valid(nil), []byte("test-secret"))
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "Unsigned token",
			token: func() string {
				return sign(t, jwt.SigningMethodNone, valid(nil), jwt.UnsafeAllowNoneSignatureType)
			},
			expectedErr: ErrInvalidToken,
		},
		{
			name: "Foreign issuer",
			token: func() string {
				return sign(t, jwt.SigningMethodHS256, valid(&Claims{UserID: 123, StandardClaims: jwt.StandardClaims{Subject: "123", Issuer: "another-service"}}), []byte("test-secret"))
			},
			expectedErr: ErrInvalidTokenClaims,
		},
		{
			name: "Subject mismatch",
			token: func() string {
				return sign(t, jwt.SigningMethodHS256, valid(&Claims{UserID: 123, StandardClaims: jwt.StandardClaims{Subject: "7", Issuer: issuer}}), []byte("test-secret"))
			},
			expectedErr: ErrInvalidTokenClaims,
		},
		{
			name: "Missing user id",
			token: func() string {
				return sign(t, jwt.SigningMethodHS256, jwt.StandardClaims{
					ExpiresAt: time.Now().Add(time.Hour).Unix(),
					Issuer:    issuer,
				}, []byte("test-secret"))
			},
			expectedErr: ErrInvalidTokenClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := jwtService.ValidateToken(tt.token())

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 123, claims.UserID)
		})
	}
}
