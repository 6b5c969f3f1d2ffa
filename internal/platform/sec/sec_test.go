// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/platform/sec"
)

func newTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip verifies that a generated token verifies with the same claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, "linguaphoto.app")

	token, err := service.GenerateAccessToken("user-1", "xiaoming", time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "xiaoming", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
	assert.False(t, claims.ViaAPIKey)
}

/*
TestTokenService_Rejects covers expired, foreign and malformed tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	service := newTokenService(t, "linguaphoto.app")
	other := newTokenService(t, "linguaphoto.app")
	foreignIssuer := newTokenService(t, "someone.else")

	expired, err := service.GenerateAccessToken("user-1", "xiaoming", -time.Minute)
	require.NoError(t, err)

	foreign, err := other.GenerateAccessToken("user-1", "xiaoming", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := foreignIssuer.GenerateAccessToken("user-1", "xiaoming", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"signed_by_other_key", foreign},
		{"wrong_issuer", wrongIssuer},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

/*
TestPasswordHash checks bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("battery staple", hash))
}

/*
TestSecureToken checks token length, uniqueness and the stable digest.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))
	assert.Len(t, sec.HashToken(first), 64)
}
