package auth

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

func testKeyHex(t *testing.T) string {
	t.Helper()
	key := make([]byte, keyLength)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return hex.EncodeToString(key)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// Hashing the same password twice produces different hashes (random salt).
	hash2, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "s3cret-password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// A garbage hash reports a mismatch rather than an error, so callers
	// cannot distinguish a bad hash from a wrong password.
	ok, err := VerifyPassword("not-a-valid-hash", "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewTokenServiceValidation(t *testing.T) {
	_, err := NewTokenService("too-short", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("z", keyHexLength), time.Minute, time.Hour)
	assert.Error(t, err, "non-hex characters should be rejected")

	_, err = NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	assert.NoError(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	user := &domain.User{
		Username: "aria",
		Role:     domain.RoleWriter,
	}
	user.ID = "user-abc123"

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc123", claims.UserID)
	assert.Equal(t, "aria", claims.Username)
	assert.Equal(t, string(domain.RoleWriter), claims.Role)
	assert.Equal(t, "user-abc123", claims.Subject)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), -time.Minute, time.Hour)
	require.NoError(t, err)

	user := &domain.User{Username: "aria", Role: domain.RoleReader}
	user.ID = "user-expired"

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessTokenWrongKey(t *testing.T) {
	svc1, err := NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	require.NoError(t, err)
	svc2, err := NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	require.NoError(t, err)

	user := &domain.User{Username: "aria", Role: domain.RoleReader}
	user.ID = "user-xyz"

	token, err := svc1.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = svc2.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	svc, err := NewTokenService(testKeyHex(t), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.Equal(t, HashRefreshToken(token), HashRefreshToken(token))

	other, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, HashRefreshToken(token), HashRefreshToken(other))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	// Second call loads the same key back.
	key2, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, key2)

	// Corrupt key file is rejected.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("garbage"), 0o600))
	_, err = LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
