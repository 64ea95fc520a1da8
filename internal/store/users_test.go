package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
)

func newTestUser(id, username, email string) *domain.User {
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$fake",
		FullName:     "Test User",
		Role:         domain.RoleWriter,
	}
	user.ID = id
	user.InitTimestamps()
	return user
}

func TestCreateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := newTestUser("user-1", "aria", "aria@example.com")

	require.NoError(t, s.CreateUser(ctx, user))

	retrieved, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "aria", retrieved.Username)
	assert.Equal(t, "aria@example.com", retrieved.Email)
	assert.Equal(t, domain.RoleWriter, retrieved.Role)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "aria", "aria@example.com")))

	// Case differences don't dodge the uniqueness check
	err := s.CreateUser(ctx, newTestUser("user-2", "ARIA", "other@example.com"))
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "aria", "aria@example.com")))

	err := s.CreateUser(ctx, newTestUser("user-2", "brynn", "Aria@Example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestGetUserByUsernameAndEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "aria", "aria@example.com")))

	byUsername, err := s.GetUserByUsername(ctx, "Aria")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byUsername.ID)

	byEmail, err := s.GetUserByEmail(ctx, "ARIA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserMovesIndexes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := newTestUser("user-1", "aria", "aria@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	user.Email = "new@example.com"
	require.NoError(t, s.UpdateUser(ctx, user))

	// Old email no longer resolves, new one does
	_, err := s.GetUserByEmail(ctx, "aria@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := s.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.ID)
}

func TestSessionLifecycle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := &domain.Session{
		ID:               "session-1",
		UserID:           "user-1",
		RefreshTokenHash: "hash-a",
		ExpiresAt:        time.Now().Add(24 * time.Hour),
		CreatedAt:        time.Now(),
		LastSeenAt:       time.Now(),
	}

	require.NoError(t, s.CreateSession(ctx, session))

	byToken, err := s.GetSessionByRefreshToken(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, "session-1", byToken.ID)

	// Token rotation moves the token index
	session.RefreshTokenHash = "hash-b"
	require.NoError(t, s.UpdateSession(ctx, session))

	_, err = s.GetSessionByRefreshToken(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	byToken, err = s.GetSessionByRefreshToken(ctx, "hash-b")
	require.NoError(t, err)
	assert.Equal(t, "session-1", byToken.ID)

	require.NoError(t, s.DeleteSession(ctx, "session-1"))
	_, err = s.GetSession(ctx, "session-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSessionExpired(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := &domain.Session{
		ID:               "session-old",
		UserID:           "user-1",
		RefreshTokenHash: "hash-old",
		ExpiresAt:        time.Now().Add(-time.Hour),
		CreatedAt:        time.Now().Add(-48 * time.Hour),
	}

	require.NoError(t, s.CreateSession(ctx, session))

	_, err := s.GetSession(ctx, "session-old")
	assert.ErrorIs(t, err, ErrSessionExpired)
}
