package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *AuthManager {
	t.Helper()
	return NewTestAuthManager(AuthConfig{
		JWTSecret:     "test-secret-key-for-unit-tests-only",
		JWTExpiry:     time.Hour,
		SessionExpiry: time.Hour,
		RateLimit:     1000,
	})
}

func TestNewAuthManagerCreatesAdmin(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", admin.ID)
	assert.Contains(t, admin.Roles, "admin")
	assert.True(t, admin.Active)
}

func TestCreateUserWithPassword(t *testing.T) {
	am := newTestManager(t)

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", []string{"user"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	assert.True(t, am.ValidatePassword(user, "s3cret"))
	assert.False(t, am.ValidatePassword(user, "wrong"))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	am := newTestManager(t)

	_, err := am.CreateUser("bob", "bob@example.com", []string{"user"})
	require.NoError(t, err)

	_, err = am.CreateUser("bob", "bob2@example.com", []string{"user"})
	assert.Error(t, err)
}

func TestAPIKeyLifecycle(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(admin.ID, "test key", []string{"chat"}, 100, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(apiKey.Key, "evc_"))
	assert.NotEmpty(t, apiKey.HashedKey)

	user, validated, err := am.ValidateAPIKey(apiKey.Key)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)
	assert.Equal(t, apiKey.ID, validated.ID)

	require.NoError(t, am.RevokeAPIKey(apiKey.ID))

	_, _, err = am.ValidateAPIKey(apiKey.Key)
	assert.Error(t, err)
}

func TestValidateAPIKeyExpired(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(admin.ID, "short-lived", nil, 100, -time.Minute)
	require.NoError(t, err)

	_, _, err = am.ValidateAPIKey(apiKey.Key)
	assert.Error(t, err)
}

func TestValidateAPIKeyUnknown(t *testing.T) {
	am := newTestManager(t)

	_, _, err := am.ValidateAPIKey("evc_not_a_real_key")
	assert.Error(t, err)
}

func TestJWTTokenRoundTrip(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	token, err := am.CreateJWTToken(admin)
	require.NoError(t, err)

	claims, err := am.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "ev-chatbot", claims.Issuer)
}

func TestValidateJWTTokenWrongSecret(t *testing.T) {
	am := newTestManager(t)
	other := NewTestAuthManager(AuthConfig{JWTSecret: "completely-different-secret-value"})

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	token, err := am.CreateJWTToken(admin)
	require.NoError(t, err)

	_, err = other.ValidateJWTToken(token)
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	sessionID, err := am.CreateSession(admin.ID)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	user, err := am.ValidateSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)

	require.NoError(t, am.RevokeSession(sessionID))

	_, err = am.ValidateSession(sessionID)
	assert.Error(t, err)
}

func TestCleanupExpired(t *testing.T) {
	am := newTestManager(t)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)

	expired, err := am.CreateAPIKey(admin.ID, "expired", nil, 100, -time.Minute)
	require.NoError(t, err)
	fresh, err := am.CreateAPIKey(admin.ID, "fresh", nil, 100, time.Hour)
	require.NoError(t, err)

	am.CleanupExpired()

	keys, err := am.ListAPIKeys(admin.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, fresh.ID, keys[0].ID)
	assert.NotEqual(t, expired.ID, keys[0].ID)
	// Plaintext key is never listed.
	assert.Empty(t, keys[0].Key)
}
