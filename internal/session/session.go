package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	loginKeyPrefix = "chatbot:login:"
	loginIDBytes   = 32
)

// ErrNotFound is returned when a session ID has no backing record, either
// because it never existed or because Redis already expired it.
var ErrNotFound = errors.New("session not found")

// Session is the login state stored per browser cookie. It carries enough to
// resolve the user without a second lookup on every request.
type Session struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Roles      []string  `json:"roles"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Manager stores login sessions in Redis with a sliding expiry. Every
// successful Get pushes ExpiresAt forward, so a session only dies after
// the configured idle window.
type Manager struct {
	redis  *redis.Client
	expiry time.Duration
}

// NewManager creates a session manager. expiry is the idle window after
// which an untouched session disappears.
func NewManager(redisClient *redis.Client, expiry time.Duration) *Manager {
	return &Manager{redis: redisClient, expiry: expiry}
}

// Create stores a new session and returns its opaque ID. The ID is what
// goes into the cookie; the session body never leaves the server.
func (m *Manager) Create(ctx context.Context, userID, username, token string, roles []string) (string, error) {
	sessionID, err := newLoginID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	sess := Session{
		UserID:     userID,
		Username:   username,
		Roles:      roles,
		Token:      token,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.expiry),
	}

	if err := m.write(ctx, sessionID, &sess); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get loads a session and records the access. Expired sessions are removed
// on read so a stale cookie cannot be replayed between Redis sweeps.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.redis.Get(ctx, loginKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		m.Delete(ctx, sessionID)
		return nil, ErrNotFound
	}

	sess.LastSeenAt = time.Now()
	if err := m.write(ctx, sessionID, &sess); err != nil {
		// The session is still valid; losing one LastSeenAt update is fine.
		return &sess, nil
	}
	return &sess, nil
}

// Delete removes a session, logging the user out of that browser.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.redis.Del(ctx, loginKeyPrefix+sessionID).Err()
}

// Refresh pushes the session's expiry forward without loading it.
func (m *Manager) Refresh(ctx context.Context, sessionID string) error {
	key := loginKeyPrefix + sessionID

	data, err := m.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return m.write(ctx, sessionID, &sess)
}

func (m *Manager) write(ctx context.Context, sessionID string, sess *Session) error {
	sess.ExpiresAt = time.Now().Add(m.expiry)

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.redis.Set(ctx, loginKeyPrefix+sessionID, data, m.expiry).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func newLoginID() (string, error) {
	b := make([]byte, loginIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
