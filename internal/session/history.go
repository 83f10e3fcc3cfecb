package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const historyPrefix = "chat:history:"

// Exchange is one query/reply pair in a chat session.
type Exchange struct {
	Query  string    `json:"query"`
	Reply  string    `json:"reply"`
	Intent string    `json:"intent"`
	At     time.Time `json:"at"`
}

// History stores a bounded list of recent exchanges per chat session.
// Each append refreshes the session's expiry.
type History struct {
	redis  *redis.Client
	limit  int64
	expiry time.Duration
}

// NewHistory creates a chat history store keeping at most limit exchanges
// per session.
func NewHistory(redisClient *redis.Client, limit int, expiry time.Duration) *History {
	if limit <= 0 {
		limit = 20
	}
	return &History{
		redis:  redisClient,
		limit:  int64(limit),
		expiry: expiry,
	}
}

// Append records one exchange at the head of the session's history and
// trims to the configured limit.
func (h *History) Append(ctx context.Context, sessionID string, ex Exchange) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	key := historyPrefix + sessionID
	pipe := h.redis.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, h.limit-1)
	pipe.Expire(ctx, key, h.expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store exchange: %w", err)
	}

	return nil
}

// Recent returns the session's exchanges, newest first.
func (h *History) Recent(ctx context.Context, sessionID string) ([]Exchange, error) {
	key := historyPrefix + sessionID
	items, err := h.redis.LRange(ctx, key, 0, h.limit-1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	exchanges := make([]Exchange, 0, len(items))
	for _, item := range items {
		var ex Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			// Skip entries that fail to decode rather than dropping the
			// whole history.
			continue
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}

// Clear removes a session's history.
func (h *History) Clear(ctx context.Context, sessionID string) error {
	return h.redis.Del(ctx, historyPrefix+sessionID).Err()
}
