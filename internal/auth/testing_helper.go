package auth

import (
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/evdataworks/ev-chatbot/internal/session"
)

// NewTestAuthManager builds an auth manager backed by an in-process
// miniredis so auth tests need no real Redis.
func NewTestAuthManager(config AuthConfig) *AuthManager {
	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("Failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	if config.SessionExpiry == 0 {
		config.SessionExpiry = 7 * 24 * time.Hour
	}

	return NewAuthManager(config, session.NewManager(rdb, config.SessionExpiry))
}
