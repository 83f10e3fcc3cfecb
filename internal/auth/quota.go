package auth

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/evdataworks/ev-chatbot/internal/errors"
)

// QueryQuota tracks daily chat query usage for a user
type QueryQuota struct {
	UserID       string    `json:"user_id"`
	DailyLimit   int       `json:"daily_limit"` // 0 means unlimited
	UsedToday    int       `json:"used_today"`
	CurrentDay   time.Time `json:"current_day"`
	TotalQueries int       `json:"total_queries"`
	LastReset    time.Time `json:"last_reset"`
}

// QuotaManager manages daily query quotas for all users
type QuotaManager struct {
	quotas       map[string]*QueryQuota // userID -> QueryQuota
	defaultLimit int
	mu           sync.RWMutex
}

// NewQuotaManager creates a quota manager. Users without an explicit
// limit get defaultLimit; 0 disables quota enforcement.
func NewQuotaManager(defaultLimit int) *QuotaManager {
	return &QuotaManager{
		quotas:       make(map[string]*QueryQuota),
		defaultLimit: defaultLimit,
	}
}

// SetLimit sets or updates the daily query limit for a user
func (qm *QuotaManager) SetLimit(userID string, limit int) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	quota := qm.getOrCreateLocked(userID)
	quota.DailyLimit = limit
}

// GetQuota retrieves quota information for a user
func (qm *QuotaManager) GetQuota(userID string) (*QueryQuota, error) {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	quota, exists := qm.quotas[userID]
	if !exists {
		return nil, fmt.Errorf("quota not found for user: %s", userID)
	}

	// Create a copy to avoid race conditions
	quotaCopy := *quota
	return &quotaCopy, nil
}

// Record counts one query for a user and checks the daily limit. The
// counter rolls over at local midnight.
func (qm *QuotaManager) Record(userID string) error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	quota := qm.getOrCreateLocked(userID)

	now := time.Now()
	if !isSameDay(quota.CurrentDay, now) {
		quota.CurrentDay = startOfDay(now)
		quota.UsedToday = 0
		quota.LastReset = now
	}

	if quota.DailyLimit > 0 && quota.UsedToday >= quota.DailyLimit {
		return apperrors.NewQuotaExceededError(quota.UsedToday, quota.DailyLimit)
	}

	quota.UsedToday++
	quota.TotalQueries++

	return nil
}

// Remaining returns how many queries the user has left today. The second
// return is false when the user has no limit.
func (qm *QuotaManager) Remaining(userID string) (int, bool) {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	quota, exists := qm.quotas[userID]
	if !exists {
		if qm.defaultLimit <= 0 {
			return 0, false
		}
		return qm.defaultLimit, true
	}

	if quota.DailyLimit <= 0 {
		return 0, false
	}

	used := quota.UsedToday
	if !isSameDay(quota.CurrentDay, time.Now()) {
		used = 0
	}

	remaining := quota.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// ListQuotas returns all quotas (admin only)
func (qm *QuotaManager) ListQuotas() []*QueryQuota {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	quotas := make([]*QueryQuota, 0, len(qm.quotas))
	for _, quota := range qm.quotas {
		quotaCopy := *quota
		quotas = append(quotas, &quotaCopy)
	}

	return quotas
}

// ResetDaily resets every stale daily counter (normally handled lazily
// on Record; exposed for an operator endpoint).
func (qm *QuotaManager) ResetDaily() {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	now := time.Now()
	for _, quota := range qm.quotas {
		if !isSameDay(quota.CurrentDay, now) {
			quota.CurrentDay = startOfDay(now)
			quota.UsedToday = 0
			quota.LastReset = now
		}
	}
}

// DeleteQuota removes a quota for a user
func (qm *QuotaManager) DeleteQuota(userID string) error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	if _, exists := qm.quotas[userID]; !exists {
		return fmt.Errorf("quota not found for user: %s", userID)
	}

	delete(qm.quotas, userID)
	return nil
}

// getOrCreateLocked returns the user's quota, creating one with the
// default limit. Caller holds qm.mu.
func (qm *QuotaManager) getOrCreateLocked(userID string) *QueryQuota {
	quota, exists := qm.quotas[userID]
	if !exists {
		now := time.Now()
		quota = &QueryQuota{
			UserID:     userID,
			DailyLimit: qm.defaultLimit,
			CurrentDay: startOfDay(now),
			LastReset:  now,
		}
		qm.quotas[userID] = quota
	}
	return quota
}

// Helper functions

// startOfDay returns the start of the day for a given time
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// isSameDay checks if two times are on the same day
func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
