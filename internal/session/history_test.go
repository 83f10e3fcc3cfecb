package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T, limit int) *History {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewHistory(client, limit, time.Hour)
}

func TestHistoryAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 10)

	err := h.Append(ctx, "s1", Exchange{Query: "longest range", Reply: "the TESLA Model S", Intent: "longest_range", At: time.Now()})
	require.NoError(t, err)
	err = h.Append(ctx, "s1", Exchange{Query: "cheapest car", Reply: "the TESLA Model 3", Intent: "cheapest", At: time.Now()})
	require.NoError(t, err)

	exchanges, err := h.Recent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 2)

	// Newest first.
	assert.Equal(t, "cheapest car", exchanges[0].Query)
	assert.Equal(t, "longest range", exchanges[1].Query)
}

func TestHistoryTrimsToLimit(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 3)

	for i := 0; i < 10; i++ {
		err := h.Append(ctx, "s1", Exchange{Query: fmt.Sprintf("query %d", i), At: time.Now()})
		require.NoError(t, err)
	}

	exchanges, err := h.Recent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 3)
	assert.Equal(t, "query 9", exchanges[0].Query)
}

func TestHistoryIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 10)

	require.NoError(t, h.Append(ctx, "s1", Exchange{Query: "hi", At: time.Now()}))
	require.NoError(t, h.Append(ctx, "s2", Exchange{Query: "hello", At: time.Now()}))

	ex1, err := h.Recent(ctx, "s1")
	require.NoError(t, err)
	ex2, err := h.Recent(ctx, "s2")
	require.NoError(t, err)

	require.Len(t, ex1, 1)
	require.Len(t, ex2, 1)
	assert.Equal(t, "hi", ex1[0].Query)
	assert.Equal(t, "hello", ex2[0].Query)
}

func TestHistoryRequiresSessionID(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 10)

	err := h.Append(ctx, "", Exchange{Query: "hi"})
	assert.Error(t, err)
}

func TestHistoryClear(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 10)

	require.NoError(t, h.Append(ctx, "s1", Exchange{Query: "hi", At: time.Now()}))
	require.NoError(t, h.Clear(ctx, "s1"))

	exchanges, err := h.Recent(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}

func TestHistoryRecentUnknownSession(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t, 10)

	exchanges, err := h.Recent(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}
