package chat

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evdataworks/ev-chatbot/internal/session"
	"github.com/evdataworks/ev-chatbot/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) (*Service, *gin.Engine) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	table := testTable()
	engine := NewEngine(table, rand.New(rand.NewSource(1)))
	history := session.NewHistory(client, 20, time.Hour)

	svc := NewService(engine, table, client, history, nil, ServiceConfig{
		CacheTTL:       time.Minute,
		MaxQueryLength: 100,
	})
	return svc, svc.SetupRoutes(nil)
}

func postChat(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	_, router := newTestService(t)

	w := postChat(t, router, QueryRequest{Query: "cheapest car"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(IntentCheapest), resp.Intent)
	assert.Contains(t, resp.Response, "Model 3")
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.CacheHit)
}

func TestChatEndpointRejectsMissingQuery(t *testing.T) {
	_, router := newTestService(t)

	w := postChat(t, router, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postChat(t, router, QueryRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointRejectsOversizedQuery(t *testing.T) {
	_, router := newTestService(t)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	w := postChat(t, router, QueryRequest{Query: string(long)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointCachesReplies(t *testing.T) {
	_, router := newTestService(t)

	first := postChat(t, router, QueryRequest{Query: "cheapest car"})
	require.Equal(t, http.StatusOK, first.Code)

	second := postChat(t, router, QueryRequest{Query: "Cheapest Car"})
	require.Equal(t, http.StatusOK, second.Code)

	var a, b QueryResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	assert.False(t, a.CacheHit)
	assert.True(t, b.CacheHit)
	assert.Equal(t, a.Response, b.Response)
}

func TestChatEndpointKeepsSessionID(t *testing.T) {
	_, router := newTestService(t)

	w := postChat(t, router, QueryRequest{Query: "hi", SessionID: "session-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "session-1", resp.SessionID)
}

func TestChatHistoryEndpoint(t *testing.T) {
	_, router := newTestService(t)

	postChat(t, router, QueryRequest{Query: "cheapest car", SessionID: "session-2"})
	postChat(t, router, QueryRequest{Query: "longest range", SessionID: "session-2"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?session_id=session-2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionID string             `json:"session_id"`
		History   []session.Exchange `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	// Newest first.
	assert.Equal(t, "longest range", body.History[0].Query)
	assert.Equal(t, "cheapest car", body.History[1].Query)
}

func TestChatHistoryRequiresSessionID(t *testing.T) {
	_, router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarsEndpointFilters(t *testing.T) {
	_, router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cars?brand=TESLA&max_price=50000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int            `json:"count"`
		Cars  []store.Record `json:"cars"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Model 3", body.Cars[0].Model)
}

func TestBrandsEndpoint(t *testing.T) {
	_, router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count  int      `json:"count"`
		Brands []string `json:"brands"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, []string{"BMW", "NISSAN", "TESLA"}, body.Brands)
}

func TestStatsEndpoint(t *testing.T) {
	_, router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary store.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 3, summary.Brands)
}

func TestPredictEndpointWithoutPredictor(t *testing.T) {
	_, router := newTestService(t)

	body := bytes.NewReader([]byte(`{"battery_kwh":75,"accel_0_100":4.4,"top_speed_kmh":233,"range_km":560,"efficiency_wh_km":161,"seats":5}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthEndpointWithoutChecker(t *testing.T) {
	_, router := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
