// test/integration_test.go
//go:build integration
// +build integration

package test

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

	"github.com/evdataworks/ev-chatbot/internal/auth"
	"github.com/evdataworks/ev-chatbot/internal/chat"
	"github.com/evdataworks/ev-chatbot/internal/predictor"
	"github.com/evdataworks/ev-chatbot/internal/session"
	"github.com/evdataworks/ev-chatbot/internal/store"
)

// Integration tests verify end-to-end functionality
// Run with: go test -tags=integration ./test/...

func init() {
	gin.SetMode(gin.TestMode)
}

func testTable() *store.Table {
	return store.NewTable([]store.Record{
		{Brand: "Tesla", Model: "Model 3", PriceUSD: 40000, RangeKM: 450, Accel0To100: 6.1, TopSpeedKMH: 225, BatteryKWH: 57.5, EfficiencyWhKM: 151, Seats: 5, TowingKG: 1000},
		{Brand: "Tesla", Model: "Model S", PriceUSD: 90000, RangeKM: 600, Accel0To100: 3.2, TopSpeedKMH: 250, BatteryKWH: 95, EfficiencyWhKM: 172, Seats: 5, TowingKG: 1600},
		{Brand: "BMW", Model: "i4", PriceUSD: 55000, RangeKM: 480, Accel0To100: 5.7, TopSpeedKMH: 190, BatteryKWH: 80.7, EfficiencyWhKM: 178, Seats: 5, TowingKG: 1600},
		{Brand: "Nissan", Model: "Leaf", PriceUSD: 0, RangeKM: 270, Accel0To100: 7.9, TopSpeedKMH: 144, BatteryKWH: 39, EfficiencyWhKM: 164, Seats: 5},
	})
}

type testStack struct {
	router      *gin.Engine
	authManager *auth.AuthManager
	redis       *redis.Client
}

func newStack(t *testing.T, predictorURL string) *testStack {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	table := testTable()
	engine := chat.NewEngine(table, rand.New(rand.NewSource(1)))
	history := session.NewHistory(rdb, 20, time.Hour)

	var priceClient chat.PricePredictor
	if predictorURL != "" {
		client := predictor.NewClient(predictorURL, 5*time.Second)
		priceClient = predictor.NewCircuitBreakerClient(client, "price-predictor", predictor.DefaultCircuitBreakerConfig)
	}

	sessionManager := session.NewManager(rdb, time.Hour)
	authManager := auth.NewAuthManager(auth.AuthConfig{
		JWTSecret:      "integration-test-secret-value-123",
		RateLimit:      1000,
		AllowAnonymous: true,
	}, sessionManager)

	service := chat.NewService(engine, table, rdb, history, priceClient, chat.ServiceConfig{
		CacheTTL:       time.Minute,
		MaxQueryLength: 500,
	})

	router := service.SetupRoutes(authManager)
	authHandlers := auth.NewAuthHandlers(authManager)
	authHandlers.SetupRoutes(router.Group("/api/v1"))

	return &testStack{router: router, authManager: authManager, redis: rdb}
}

func (s *testStack) chat(t *testing.T, query, sessionID string) (*httptest.ResponseRecorder, chat.QueryResponse) {
	t.Helper()

	body, err := json.Marshal(chat.QueryRequest{Query: query, SessionID: sessionID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp chat.QueryResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestChatFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	stack := newStack(t, "")

	t.Run("AnonymousChatQueries", func(t *testing.T) {
		w, resp := stack.chat(t, "which car has the longest range?", "it-session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, resp.Response, "Model S")
		assert.Contains(t, resp.Response, "600")

		w, resp = stack.chat(t, "cheapest car", "it-session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, resp.Response, "Model 3")

		w, resp = stack.chat(t, "compare tesla vs bmw", "it-session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, resp.Response, "TESLA: 2 models")
	})

	t.Run("ChatHistoryAccumulates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?session_id=it-session", nil)
		w := httptest.NewRecorder()
		stack.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			History []session.Exchange `json:"history"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.History, 3)
		assert.Equal(t, "compare tesla vs bmw", body.History[0].Query)
	})

	t.Run("RepeatedQueryHitsCache", func(t *testing.T) {
		w, first := stack.chat(t, "fastest car", "it-session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, first.CacheHit)

		w, second := stack.chat(t, "FASTEST CAR", "it-session")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.Response, second.Response)
	})

	t.Run("DatasetEndpoints", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/brands", nil)
		w := httptest.NewRecorder()
		stack.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "TESLA")

		req = httptest.NewRequest(http.MethodGet, "/api/v1/cars?min_range=500", nil)
		w = httptest.NewRecorder()
		stack.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Model S")
		assert.NotContains(t, w.Body.String(), "Leaf")

		req = httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		w = httptest.NewRecorder()
		stack.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("HealthEndpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		stack.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	stack := newStack(t, "")

	// Login as the default admin.
	body, err := json.Marshal(map[string]string{"username": "admin", "password": "anything"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	stack.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string     `json:"token"`
		User  *auth.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// The token authenticates API requests.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	stack.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestPredictorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Mock model server.
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"predicted_price": 48250.75}`))
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer modelServer.Close()

	stack := newStack(t, modelServer.URL)

	body := []byte(`{"battery_kwh":75,"accel_0_100_s":4.4,"top_speed_kmh":233,"range_km":560,"efficiency_wh_per_km":161,"seats":5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	stack.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 48250.75, resp["predicted_price"], 0.01)
}
