package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/evdataworks/ev-chatbot/internal/errors"
)

func testFeatures() Features {
	return Features{
		BatteryKWH:     75,
		Accel0To100:    4.4,
		TopSpeedKMH:    233,
		RangeKM:        505,
		EfficiencyWhKM: 149,
		Seats:          5,
	}
}

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)

		var f Features
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
		assert.Equal(t, 75.0, f.BatteryKWH)
		assert.Equal(t, 5, f.Seats)

		json.NewEncoder(w).Encode(map[string]float64{"predicted_price": 52300.5})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	price, err := client.Predict(context.Background(), testFeatures())
	require.NoError(t, err)
	assert.InDelta(t, 52300.5, price, 0.001)
}

func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model artifact missing", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Predict(context.Background(), testFeatures())
	require.Error(t, err)

	var enhanced *apperrors.EnhancedError
	require.ErrorAs(t, err, &enhanced)
	assert.Equal(t, apperrors.ErrCodePredictorUnavailable, enhanced.Code)
}

func TestPredictUnreachableServer(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Predict(context.Background(), testFeatures())
	require.Error(t, err)

	var enhanced *apperrors.EnhancedError
	require.ErrorAs(t, err, &enhanced)
	assert.Equal(t, apperrors.ErrCodePredictorUnavailable, enhanced.Code)
}

func TestPredictMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json"},
		{name: "inline error", body: `{"error": "feature out of range"}`},
		{name: "negative estimate", body: `{"predicted_price": -10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second)
			_, err := client.Predict(context.Background(), testFeatures())
			require.Error(t, err)

			var enhanced *apperrors.EnhancedError
			require.ErrorAs(t, err, &enhanced)
			assert.Equal(t, apperrors.ErrCodePredictorResponse, enhanced.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.NoError(t, client.Health(context.Background()))
}

func TestHealthUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.Error(t, client.Health(context.Background()))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 50*time.Millisecond)
	cb := NewCircuitBreakerClient(client, "test-predictor", DefaultCircuitBreakerConfig)

	for i := 0; i < 6; i++ {
		cb.Predict(context.Background(), testFeatures())
	}

	_, err := cb.Predict(context.Background(), testFeatures())
	require.Error(t, err)

	var enhanced *apperrors.EnhancedError
	require.ErrorAs(t, err, &enhanced)
	assert.Equal(t, apperrors.ErrCodePredictorUnavailable, enhanced.Code)
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"predicted_price": 12345})
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(NewClient(srv.URL, time.Second), "test-predictor", DefaultCircuitBreakerConfig)

	price, err := cb.Predict(context.Background(), testFeatures())
	require.NoError(t, err)
	assert.InDelta(t, 12345, price, 0.001)
}
