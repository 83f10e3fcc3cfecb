package predictor

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/evdataworks/ev-chatbot/internal/errors"
	"github.com/evdataworks/ev-chatbot/internal/observability"
)

// CircuitBreakerConfig defines circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests   uint32        // Max requests allowed in half-open state
	Interval      time.Duration // Window for counting failures
	Timeout       time.Duration // Duration circuit stays open before trying recovery
	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig provides sensible defaults
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests: 1,
	Interval:    10 * time.Second,
	Timeout:     30 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && (counts.ConsecutiveFailures >= 5 || failureRatio >= 0.6)
	},
	OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			observability.GetGlobalMetrics().Inc(observability.MetricPredictorBreakerOpen, nil)
		}
	},
}

// CircuitBreakerClient wraps a predictor client with circuit breaker
// protection so a dead model server fails fast instead of tying up
// request handlers.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreakerClient wraps the given client.
func NewCircuitBreakerClient(client *Client, name string, config CircuitBreakerConfig) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:          name,
		MaxRequests:   config.MaxRequests,
		Interval:      config.Interval,
		Timeout:       config.Timeout,
		ReadyToTrip:   config.ReadyToTrip,
		OnStateChange: config.OnStateChange,
	}

	return &CircuitBreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Predict wraps the client's Predict with circuit breaker protection.
// An open breaker surfaces as PredictorUnavailable.
func (cb *CircuitBreakerClient) Predict(ctx context.Context, f Features) (float64, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return cb.client.Predict(ctx, f)
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return 0, errors.NewPredictorUnavailableError(err)
		}
		return 0, err
	}

	return result.(float64), nil
}

// Health checks the underlying model server directly, bypassing the
// breaker so recovery is observable.
func (cb *CircuitBreakerClient) Health(ctx context.Context) error {
	return cb.client.Health(ctx)
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreakerClient) State() gobreaker.State {
	return cb.breaker.State()
}

// Counts returns the current failure counts
func (cb *CircuitBreakerClient) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}
