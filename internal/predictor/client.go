// Package predictor talks to the external price estimation model server.
// The regression model is trained offline; this package treats it as a
// black box behind an HTTP API.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evdataworks/ev-chatbot/internal/errors"
	"github.com/evdataworks/ev-chatbot/internal/observability"
)

// Features are the model's six inputs, in the units the model was
// trained on.
type Features struct {
	BatteryKWH     float64 `json:"battery_kwh" binding:"required,gt=0"`
	Accel0To100    float64 `json:"accel_0_100_s" binding:"required,gt=0"`
	TopSpeedKMH    float64 `json:"top_speed_kmh" binding:"required,gt=0"`
	RangeKM        float64 `json:"range_km" binding:"required,gt=0"`
	EfficiencyWhKM float64 `json:"efficiency_wh_per_km" binding:"required,gt=0"`
	Seats          int     `json:"seats" binding:"required,gte=1"`
}

// Client is an HTTP client for the model server.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a predictor client. Timeout defaults to 10s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     observability.NewLogger("predictor"),
	}
}

type predictResponse struct {
	Price float64 `json:"predicted_price"`
	Error string  `json:"error,omitempty"`
}

// Predict returns the model's price estimate for the given features.
func (c *Client) Predict(ctx context.Context, f Features) (float64, error) {
	start := time.Now()

	price, err := c.predict(ctx, f)
	observability.RecordPredictorMetrics(time.Since(start), err)

	if err != nil {
		c.logger.Error(ctx, "Price prediction failed", err, map[string]interface{}{
			"endpoint": c.endpoint,
		})
		return 0, err
	}

	return price, nil
}

func (c *Client) predict(ctx context.Context, f Features) (float64, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.NewPredictorUnavailableError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.NewPredictorUnavailableError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, errors.NewPredictorUnavailableError(
			fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(data)))
	}

	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, errors.NewPredictorResponseError(fmt.Sprintf("invalid response body: %v", err))
	}
	if out.Error != "" {
		return 0, errors.NewPredictorResponseError(out.Error)
	}
	if out.Price < 0 {
		return 0, errors.NewPredictorResponseError(fmt.Sprintf("negative estimate %f", out.Price))
	}

	return out.Price, nil
}

// Health checks that the model server is reachable and has its artifact
// loaded.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
