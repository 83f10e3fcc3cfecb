package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/evdataworks/ev-chatbot/internal/errors"
	"github.com/evdataworks/ev-chatbot/internal/observability"
	"github.com/evdataworks/ev-chatbot/internal/predictor"
	"github.com/evdataworks/ev-chatbot/internal/session"
	"github.com/evdataworks/ev-chatbot/internal/store"
)

const cachePrefix = "chat:reply:"

// QueryRequest is the chat endpoint's request body.
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the chat endpoint's reply.
type QueryResponse struct {
	Response       string        `json:"response"`
	Intent         string        `json:"intent"`
	SessionID      string        `json:"session_id"`
	CacheHit       bool          `json:"cache_hit,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// PricePredictor is the slice of the predictor client the service needs.
type PricePredictor interface {
	Predict(ctx context.Context, f predictor.Features) (float64, error)
	Health(ctx context.Context) error
}

// ServiceConfig holds the tunables of the chat service.
type ServiceConfig struct {
	CacheTTL       time.Duration
	MaxQueryLength int
}

// Service exposes the chat engine, the dataset views, and the price
// predictor over HTTP.
type Service struct {
	engine        *Engine
	table         *store.Table
	cache         *redis.Client
	history       *session.History
	predictor     PricePredictor
	config        ServiceConfig
	logger        *observability.Logger
	healthChecker *observability.HealthChecker
}

// NewService wires the chat service. The cache, history, and predictor
// are optional; nil disables the corresponding feature.
func NewService(engine *Engine, table *store.Table, cache *redis.Client, history *session.History, pricePredictor PricePredictor, config ServiceConfig) *Service {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.MaxQueryLength <= 0 {
		config.MaxQueryLength = 500
	}

	return &Service{
		engine:    engine,
		table:     table,
		cache:     cache,
		history:   history,
		predictor: pricePredictor,
		config:    config,
		logger:    observability.NewLogger("chat-service"),
	}
}

// SetHealthChecker attaches a health checker for the /health endpoint.
func (s *Service) SetHealthChecker(healthChecker *observability.HealthChecker) {
	s.healthChecker = healthChecker
}

// AuthMiddleware is an interface for authentication middleware
type AuthMiddleware interface {
	Middleware() gin.HandlerFunc
}

// SetupRoutes configures HTTP routes with optional authentication
func (s *Service) SetupRoutes(authMiddleware AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(observability.RequestLoggingMiddleware(s.logger))
	r.Use(observability.MetricsMiddleware())
	r.Use(observability.CORSWithLogging(s.logger))

	// Public health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if s.healthChecker != nil {
			response := s.healthChecker.GetHealthResponse(c.Request.Context())
			statusCode := http.StatusOK
			if response.Status == observability.HealthStatusUnhealthy {
				statusCode = http.StatusServiceUnavailable
			}
			c.JSON(statusCode, response)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"service": "ev-chatbot",
		})
	})

	// Metrics endpoint
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"metrics":   observability.GetGlobalMetrics().GetAll(),
			"timestamp": time.Now(),
		})
	})

	// Protected API routes (require authentication when configured)
	api := r.Group("/api/v1")
	if authMiddleware != nil {
		api.Use(authMiddleware.Middleware())
	}
	{
		api.POST("/chat", s.handleChat)
		api.GET("/chat/history", s.handleChatHistory)

		api.GET("/cars", s.handleGetCars)
		api.GET("/brands", s.handleGetBrands)
		api.GET("/stats", s.handleGetStats)

		api.POST("/predict", s.handlePredict)
	}

	return r
}

func (s *Service) handleChat(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("query", "a non-empty query is required")))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("query", "query must not be blank")))
		return
	}
	if len(req.Query) > s.config.MaxQueryLength {
		c.JSON(http.StatusBadRequest, formatErrorResponse(
			errors.NewInvalidInputError("query", "query exceeds the maximum length of "+strconv.Itoa(s.config.MaxQueryLength))))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader(observability.SessionIDHeader)
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	c.Header(observability.SessionIDHeader, sessionID)

	if cached, ok := s.cachedReply(ctx, req.Query); ok {
		cached.SessionID = sessionID
		cached.CacheHit = true
		cached.ProcessingTime = time.Since(start)
		s.recordExchange(ctx, sessionID, req.Query, cached)
		observability.RecordChatMetrics(cached.Intent, time.Since(start), true)
		c.JSON(http.StatusOK, cached)
		return
	}

	reply, intent := s.engine.Answer(ctx, req.Query)
	resp := &QueryResponse{
		Response:       reply,
		Intent:         string(intent),
		SessionID:      sessionID,
		ProcessingTime: time.Since(start),
	}

	s.cacheReply(ctx, req.Query, resp)
	s.recordExchange(ctx, sessionID, req.Query, resp)
	observability.RecordChatMetrics(resp.Intent, time.Since(start), false)

	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleChatHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"history": []session.Exchange{}})
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = c.GetHeader(observability.SessionIDHeader)
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("session_id", "a session ID is required")))
		return
	}

	exchanges, err := s.history.Recent(c.Request.Context(), sessionID)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "Failed to read chat history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		exchanges = nil
	}
	if exchanges == nil {
		exchanges = []session.Exchange{}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"history":    exchanges,
	})
}

func (s *Service) handleGetCars(c *gin.Context) {
	criteria := store.FilterCriteria{
		Brand:    c.Query("brand"),
		MinRange: parseFloatParam(c.Query("min_range")),
		MaxPrice: parseFloatParam(c.Query("max_price")),
		MaxAccel: parseFloatParam(c.Query("max_accel")),
		Seats:    int(parseFloatParam(c.Query("seats"))),
	}

	records := s.table.Filter(criteria)
	c.JSON(http.StatusOK, gin.H{
		"count": len(records),
		"cars":  records,
	})
}

func (s *Service) handleGetBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count":  len(s.table.Brands()),
		"brands": s.table.Brands(),
	})
}

func (s *Service) handleGetStats(c *gin.Context) {
	if s.table.Empty() {
		c.JSON(http.StatusServiceUnavailable, formatErrorResponse(errors.NewDataUnavailableError()))
		return
	}
	c.JSON(http.StatusOK, s.table.Summarize())
}

func (s *Service) handlePredict(c *gin.Context) {
	if s.predictor == nil {
		c.JSON(http.StatusServiceUnavailable, formatErrorResponse(
			errors.New(errors.ErrCodePredictorUnavailable, "Price predictor is not configured")))
		return
	}

	var features predictor.Features
	if err := c.ShouldBindJSON(&features); err != nil {
		c.JSON(http.StatusBadRequest, formatErrorResponse(errors.NewInvalidInputError("features", err.Error())))
		return
	}

	price, err := s.predictor.Predict(c.Request.Context(), features)
	if err != nil {
		c.JSON(getErrorStatusCode(err), formatErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predicted_price": price,
		"currency":        "USD",
	})
}

// cachedReply looks a query's reply up in Redis. The cache key is the
// lowered query text, so phrasing for a repeated query sticks for the TTL.
func (s *Service) cachedReply(ctx context.Context, query string) (*QueryResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	key := cachePrefix + strings.ToLower(strings.TrimSpace(query))
	data, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var resp QueryResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (s *Service) cacheReply(ctx context.Context, query string, resp *QueryResponse) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	key := cachePrefix + strings.ToLower(strings.TrimSpace(query))
	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn(ctx, "Failed to cache chat reply", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Service) recordExchange(ctx context.Context, sessionID, query string, resp *QueryResponse) {
	if s.history == nil {
		return
	}

	err := s.history.Append(ctx, sessionID, session.Exchange{
		Query:  query,
		Reply:  resp.Response,
		Intent: resp.Intent,
		At:     time.Now(),
	})
	if err != nil {
		s.logger.Warn(ctx, "Failed to record chat exchange", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func parseFloatParam(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatErrorResponse formats an error into a user-friendly response
func formatErrorResponse(err error) gin.H {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		response := gin.H{
			"error": gin.H{
				"code":    enhancedErr.Code,
				"message": enhancedErr.Message,
			},
		}

		if enhancedErr.Details != "" {
			response["error"].(gin.H)["details"] = enhancedErr.Details
		}

		if enhancedErr.Suggestion != "" {
			response["error"].(gin.H)["suggestion"] = enhancedErr.Suggestion
		}

		if len(enhancedErr.Metadata) > 0 {
			response["error"].(gin.H)["metadata"] = enhancedErr.Metadata
		}

		return response
	}

	return gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	}
}

// getErrorStatusCode returns the appropriate HTTP status code for an error
func getErrorStatusCode(err error) int {
	if enhancedErr, ok := err.(*errors.EnhancedError); ok {
		switch enhancedErr.Code {
		case errors.ErrCodeInvalidInput, errors.ErrCodeMissingRequired:
			return http.StatusBadRequest
		case errors.ErrCodeInvalidCredentials, errors.ErrCodeNotAuthenticated:
			return http.StatusUnauthorized
		case errors.ErrCodeInsufficientPerms:
			return http.StatusForbidden
		case errors.ErrCodeQuotaExceeded:
			return http.StatusTooManyRequests
		case errors.ErrCodeBrandNotFound, errors.ErrCodeModelNotFound:
			return http.StatusNotFound
		case errors.ErrCodePredictorUnavailable, errors.ErrCodeDataUnavailable:
			return http.StatusServiceUnavailable
		case errors.ErrCodePredictorResponse:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
