package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/whisperfi/whisperd/pkg/assistant"
	"github.com/whisperfi/whisperd/pkg/engine"
	"github.com/whisperfi/whisperd/pkg/ens"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
)

// Runner executes plans step by step. Execute blocks until the run
// finishes, so the server drives it from its own goroutine.
type Runner interface {
	Execute(ctx context.Context, plan *models.ExecutionPlan) error
	State() engine.State
	Cancel()
	Reset()
}

// StrategyDirectory serves the ENS strategy marketplace: published
// records under a name, and the transaction that publishes one
type StrategyDirectory interface {
	Lookup(ctx context.Context, ensName string) models.StrategyLookupResult
	Publish(ensName, strategyName string, config models.StrategyConfig) (ens.Transaction, error)
}

// Server is the HTTP front of the daemon: the intent endpoints, plan
// execution, usage accounting, health and metrics
type Server struct {
	port       string
	assistant  *assistant.Assistant
	limiter    *ratelimit.Limiter
	runner     Runner
	strategies StrategyDirectory
	logger     logger.Logger
	router     *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithRunner enables the execution endpoints
func WithRunner(r Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithStrategies enables the ENS strategy endpoints
func WithStrategies(d StrategyDirectory) Option {
	return func(s *Server) { s.strategies = d }
}

// intentRequest is the body of both intent endpoints
type intentRequest struct {
	Message string                `json:"message"`
	Wallet  *models.WalletContext `json:"wallet,omitempty"`
}

// NewServer creates the HTTP server and registers all routes
func NewServer(port string, asst *assistant.Assistant, limiter *ratelimit.Limiter, log logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		port:      port,
		assistant: asst,
		limiter:   limiter,
		logger:    log,
		router:    gin.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	v1.POST("/intent", s.handleIntent)
	v1.POST("/intent/stream", s.handleIntentStream)
	v1.GET("/usage", s.handleUsage)
	v1.DELETE("/usage", s.handleUsageReset)
	v1.POST("/execute", s.handleExecute)
	v1.GET("/execute", s.handleExecuteState)
	v1.POST("/execute/cancel", s.handleExecuteCancel)
	v1.POST("/execute/reset", s.handleExecuteReset)
	v1.GET("/strategies/:name", s.handleStrategyLookup)
	v1.POST("/strategies/:name", s.handleStrategyPublish)

	return s
}

// Router exposes the route tree for tests and embedding
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening on port %s", s.port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %v", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %v", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleIntent runs the pipeline synchronously and returns the full
// result envelope
func (s *Server) handleIntent(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result, err := s.assistant.Process(c.Request.Context(), req.Message, req.Wallet, nil)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleIntentStream runs the pipeline and streams progress as
// server-sent events: stage markers, each intermediate result as it
// materializes, then done or error
func (s *Server) handleIntentStream(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	result, err := s.assistant.ProcessStream(c.Request.Context(), req.Message, req.Wallet,
		func(stage assistant.Stage, message string) {
			s.writeEvent(c, "stage", gin.H{"stage": stage, "message": message})
		},
		func(event string, payload interface{}) {
			s.writeEvent(c, event, payload)
		})
	if err != nil {
		var limited *ratelimit.ErrRateLimited
		if errors.As(err, &limited) {
			s.writeEvent(c, "error", gin.H{"error": err.Error(), "code": codeRateLimited, "stats": limited.Stats})
		} else {
			s.writeEvent(c, "error", gin.H{"error": err.Error()})
		}
		return
	}
	s.writeEvent(c, "done", result)
}

// handleExecute starts a plan run in the background and returns the
// initial engine state; progress is polled via GET /execute
func (s *Server) handleExecute(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "execution is disabled, no signer configured"})
		return
	}

	var plan models.ExecutionPlan
	if err := c.ShouldBindJSON(&plan); err != nil || len(plan.Steps) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a plan with at least one step is required"})
		return
	}

	if s.runner.State().Status == engine.StatusRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "a plan is already executing"})
		return
	}

	// Detached from the request context: the run outlives the response
	go func() {
		if err := s.runner.Execute(context.Background(), &plan); err != nil {
			s.logger.Error("Plan %s failed: %v", plan.ID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"planId": plan.ID})
}

func (s *Server) handleExecuteState(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "execution is disabled, no signer configured"})
		return
	}
	c.JSON(http.StatusOK, s.runner.State())
}

func (s *Server) handleExecuteCancel(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "execution is disabled, no signer configured"})
		return
	}
	s.runner.Cancel()
	c.JSON(http.StatusOK, s.runner.State())
}

func (s *Server) handleExecuteReset(c *gin.Context) {
	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "execution is disabled, no signer configured"})
		return
	}
	s.runner.Reset()
	c.JSON(http.StatusOK, s.runner.State())
}

// strategyPublishRequest is the body of POST /strategies/:name
type strategyPublishRequest struct {
	StrategyName string                `json:"strategyName"`
	Strategy     models.StrategyConfig `json:"strategy"`
}

// handleStrategyLookup returns every well-known strategy record
// published under an ENS name
func (s *Server) handleStrategyLookup(c *gin.Context) {
	if s.strategies == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "strategy directory is disabled, no mainnet RPC configured"})
		return
	}
	c.JSON(http.StatusOK, s.strategies.Lookup(c.Request.Context(), c.Param("name")))
}

// handleStrategyPublish builds the setText transaction that stores a
// strategy record under the name; the caller signs and submits it with
// their own wallet
func (s *Server) handleStrategyPublish(c *gin.Context) {
	if s.strategies == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "strategy directory is disabled, no mainnet RPC configured"})
		return
	}

	var req strategyPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StrategyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "strategyName is required"})
		return
	}

	tx, err := s.strategies.Publish(c.Param("name"), req.StrategyName, req.Strategy)
	if err != nil {
		s.logger.Error("Failed to build strategy record for %s: %v", c.Param("name"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build strategy transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"to":      tx.To.Hex(),
		"data":    hexutil.Encode(tx.Data),
		"value":   tx.Value.String(),
		"chainId": tx.ChainID,
	})
}

func (s *Server) handleUsage(c *gin.Context) {
	c.JSON(http.StatusOK, s.limiter.Stats())
}

func (s *Server) handleUsageReset(c *gin.Context) {
	s.limiter.Reset()
	c.JSON(http.StatusOK, s.limiter.Stats())
}

// writeEvent writes one SSE frame and flushes it
func (s *Server) writeEvent(c *gin.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to encode %s event: %v", event, err)
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	c.Writer.Flush()
}

// codeRateLimited marks rate-limit errors so clients can branch without
// parsing the message
const codeRateLimited = "RATE_LIMITED"

// writeError maps pipeline errors onto HTTP statuses: the spent call
// budget is the client's problem, everything else is ours
func (s *Server) writeError(c *gin.Context, err error) {
	var limited *ratelimit.ErrRateLimited
	if errors.As(err, &limited) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "code": codeRateLimited, "stats": limited.Stats})
		return
	}
	s.logger.Error("Intent processing failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "intent processing failed"})
}
