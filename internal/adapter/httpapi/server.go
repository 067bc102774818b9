// Package httpapi exposes the public HTTP surface: the market data query API,
// location enumeration, fallback auth, and the operational endpoints.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khetsetu/agri-market-service/internal/auth"
	"github.com/khetsetu/agri-market-service/internal/query"
)

// Querier answers market data queries.
type Querier interface {
	Query(f query.Filters) (query.Result, error)
}

// ReadinessChecker reports whether the service is ready to serve market data.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	logger     *slog.Logger

	querier   Querier
	users     *auth.Store
	tokens    *auth.TokenIssuer // nil disables token issuance
	districts map[string][]string
	ready     ReadinessChecker
}

// NewServer builds the API server. districts is the read-only state->district
// index; staticDir, when non-empty, is served for non-API routes.
func NewServer(addr, staticDir string, querier Querier, users *auth.Store, tokens *auth.TokenIssuer, districts map[string][]string, ready ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), cors.Default())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:    engine,
		logger:    logger,
		querier:   querier,
		users:     users,
		tokens:    tokens,
		districts: districts,
		ready:     ready,
	}

	engine.GET("/api/market-data", s.handleMarketData)
	engine.GET("/api/locations/states", s.handleStates)
	engine.GET("/api/locations/districts", s.handleDistricts)
	engine.POST("/api/auth/register", s.handleRegister)
	engine.POST("/api/auth/login", s.handleLogin)

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if staticDir != "" {
		engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the gin engine, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// --- market data ---

func (s *Server) handleMarketData(c *gin.Context) {
	res, err := s.querier.Query(query.Filters{
		Crop:     c.Query("crop"),
		State:    c.Query("state"),
		District: c.Query("district"),
		Market:   c.Query("market"),
	})
	if err != nil {
		switch {
		case errors.Is(err, query.ErrNotReady), errors.Is(err, query.ErrNoMatch):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		default:
			s.logger.Error("market data query failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalRecords": res.TotalRecords,
			"averagePrice": res.AveragePrice,
			"totalVolume":  res.TotalVolume,
			"markets":      res.Markets,
			"lastUpdated":  res.LastUpdated.Format(time.RFC3339),
		},
	})
}

// --- locations ---

func (s *Server) handleStates(c *gin.Context) {
	states := make([]string, 0, len(s.districts))
	for state := range s.districts {
		states = append(states, state)
	}
	sort.Strings(states)
	c.JSON(http.StatusOK, gin.H{"success": true, "states": states})
}

func (s *Server) handleDistricts(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "state is required"})
		return
	}
	districts, ok := s.districts[state]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "districts": districts})
}

// --- auth ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Location string `json:"location"`
	FarmSize string `json:"farmSize"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password are required"})
		return
	}

	user, err := s.users.Register(req.Email, req.Password, auth.Profile{
		FullName: req.FullName,
		Location: req.Location,
		FarmSize: req.FarmSize,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User registered", "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password are required"})
		return
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	resp := gin.H{"success": true, "user": user}
	if s.tokens != nil {
		token, err := s.tokens.Generate(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// --- operational ---

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
