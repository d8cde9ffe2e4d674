/*
Package webapi exposes the parser over HTTP.

Responsibilities:
- POST /api/parse runs a crawl with optional config file and per-request
  overrides
- GET /api/health answers liveness probes
- GET /api/logs serves recent log entries for the UI
- Restrict access to trusted hosts and configured CORS origins
*/
package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rohmanhakim/site-parser/internal/config"
	"github.com/rohmanhakim/site-parser/internal/logging"
	"github.com/rohmanhakim/site-parser/internal/scheduler"
)

type Server struct {
	engine *gin.Engine
	logger *zap.Logger
	buffer *logging.Buffer
}

type parseRequest struct {
	URL         string                     `json:"url"`
	Config      string                     `json:"config"`
	Overrides   map[string]json.RawMessage `json:"overrides"`
	Diagnostics bool                       `json:"diagnostics"`
}

func NewServer(logger *zap.Logger, buffer *logging.Buffer) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		logger: logger.Named("web"),
		buffer: buffer,
	}

	engine.Use(trustedHostMiddleware(envList("SITE_PARSER_TRUSTED_HOSTS", []string{"127.0.0.1", "localhost"})))
	engine.Use(corsMiddleware(envList("SITE_PARSER_CORS_ORIGINS", []string{
		"http://127.0.0.1:5173",
		"http://localhost:5173",
	})))

	api := engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/logs", s.handleLogs)
	api.POST("/parse", s.handleParse)

	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving API", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLogs(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	c.JSON(http.StatusOK, gin.H{"entries": s.buffer.List(after, limit)})
}

func (s *Server) handleParse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}

	startURL := strings.TrimSpace(req.URL)
	if startURL == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "url is required"})
		return
	}

	cfg, err := config.Load(req.Config)
	if err != nil {
		if errors.Is(err, config.ErrFileDoesNotExist) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "config file not found: " + err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	cfg, err = applyOverrides(cfg, req.Overrides)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := scheduler.New(cfg, s.logger).Parse(c.Request.Context(), startURL, req.Diagnostics)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidStartURL) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		s.logger.Error("unexpected parser error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func envList(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func trustedHostMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := false
	hosts := make(map[string]struct{}, len(allowed))
	for _, host := range allowed {
		if host == "*" {
			allowAll = true
		}
		hosts[strings.ToLower(host)] = struct{}{}
	}
	return func(c *gin.Context) {
		if allowAll {
			c.Next()
			return
		}
		host := c.Request.Host
		if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
			host = host[:i]
		}
		if _, ok := hosts[strings.ToLower(host)]; !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "invalid host header"})
			return
		}
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
