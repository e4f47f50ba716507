package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"spv-lens/pkg/metrics"
	"spv-lens/pkg/store"
)

// Options configures a Server. Store may be nil, in which case the proof
// lookup route answers 503 and nothing is persisted.
type Options struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Store       *store.DB
	Network     string
	CORSOrigins []string
	StaticDir   string
}

// Server is the HTTP API over the parser and verification packages.
type Server struct {
	engine  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *store.DB
	network string
}

// New builds the gin engine and registers every route.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(opts.Logger)
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger), opts.Metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: !allowsAll(opts.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		engine:  r,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		store:   opts.Store,
		network: opts.Network,
	}

	r.GET("/api/health", s.handleHealth)
	api := r.Group("/api")
	{
		api.POST("/vin", s.handleVin)
		api.POST("/vout", s.handleVout)
		api.POST("/tx/split", s.handleSplit)
		api.POST("/header", s.handleHeader)
		api.POST("/headers/validate", s.handleHeaderChain)
		api.POST("/prove", s.handleProve)
		api.POST("/proof/verify", s.handleVerifyProof)
		api.GET("/proof/:txid", s.handleGetProof)
		api.POST("/retarget", s.handleRetarget)
		api.POST("/swap", s.handleSwap)
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))

	// Serve the frontend build if present, else a minimal page
	if index := filepath.Join(opts.StaticDir, "index.html"); opts.StaticDir != "" && fileExists(index) {
		r.Static("/static", filepath.Join(opts.StaticDir, "static"))
		r.StaticFile("/", index)
		r.NoRoute(func(c *gin.Context) {
			c.File(index)
		})
	} else {
		r.GET("/", func(c *gin.Context) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackHTML))
		})
	}

	return s
}

// Handler exposes the engine for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// requestLogger writes one structured entry per request, at a level chosen
// by status.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}
