package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/ai"
	"github.com/pageza/menuwise/backend/internal/api"
	"github.com/pageza/menuwise/backend/internal/database"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/middleware"
	"github.com/pageza/menuwise/backend/internal/service"
)

const healthTimeout = 2 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	log    *zap.Logger
}

// New wires the services and routes. redisClient and s3cfg may be nil, which
// disables rate limiting and image archiving respectively.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config, log *zap.Logger) *Server {
	log = logger.OrNop(log)
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		requestid.New(),
		middleware.RequestLogger(log),
		metrics.Middleware(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	s := &Server{router: router, db: db, log: log}
	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	aiClient := ai.NewClient(cfg.AI, log)
	aggregator := service.NewAggregator(db)

	var archiver service.ImageArchiver
	if archive := service.NewS3ImageArchive(s3cfg, log); archive != nil {
		archiver = archive
	}

	recommendations := service.NewRecommendationService(
		db,
		aggregator,
		service.NewMenuExtractor(aiClient, cfg.AI.ExtractMaxTokens, log),
		service.NewDishClassifier(aiClient, cfg.AI.ClassifyMaxTokens, log),
		archiver,
		log,
	)

	api.SetupAPI(router, api.Services{
		Auth:            service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry, log),
		Preferences:     service.NewPreferenceService(db, log),
		Aggregator:      aggregator,
		Catalog:         service.NewCatalogService(db, log),
		Recommendations: recommendations,
		RateLimiter:     middleware.NewMenuRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, log),
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, s.db); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
